package text

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFingerprintDeterministic(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog today",
		"a",
		"",
		"Punctuation, should! not? matter.",
	}
	for _, in := range inputs {
		first := Fingerprint(in)
		second := Fingerprint(in)
		if first != second {
			t.Fatalf("fingerprint not deterministic for %q: %q != %q", in, first, second)
		}
	}
}

func TestFingerprintSuffixEncodesShape(t *testing.T) {
	content := "The quick brown fox jumps over the lazy dog today"
	normalized := Normalize(content)
	fp := Fingerprint(content)
	parts := strings.Split(fp, "_")
	if len(parts) != 3 {
		t.Fatalf("expected hash_length_words, got %q", fp)
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		t.Fatalf("length suffix not numeric: %q", fp)
	}
	if length != utf8.RuneCountInString(normalized) {
		t.Fatalf("length suffix %d does not match normalized length %d", length, utf8.RuneCountInString(normalized))
	}
	words, err := strconv.Atoi(parts[2])
	if err != nil {
		t.Fatalf("word suffix not numeric: %q", fp)
	}
	if words != 10 {
		t.Fatalf("expected 10 words, got %d", words)
	}
}

func TestFingerprintIgnoresCaseAndPunctuation(t *testing.T) {
	if Fingerprint("Hello, World!") != Fingerprint("hello world") {
		t.Fatalf("fingerprint should be computed over normalized content")
	}
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	if Fingerprint("a brave knight") == Fingerprint("a cowardly knight") {
		t.Fatalf("expected different fingerprints for different content")
	}
}
