package text

import "testing"

func TestNormalizeStripsPunctuationAndCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  spaced\tout\n text  ", "spaced out text"},
		{"don't-stop", "dontstop"},
		{"Already normal", "already normal"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Quick, Brown Fox!",
		"  many   spaces   here ",
		"mixed CASE and 123 numbers",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestWordSetDeduplicates(t *testing.T) {
	set := WordSet("the cat and the hat")
	if len(set) != 4 {
		t.Fatalf("expected 4 distinct words, got %d", len(set))
	}
	if _, ok := set["cat"]; !ok {
		t.Fatalf("expected word set to contain cat")
	}
}

func TestWordsEmpty(t *testing.T) {
	if words := Words(""); words != nil {
		t.Fatalf("expected nil words for empty input, got %v", words)
	}
}
