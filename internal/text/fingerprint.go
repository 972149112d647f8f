package text

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Fingerprint derives a stable key for a piece of content. The key is a
// signed 32-bit rolling hash of the normalized text rendered in base36,
// suffixed with the normalized length and word count. The hash is
// deliberately non-cryptographic: it exists as a fast exact-match pre-filter,
// and collisions are resolved by the similarity layer, not avoided here.
// Callers must not treat the fingerprint as tamper-proof.
func Fingerprint(content string) string {
	normalized := Normalize(content)
	var h int32
	for _, r := range normalized {
		// Wrapping 32-bit arithmetic is intentional.
		h = h*31 + int32(r)
	}
	words := len(strings.Fields(normalized))
	var b strings.Builder
	b.WriteString(strconv.FormatInt(int64(h), 36))
	b.WriteByte('_')
	b.WriteString(strconv.Itoa(utf8.RuneCountInString(normalized)))
	b.WriteByte('_')
	b.WriteString(strconv.Itoa(words))
	return b.String()
}
