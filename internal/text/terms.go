package text

// stopWords holds common English words excluded from key-term extraction.
// Only words longer than three characters matter here because KeyTerms
// filters shorter words before consulting the set.
var stopWords = map[string]struct{}{
	"that": {}, "with": {}, "have": {}, "this": {}, "will": {},
	"your": {}, "from": {}, "they": {}, "know": {}, "want": {},
	"been": {}, "good": {}, "much": {}, "some": {}, "time": {},
	"very": {}, "when": {}, "come": {}, "here": {}, "just": {},
	"like": {}, "long": {}, "make": {}, "many": {}, "more": {},
	"only": {}, "over": {}, "such": {}, "take": {}, "than": {},
	"them": {}, "well": {}, "were": {}, "what": {}, "would": {},
	"there": {}, "their": {}, "about": {}, "which": {}, "into": {},
	"also": {}, "after": {},
}

// KeyTerms extracts the deduplicated non-stopword terms of the content:
// normalized words longer than three characters that are not common English
// filler. Returns nil when nothing qualifies.
func KeyTerms(content string) map[string]struct{} {
	var terms map[string]struct{}
	for _, w := range Words(Normalize(content)) {
		if len(w) <= 3 {
			continue
		}
		if _, ok := stopWords[w]; ok {
			continue
		}
		if terms == nil {
			terms = make(map[string]struct{})
		}
		terms[w] = struct{}{}
	}
	return terms
}

// TermOverlap computes |A∩B| / |A∪B| over two term sets, 0 when both are
// empty.
func TermOverlap(a, b map[string]struct{}) float64 {
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
