package text

// Similarity blends word-set Jaccard similarity with normalized Levenshtein
// similarity into a single score in [0,1]. Both inputs are expected to be
// normalized already; the weights favour word overlap over edit distance.
func Similarity(a, b string) float64 {
	return 0.6*Jaccard(a, b) + 0.4*levenshteinSimilarity(a, b)
}

// Jaccard computes |A∩B| / |A∪B| over the word sets of the two strings.
// Defined as 0 when the union is empty.
func Jaccard(a, b string) float64 {
	setA := WordSet(a)
	setB := WordSet(b)
	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func levenshteinSimilarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

// Levenshtein returns the minimum number of single-rune insertions, deletions
// and substitutions needed to transform a into b.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	rows := len(b) + 1
	cols := len(a) + 1
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
		matrix[i][0] = i
	}
	for j := 1; j < cols; j++ {
		matrix[0][j] = j
	}
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if b[i-1] == a[j-1] {
				cost = 0
			}
			deletion := matrix[i-1][j] + 1
			insertion := matrix[i][j-1] + 1
			substitution := matrix[i-1][j-1] + cost
			best := deletion
			if insertion < best {
				best = insertion
			}
			if substitution < best {
				best = substitution
			}
			matrix[i][j] = best
		}
	}
	return matrix[rows-1][cols-1]
}
