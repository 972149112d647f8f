package tracker

import (
	"sort"
	"strings"

	"github.com/storyunending/prosedex/internal/text"
)

const (
	bucketKeyWords = 3
	maxSimilarHits = 10
)

// bucketEntry is the lightweight record kept per registered content item.
// The normalized form is cached so lookups do not re-normalize the corpus.
type bucketEntry struct {
	fingerprint string
	normalized  string
	content     string
	metadata    map[string]any
}

// similarityIndex groups entries by a coarse bucket key: the first three
// normalized words. The key is a pre-grouping only; findSimilar walks every
// bucket so results never depend on bucket boundaries. Not safe for
// concurrent use; the engine serializes access.
type similarityIndex struct {
	buckets map[string][]bucketEntry
	size    int
}

func newSimilarityIndex() *similarityIndex {
	return &similarityIndex{buckets: make(map[string][]bucketEntry)}
}

func bucketKey(normalized string) string {
	words := strings.Fields(normalized)
	if len(words) > bucketKeyWords {
		words = words[:bucketKeyWords]
	}
	return strings.Join(words, "_")
}

func (ix *similarityIndex) add(content, normalized, fingerprint string, metadata map[string]any) {
	key := bucketKey(normalized)
	ix.buckets[key] = append(ix.buckets[key], bucketEntry{
		fingerprint: fingerprint,
		normalized:  normalized,
		content:     content,
		metadata:    metadata,
	})
	ix.size++
}

// findSimilar scores the normalized input against every indexed entry,
// skipping excludeFingerprint, and returns the matches at or above the
// threshold, best first, capped at maxSimilarHits.
func (ix *similarityIndex) findSimilar(normalized, excludeFingerprint string, threshold float64) []SimilarMatch {
	var matches []SimilarMatch
	for _, bucket := range ix.buckets {
		for _, entry := range bucket {
			if entry.fingerprint == excludeFingerprint {
				continue
			}
			score := text.Similarity(normalized, entry.normalized)
			if score >= threshold {
				matches = append(matches, SimilarMatch{
					Fingerprint: entry.fingerprint,
					Similarity:  score,
					Content:     entry.content,
				})
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > maxSimilarHits {
		matches = matches[:maxSimilarHits]
	}
	return matches
}

func (ix *similarityIndex) clear() {
	ix.buckets = make(map[string][]bucketEntry)
	ix.size = 0
}
