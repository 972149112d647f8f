package tracker

// Reasons reported by CheckUniqueness and RegisterContent.
const (
	ReasonTooShort  = "content_too_short"
	ReasonNotUnique = "not_unique"
)

// ContentEntry is the registry record for one registered piece of content.
// Only UsageCount mutates after creation.
type ContentEntry struct {
	Content     string         `json:"content"`
	Fingerprint string         `json:"fingerprint"`
	Timestamp   int64          `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UsageCount  int            `json:"usage_count"`
}

// UsageRecord captures one usage event for a fingerprint. Records are
// appended in chronological order.
type UsageRecord struct {
	Timestamp int64          `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SimilarMatch describes a registered entry scored against checked content.
type SimilarMatch struct {
	Fingerprint string  `json:"fingerprint"`
	Similarity  float64 `json:"similarity"`
	Content     string  `json:"content"`
}

// SemanticMatch describes a key-term overlap hit. Semantic matches are
// advisory: they lower confidence without rejecting the content.
type SemanticMatch struct {
	Fingerprint string   `json:"fingerprint"`
	Overlap     float64  `json:"overlap"`
	Terms       []string `json:"terms"`
	EntryTerms  []string `json:"entry_terms"`
}

// CheckResult is the verdict returned by CheckUniqueness.
type CheckResult struct {
	IsUnique       bool           `json:"is_unique"`
	Reason         string         `json:"reason,omitempty"`
	ExactMatch     bool           `json:"exact_match,omitempty"`
	SimilarContent []SimilarMatch `json:"similar_content,omitempty"`
	SemanticMatch  *SemanticMatch `json:"semantic_match,omitempty"`
	Confidence     float64        `json:"confidence"`
	// Details carries the matched registry entry for exact-match rejections.
	Details *ContentEntry `json:"details,omitempty"`
}

// RegisterResult reports the outcome of a registration attempt.
type RegisterResult struct {
	Registered  bool         `json:"registered"`
	Reason      string       `json:"reason,omitempty"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	Check       *CheckResult `json:"check,omitempty"`
}

// UsageStats summarizes usage of one fingerprint.
type UsageStats struct {
	Fingerprint string        `json:"fingerprint"`
	UsageCount  int           `json:"usage_count"`
	LastUsed    int64         `json:"last_used"`
	Entry       *ContentEntry `json:"entry,omitempty"`
}

// GlobalUsageStats aggregates usage across every registered entry.
type GlobalUsageStats struct {
	TotalContent int             `json:"total_content"`
	TotalUsage   int             `json:"total_usage"`
	AverageUsage float64         `json:"average_usage"`
	MostUsed     []*ContentEntry `json:"most_used"`
}

// GlobalStats reports index sizes alongside the active configuration.
type GlobalStats struct {
	TotalContent         int    `json:"total_content"`
	TotalUsage           int    `json:"total_usage"`
	SimilarityIndexSize  int    `json:"similarity_index_size"`
	FingerprintIndexSize int    `json:"fingerprint_index_size"`
	Config               Config `json:"config"`
}
