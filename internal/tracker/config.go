package tracker

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the tunable thresholds and toggles of the uniqueness engine.
type Config struct {
	// SimilarityThreshold is the minimum blended similarity score at which
	// two pieces of content are treated as duplicates.
	SimilarityThreshold float64 `json:"similarity_threshold"`
	// MinContentLength marks the length below which content is considered
	// trivially unique and skipped entirely.
	MinContentLength int `json:"min_content_length"`
	// MaxHistorySize caps how many fingerprints a persisted snapshot
	// carries. It does not evict in-memory state.
	MaxHistorySize int `json:"max_history_size"`
	// SnapshotInterval triggers a best-effort snapshot every N registered
	// entries.
	SnapshotInterval int `json:"snapshot_interval"`
	// SnapshotKey is the key the snapshot blob is stored under.
	SnapshotKey string `json:"snapshot_key"`

	ExactMatchCheck bool `json:"exact_match_check"`
	SimilarityCheck bool `json:"similarity_check"`
	SemanticCheck   bool `json:"semantic_check"`
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.85,
		MinContentLength:    10,
		MaxHistorySize:      100000,
		SnapshotInterval:    100,
		SnapshotKey:         "prosedex_fingerprints",
		ExactMatchCheck:     true,
		SimilarityCheck:     true,
		SemanticCheck:       true,
	}
}

// Overrides describes a partial configuration update. Nil fields leave the
// current value untouched.
type Overrides struct {
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	MinContentLength    *int     `json:"min_content_length,omitempty"`
	MaxHistorySize      *int     `json:"max_history_size,omitempty"`
	SnapshotInterval    *int     `json:"snapshot_interval,omitempty"`
	SnapshotKey         *string  `json:"snapshot_key,omitempty"`
	ExactMatchCheck     *bool    `json:"exact_match_check,omitempty"`
	SimilarityCheck     *bool    `json:"similarity_check,omitempty"`
	SemanticCheck       *bool    `json:"semantic_check,omitempty"`
}

// Apply overlays the non-nil override fields onto the configuration.
func (c Config) Apply(o Overrides) Config {
	result := c
	if o.SimilarityThreshold != nil {
		result.SimilarityThreshold = *o.SimilarityThreshold
	}
	if o.MinContentLength != nil {
		result.MinContentLength = *o.MinContentLength
	}
	if o.MaxHistorySize != nil {
		result.MaxHistorySize = *o.MaxHistorySize
	}
	if o.SnapshotInterval != nil {
		result.SnapshotInterval = *o.SnapshotInterval
	}
	if o.SnapshotKey != nil && strings.TrimSpace(*o.SnapshotKey) != "" {
		result.SnapshotKey = strings.TrimSpace(*o.SnapshotKey)
	}
	if o.ExactMatchCheck != nil {
		result.ExactMatchCheck = *o.ExactMatchCheck
	}
	if o.SimilarityCheck != nil {
		result.SimilarityCheck = *o.SimilarityCheck
	}
	if o.SemanticCheck != nil {
		result.SemanticCheck = *o.SemanticCheck
	}
	return result
}

// LoadConfig builds a configuration from defaults overlaid with PROSEDEX_*
// environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if v := strings.TrimSpace(os.Getenv("PROSEDEX_SIMILARITY_THRESHOLD")); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse PROSEDEX_SIMILARITY_THRESHOLD: %w", err)
		}
		cfg.SimilarityThreshold = parsed
	}
	if v := strings.TrimSpace(os.Getenv("PROSEDEX_MIN_CONTENT_LENGTH")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PROSEDEX_MIN_CONTENT_LENGTH: %w", err)
		}
		cfg.MinContentLength = parsed
	}
	if v := strings.TrimSpace(os.Getenv("PROSEDEX_MAX_HISTORY_SIZE")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PROSEDEX_MAX_HISTORY_SIZE: %w", err)
		}
		cfg.MaxHistorySize = parsed
	}
	if v := strings.TrimSpace(os.Getenv("PROSEDEX_SNAPSHOT_INTERVAL")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PROSEDEX_SNAPSHOT_INTERVAL: %w", err)
		}
		cfg.SnapshotInterval = parsed
	}
	if v := strings.TrimSpace(os.Getenv("PROSEDEX_SNAPSHOT_KEY")); v != "" {
		cfg.SnapshotKey = v
	}
	for _, toggle := range []struct {
		env    string
		target *bool
	}{
		{"PROSEDEX_EXACT_MATCH_CHECK", &cfg.ExactMatchCheck},
		{"PROSEDEX_SIMILARITY_CHECK", &cfg.SimilarityCheck},
		{"PROSEDEX_SEMANTIC_CHECK", &cfg.SemanticCheck},
	} {
		if v := strings.TrimSpace(os.Getenv(toggle.env)); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", toggle.env, err)
			}
			*toggle.target = parsed
		}
	}
	return cfg, nil
}
