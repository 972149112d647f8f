// Package tracker implements the uniqueness engine for generated prose:
// content registration, exact/similarity/semantic duplicate detection and
// usage accounting, with best-effort fingerprint snapshots through a
// pluggable key-value store.
package tracker

import (
	"context"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/storyunending/prosedex/internal/common"
	"github.com/storyunending/prosedex/internal/store"
	"github.com/storyunending/prosedex/internal/text"
)

// Engine owns the four uniqueness structures: the content registry, its
// insertion order, the similarity index and the usage log. A single lock
// guards them as a unit because registration is a check-then-insert that
// must stay atomic under concurrent callers.
type Engine struct {
	mu         sync.RWMutex
	cfg        Config
	entries    map[string]*ContentEntry
	order      []string
	similarity *similarityIndex
	usage      *usageLog
	kv         store.KeyValue
}

// Option customizes engine construction.
type Option func(*Engine)

// WithStore attaches a persistence backend for fingerprint snapshots.
// Without a store the engine is purely in-memory.
func WithStore(kv store.KeyValue) Option {
	return func(e *Engine) {
		e.kv = kv
	}
}

// New constructs an engine with the provided configuration. Zero-valued
// tuning fields fall back to their defaults.
func New(cfg Config, opts ...Option) *Engine {
	defaults := DefaultConfig()
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if cfg.MinContentLength < 0 {
		cfg.MinContentLength = defaults.MinContentLength
	}
	if cfg.MaxHistorySize <= 0 {
		cfg.MaxHistorySize = defaults.MaxHistorySize
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = defaults.SnapshotInterval
	}
	if cfg.SnapshotKey == "" {
		cfg.SnapshotKey = defaults.SnapshotKey
	}
	e := &Engine{
		cfg:        cfg,
		entries:    make(map[string]*ContentEntry),
		order:      nil,
		similarity: newSimilarityIndex(),
		usage:      newUsageLog(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckUniqueness scores the content against the registry without modifying
// any state. It never fails: malformed or trivially short input is reported
// as unique with a reason rather than as an error.
func (e *Engine) CheckUniqueness(content string, metadata map[string]any) CheckResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checkLocked(content)
}

func (e *Engine) checkLocked(content string) CheckResult {
	result := CheckResult{IsUnique: true, Confidence: 1.0}
	if utf8.RuneCountInString(content) < e.cfg.MinContentLength {
		result.Reason = ReasonTooShort
		return result
	}
	fingerprint := text.Fingerprint(content)
	if e.cfg.ExactMatchCheck {
		if entry, ok := e.entries[fingerprint]; ok {
			return CheckResult{
				IsUnique:   false,
				ExactMatch: true,
				Confidence: 0,
				Details:    entry.clone(),
			}
		}
	}
	if e.cfg.SimilarityCheck {
		normalized := text.Normalize(content)
		similar := e.similarity.findSimilar(normalized, fingerprint, e.cfg.SimilarityThreshold)
		if len(similar) > 0 {
			result.SimilarContent = similar
			result.Confidence = 1 - similar[0].Similarity
			if similar[0].Similarity >= e.cfg.SimilarityThreshold {
				result.IsUnique = false
				return result
			}
		}
	}
	if e.cfg.SemanticCheck {
		if match := e.semanticMatchLocked(content); match != nil {
			result.SemanticMatch = match
			result.Confidence *= 0.9
		}
	}
	return result
}

// semanticMatchLocked walks the registry in insertion order and returns the
// first entry whose key-term overlap with the content exceeds 0.7. Linear by
// design; the corpus is a single story's generated paragraphs.
func (e *Engine) semanticMatchLocked(content string) *SemanticMatch {
	terms := text.KeyTerms(content)
	if len(terms) == 0 {
		return nil
	}
	for _, fingerprint := range e.order {
		entry, ok := e.entries[fingerprint]
		if !ok || entry.Content == "" {
			continue
		}
		entryTerms := text.KeyTerms(entry.Content)
		if overlap := text.TermOverlap(terms, entryTerms); overlap > 0.7 {
			return &SemanticMatch{
				Fingerprint: fingerprint,
				Overlap:     overlap,
				Terms:       sortedTerms(terms),
				EntryTerms:  sortedTerms(entryTerms),
			}
		}
	}
	return nil
}

// RegisterContent records the content as a unique entry after a successful
// uniqueness check. Registration counts as the entry's first usage. Every
// SnapshotInterval registered entries a snapshot is written best-effort:
// persistence failures are logged and never abort the registration.
func (e *Engine) RegisterContent(ctx context.Context, content string, metadata map[string]any) RegisterResult {
	e.mu.Lock()
	check := e.checkLocked(content)
	if check.Reason == ReasonTooShort {
		e.mu.Unlock()
		return RegisterResult{Registered: false, Reason: ReasonTooShort, Check: &check}
	}
	if !check.IsUnique {
		e.mu.Unlock()
		return RegisterResult{Registered: false, Reason: ReasonNotUnique, Check: &check}
	}
	fingerprint := text.Fingerprint(content)
	entry := &ContentEntry{
		Content:     content,
		Fingerprint: fingerprint,
		Timestamp:   time.Now().UnixMilli(),
		Metadata:    metadata,
	}
	e.entries[fingerprint] = entry
	e.order = append(e.order, fingerprint)
	if e.cfg.SimilarityCheck {
		e.similarity.add(content, text.Normalize(content), fingerprint, metadata)
	}
	e.trackUsageLocked(fingerprint, metadata)

	var snapshot []string
	key := e.cfg.SnapshotKey
	if e.kv != nil && e.cfg.SnapshotInterval > 0 && len(e.entries)%e.cfg.SnapshotInterval == 0 {
		snapshot = e.snapshotFingerprintsLocked()
	}
	e.mu.Unlock()

	if snapshot != nil {
		if err := e.writeSnapshot(ctx, key, snapshot); err != nil {
			common.Logger().Warn("tracker: snapshot write failed", "error", err, "fingerprints", len(snapshot))
		}
	}
	return RegisterResult{Registered: true, Fingerprint: fingerprint, Check: &check}
}

// TrackUsage appends a usage record for the fingerprint and bumps the
// matching entry's counter when one exists.
func (e *Engine) TrackUsage(fingerprint string, metadata map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trackUsageLocked(fingerprint, metadata)
}

func (e *Engine) trackUsageLocked(fingerprint string, metadata map[string]any) {
	e.usage.track(fingerprint, time.Now().UnixMilli(), metadata)
	if entry, ok := e.entries[fingerprint]; ok {
		entry.UsageCount++
	}
}

// UsageStats reports the usage history of one fingerprint. The second return
// value is false when the fingerprint was never registered or used.
func (e *Engine) UsageStats(fingerprint string) (UsageStats, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, hasEntry := e.entries[fingerprint]
	count := e.usage.count(fingerprint)
	if !hasEntry && count == 0 {
		return UsageStats{}, false
	}
	stats := UsageStats{
		Fingerprint: fingerprint,
		UsageCount:  count,
		LastUsed:    e.usage.lastUsed(fingerprint),
	}
	if hasEntry {
		stats.Entry = entry.clone()
	}
	return stats, true
}

// GlobalUsageStats aggregates usage across the whole registry.
func (e *Engine) GlobalUsageStats() GlobalUsageStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	stats := GlobalUsageStats{
		TotalContent: len(e.entries),
		TotalUsage:   e.usage.total,
		MostUsed:     e.mostUsedLocked(10),
	}
	if stats.TotalContent > 0 {
		stats.AverageUsage = float64(stats.TotalUsage) / float64(stats.TotalContent)
	}
	return stats
}

// MostUsed returns up to limit entries ordered by usage count, busiest
// first. Ties keep registration order.
func (e *Engine) MostUsed(limit int) []*ContentEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mostUsedLocked(limit)
}

func (e *Engine) mostUsedLocked(limit int) []*ContentEntry {
	if limit <= 0 {
		limit = 10
	}
	ranked := make([]*ContentEntry, 0, len(e.order))
	for _, fingerprint := range e.order {
		if entry, ok := e.entries[fingerprint]; ok {
			ranked = append(ranked, entry.clone())
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].UsageCount > ranked[j].UsageCount
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// GlobalStats reports registry and index sizes alongside the active
// configuration. It reflects in-memory state even when snapshot writes have
// been failing.
func (e *Engine) GlobalStats() GlobalStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return GlobalStats{
		TotalContent:         len(e.entries),
		TotalUsage:           e.usage.total,
		SimilarityIndexSize:  e.similarity.size,
		FingerprintIndexSize: len(e.entries),
		Config:               e.cfg,
	}
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// UpdateConfig overlays the non-nil override fields and returns the
// resulting configuration.
func (e *Engine) UpdateConfig(o Overrides) Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = e.cfg.Apply(o)
	return e.cfg
}

// Clear wipes all in-memory state and removes the persisted snapshot.
// Idempotent; snapshot removal failures are logged, not returned.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	e.entries = make(map[string]*ContentEntry)
	e.order = nil
	e.similarity.clear()
	e.usage.clear()
	key := e.cfg.SnapshotKey
	kv := e.kv
	e.mu.Unlock()

	if kv == nil {
		return
	}
	if err := kv.Remove(ctx, key); err != nil {
		common.Logger().Warn("tracker: snapshot removal failed", "error", err, "key", key)
	}
}

func sortedTerms(set map[string]struct{}) []string {
	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

func (c *ContentEntry) clone() *ContentEntry {
	if c == nil {
		return nil
	}
	cloned := *c
	if c.Metadata != nil {
		cloned.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			cloned.Metadata[k] = v
		}
	}
	return &cloned
}
