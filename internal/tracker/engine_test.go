package tracker

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/storyunending/prosedex/internal/text"
)

func TestRegisterThenRejectExactDuplicate(t *testing.T) {
	engine := New(DefaultConfig())
	ctx := context.Background()
	content := "The quick brown fox jumps over the lazy dog today"

	result := engine.RegisterContent(ctx, content, map[string]any{"chapter": 1})
	if !result.Registered {
		t.Fatalf("first registration should succeed: %+v", result)
	}
	if result.Fingerprint != text.Fingerprint(content) {
		t.Fatalf("fingerprint mismatch: %q", result.Fingerprint)
	}
	if !strings.HasSuffix(result.Fingerprint, "_49_10") {
		t.Fatalf("expected length/word suffix _49_10, got %q", result.Fingerprint)
	}

	duplicate := engine.RegisterContent(ctx, content, nil)
	if duplicate.Registered {
		t.Fatalf("identical content should be rejected")
	}
	if duplicate.Reason != ReasonNotUnique {
		t.Fatalf("expected reason %q, got %q", ReasonNotUnique, duplicate.Reason)
	}
	if duplicate.Check == nil || !duplicate.Check.ExactMatch {
		t.Fatalf("expected exact-match rejection, got %+v", duplicate.Check)
	}
	if duplicate.Check.Details == nil || duplicate.Check.Details.Content != content {
		t.Fatalf("expected matched entry in details")
	}
}

func TestShortContentBypassesAllChecks(t *testing.T) {
	engine := New(DefaultConfig())
	ctx := context.Background()
	if reg := engine.RegisterContent(ctx, "hi", nil); reg.Registered || reg.Reason != ReasonTooShort {
		t.Fatalf("short content must never be registered: %+v", reg)
	}

	check := engine.CheckUniqueness("hi", nil)
	if !check.IsUnique {
		t.Fatalf("short content should be trivially unique")
	}
	if check.Reason != ReasonTooShort {
		t.Fatalf("expected reason %q, got %q", ReasonTooShort, check.Reason)
	}
	if stats := engine.GlobalStats(); stats.TotalContent != 0 {
		t.Fatalf("short content must not appear in any index: %+v", stats)
	}
}

func TestSimilarContentRejected(t *testing.T) {
	engine := New(DefaultConfig())
	ctx := context.Background()
	original := "A brave knight rode through the dark forest alone"
	reg := engine.RegisterContent(ctx, original, nil)
	if !reg.Registered {
		t.Fatalf("registration failed: %+v", reg)
	}

	check := engine.CheckUniqueness("A brave knight rode through the dark forest alone today", nil)
	if check.IsUnique {
		t.Fatalf("near-duplicate should be rejected: %+v", check)
	}
	if len(check.SimilarContent) == 0 {
		t.Fatalf("expected similar content in result")
	}
	best := check.SimilarContent[0]
	if best.Fingerprint != reg.Fingerprint {
		t.Fatalf("expected match against %q, got %q", reg.Fingerprint, best.Fingerprint)
	}
	if best.Similarity < 0.85 {
		t.Fatalf("expected similarity >= 0.85, got %f", best.Similarity)
	}
	if math.Abs(check.Confidence-(1-best.Similarity)) > 1e-9 {
		t.Fatalf("confidence %f should be 1 - max similarity %f", check.Confidence, best.Similarity)
	}
}

func TestDissimilarContentAccepted(t *testing.T) {
	engine := New(DefaultConfig())
	ctx := context.Background()
	if reg := engine.RegisterContent(ctx, "A brave knight rode through the dark forest alone", nil); !reg.Registered {
		t.Fatalf("registration failed: %+v", reg)
	}
	check := engine.CheckUniqueness("Merchants haggled loudly across the crowded harbor market stalls", nil)
	if !check.IsUnique {
		t.Fatalf("unrelated content should be unique: %+v", check)
	}
	second := engine.RegisterContent(ctx, "Merchants haggled loudly across the crowded harbor market stalls", nil)
	if !second.Registered {
		t.Fatalf("unrelated content should register: %+v", second)
	}
}

func TestSemanticMatchIsAdvisory(t *testing.T) {
	engine := New(DefaultConfig())
	ctx := context.Background()
	first := "The knight dragon castle sword battle raged fiercely tonight"
	if reg := engine.RegisterContent(ctx, first, nil); !reg.Registered {
		t.Fatalf("registration failed: %+v", reg)
	}

	// Shares most key terms with the first entry but reorders the sentence,
	// keeping the blended similarity score under the rejection threshold.
	check := engine.CheckUniqueness("Dragon knight sword castle battle fiercely raged tonight onward march", nil)
	if !check.IsUnique {
		t.Fatalf("semantic overlap alone must not reject: %+v", check)
	}
	if check.SemanticMatch == nil {
		t.Fatalf("expected a semantic match")
	}
	if check.SemanticMatch.Overlap <= 0.7 {
		t.Fatalf("expected overlap > 0.7, got %f", check.SemanticMatch.Overlap)
	}
	if check.Confidence >= 1.0 {
		t.Fatalf("semantic match should lower confidence, got %f", check.Confidence)
	}
}

func TestUsageAccounting(t *testing.T) {
	engine := New(DefaultConfig())
	ctx := context.Background()
	reg := engine.RegisterContent(ctx, "A lonely lighthouse keeper watched the storm roll in", map[string]any{"chapter": 3})
	if !reg.Registered {
		t.Fatalf("registration failed: %+v", reg)
	}
	for i := 0; i < 3; i++ {
		engine.TrackUsage(reg.Fingerprint, map[string]any{"reuse": i})
	}

	stats, ok := engine.UsageStats(reg.Fingerprint)
	if !ok {
		t.Fatalf("expected usage stats for %q", reg.Fingerprint)
	}
	if stats.UsageCount != 4 {
		t.Fatalf("registration plus 3 usages should count 4, got %d", stats.UsageCount)
	}
	if stats.LastUsed == 0 {
		t.Fatalf("expected last-used timestamp")
	}
	if stats.Entry == nil || stats.Entry.UsageCount != 4 {
		t.Fatalf("entry counter out of sync: %+v", stats.Entry)
	}

	global := engine.GlobalUsageStats()
	if global.TotalContent != 1 || global.TotalUsage != 4 {
		t.Fatalf("unexpected global usage: %+v", global)
	}
	if math.Abs(global.AverageUsage-4.0) > 1e-9 {
		t.Fatalf("expected average 4.0, got %f", global.AverageUsage)
	}
}

func TestUsageStatsUnknownFingerprint(t *testing.T) {
	engine := New(DefaultConfig())
	if _, ok := engine.UsageStats("missing"); ok {
		t.Fatalf("expected no stats for unknown fingerprint")
	}
}

func TestMostUsedOrdering(t *testing.T) {
	engine := New(DefaultConfig())
	ctx := context.Background()
	sentences := []string{
		"Rain hammered against the tavern windows through the night",
		"Smoke curled upward from the ruined watchtower at dawn",
		"Horses thundered across the frozen river under moonlight",
	}
	var fingerprints []string
	for _, s := range sentences {
		reg := engine.RegisterContent(ctx, s, nil)
		if !reg.Registered {
			t.Fatalf("registration failed for %q: %+v", s, reg)
		}
		fingerprints = append(fingerprints, reg.Fingerprint)
	}
	engine.TrackUsage(fingerprints[1], nil)
	engine.TrackUsage(fingerprints[1], nil)
	engine.TrackUsage(fingerprints[2], nil)

	ranked := engine.MostUsed(2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranked))
	}
	if ranked[0].Fingerprint != fingerprints[1] {
		t.Fatalf("expected most used first, got %q", ranked[0].Fingerprint)
	}
	if ranked[1].Fingerprint != fingerprints[2] {
		t.Fatalf("expected second most used, got %q", ranked[1].Fingerprint)
	}
}

func TestClearResetsStateAndAcceptsOldContent(t *testing.T) {
	engine := New(DefaultConfig())
	ctx := context.Background()
	content := "An old map crumbled at the edges as she unfolded it"
	if reg := engine.RegisterContent(ctx, content, nil); !reg.Registered {
		t.Fatalf("registration failed: %+v", reg)
	}
	if reg := engine.RegisterContent(ctx, content, nil); reg.Registered {
		t.Fatalf("duplicate should be rejected before clear")
	}

	engine.Clear(ctx)
	stats := engine.GlobalStats()
	if stats.TotalContent != 0 || stats.TotalUsage != 0 || stats.SimilarityIndexSize != 0 || stats.FingerprintIndexSize != 0 {
		t.Fatalf("clear left state behind: %+v", stats)
	}
	if reg := engine.RegisterContent(ctx, content, nil); !reg.Registered {
		t.Fatalf("previously registered content should be unique after clear: %+v", reg)
	}
	// Clearing twice is harmless.
	engine.Clear(ctx)
	engine.Clear(ctx)
}

func TestChecksCanBeDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExactMatchCheck = false
	cfg.SimilarityCheck = false
	cfg.SemanticCheck = false
	engine := New(cfg)
	ctx := context.Background()
	content := "Thunder rolled over the distant hills before the rain began"
	if reg := engine.RegisterContent(ctx, content, nil); !reg.Registered {
		t.Fatalf("registration failed: %+v", reg)
	}
	check := engine.CheckUniqueness(content, nil)
	if !check.IsUnique {
		t.Fatalf("with every check disabled nothing should be rejected: %+v", check)
	}
}

func TestUpdateConfigPartial(t *testing.T) {
	engine := New(DefaultConfig())
	threshold := 0.5
	enabled := false
	updated := engine.UpdateConfig(Overrides{
		SimilarityThreshold: &threshold,
		SemanticCheck:       &enabled,
	})
	if updated.SimilarityThreshold != 0.5 {
		t.Fatalf("threshold not applied: %+v", updated)
	}
	if updated.SemanticCheck {
		t.Fatalf("semantic toggle not applied: %+v", updated)
	}
	if updated.MinContentLength != DefaultConfig().MinContentLength {
		t.Fatalf("untouched fields must keep their values: %+v", updated)
	}
	if got := engine.Config(); got != updated {
		t.Fatalf("Config() should reflect the update: %+v", got)
	}
}

func TestNewFillsZeroTuning(t *testing.T) {
	engine := New(Config{ExactMatchCheck: true})
	cfg := engine.Config()
	if cfg.SimilarityThreshold != 0.85 || cfg.SnapshotInterval != 100 || cfg.SnapshotKey == "" {
		t.Fatalf("zero tuning fields should fall back to defaults: %+v", cfg)
	}
}
