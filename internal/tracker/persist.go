package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// snapshot is the single JSON blob persisted through the key-value store.
// Only fingerprints survive a restart: restored entries block exact
// re-registration but carry no content, so the similarity and semantic
// checks cannot see pre-restart material. That asymmetry mirrors the
// upstream design and is intentionally not papered over here.
type snapshot struct {
	Fingerprints []string `json:"fingerprints"`
	Timestamp    int64    `json:"timestamp"`
}

// Save writes the current fingerprint snapshot through the configured store.
func (e *Engine) Save(ctx context.Context) error {
	if e.kv == nil {
		return errors.New("no persistence store configured")
	}
	e.mu.RLock()
	fingerprints := e.snapshotFingerprintsLocked()
	key := e.cfg.SnapshotKey
	e.mu.RUnlock()
	return e.writeSnapshot(ctx, key, fingerprints)
}

// snapshotFingerprintsLocked copies the registered fingerprints in insertion
// order, keeping only the newest MaxHistorySize when the registry has grown
// beyond it.
func (e *Engine) snapshotFingerprintsLocked() []string {
	order := e.order
	if max := e.cfg.MaxHistorySize; max > 0 && len(order) > max {
		order = order[len(order)-max:]
	}
	fingerprints := make([]string, len(order))
	copy(fingerprints, order)
	return fingerprints
}

func (e *Engine) writeSnapshot(ctx context.Context, key string, fingerprints []string) error {
	payload, err := json.Marshal(snapshot{
		Fingerprints: fingerprints,
		Timestamp:    time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := e.kv.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Load restores fingerprint keys from the persisted snapshot. Entries
// restored this way have no content body; see the snapshot type comment.
func (e *Engine) Load(ctx context.Context) error {
	if e.kv == nil {
		return errors.New("no persistence store configured")
	}
	e.mu.RLock()
	key := e.cfg.SnapshotKey
	e.mu.RUnlock()
	value, ok, err := e.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if !ok {
		return nil
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, fingerprint := range snap.Fingerprints {
		if fingerprint == "" {
			continue
		}
		if _, exists := e.entries[fingerprint]; exists {
			continue
		}
		e.entries[fingerprint] = &ContentEntry{
			Fingerprint: fingerprint,
			Timestamp:   snap.Timestamp,
		}
		e.order = append(e.order, fingerprint)
	}
	return nil
}

// Close performs a final snapshot attempt when a store is configured.
func (e *Engine) Close(ctx context.Context) error {
	if e.kv == nil {
		return nil
	}
	return e.Save(ctx)
}
