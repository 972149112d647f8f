package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File persists each key as its own file inside a root directory. Keys are
// encoded into file names so arbitrary strings remain safe on disk.
type File struct {
	root string
	mu   sync.RWMutex
}

// NewFile constructs a File store rooted at the provided directory, creating
// it when absent.
func NewFile(root string) (*File, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("store root required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{root: trimmed}, nil
}

// Root returns the underlying directory used for persistence.
func (f *File) Root() string {
	if f == nil {
		return ""
	}
	return f.root
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if f == nil {
		return "", false, errors.New("store not initialized")
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := f.keyFile(key)
	if err != nil {
		return "", false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read key %q: %w", key, err)
	}
	return string(data), true, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	if f == nil {
		return errors.New("store not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.keyFile(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

func (f *File) Remove(ctx context.Context, key string) error {
	if f == nil {
		return errors.New("store not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.keyFile(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove key %q: %w", key, err)
	}
	return nil
}

func (f *File) keyFile(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("store key required")
	}
	encoded := base64.RawURLEncoding.EncodeToString([]byte(trimmed))
	return filepath.Join(f.root, fmt.Sprintf("kv_%s.json", encoded)), nil
}
