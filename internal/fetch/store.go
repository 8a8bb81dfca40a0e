package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fjacquet/mis-parser/internal/fileutils"
)

// ObjectStore reads and writes whole objects.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
}

// Registry resolves the store serving a locator scheme.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]ObjectStore
}

// NewRegistry creates a Registry with a LocalStore for file locators.
func NewRegistry() *Registry {
	return &Registry{stores: map[string]ObjectStore{SchemeFile: LocalStore{}}}
}

// Register serves scheme with store.
func (r *Registry) Register(scheme string, store ObjectStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[scheme] = store
}

// Store returns the store for scheme.
func (r *Registry) Store(scheme string) (ObjectStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[scheme]
	if !ok {
		return nil, fmt.Errorf("no object store configured for scheme '%s'", scheme)
	}
	return s, nil
}

// Get reads the object at loc.
func (r *Registry) Get(ctx context.Context, loc Locator) ([]byte, error) {
	s, err := r.Store(loc.Scheme)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loc.Bucket, loc.Key)
}

// Put writes data to loc.
func (r *Registry) Put(ctx context.Context, loc Locator, data []byte) error {
	s, err := r.Store(loc.Scheme)
	if err != nil {
		return err
	}
	return s.Put(ctx, loc.Bucket, loc.Key, data)
}

// LocalStore reads and writes local files. A non-empty bucket is a directory
// the key is relative to.
type LocalStore struct{}

func (LocalStore) path(bucket, key string) string {
	if bucket == "" {
		return key
	}
	return filepath.Join(bucket, key)
}

// Get implements ObjectStore.
func (s LocalStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(bucket, key)) // #nosec G304 -- operator supplied input path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path(bucket, key), err)
	}
	return data, nil
}

// Put implements ObjectStore.
func (s LocalStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fileutils.WriteFile(s.path(bucket, key), data, 0600)
}
