// Package memkv is an in-memory kv.Store used by tests.
package memkv

import (
	"context"
	"sync"
)

type MemKV struct {
	mu      sync.RWMutex
	records map[string]string
}

func New() *MemKV {
	return &MemKV{records: map[string]string{}}
}

func (db *MemKV) Get(ctx context.Context, key string) (string, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, found := db.records[key]
	return value, found, nil
}

func (db *MemKV) Set(ctx context.Context, key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.records[key] = value
	return nil
}

func (db *MemKV) Delete(ctx context.Context, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.records, key)
	return nil
}

func (db *MemKV) Close() error { return nil }
