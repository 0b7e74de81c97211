// Package kv defines the device-local key-value primitive that every
// persisted record sits on. Values are opaque strings; callers decide
// the encoding.
package kv

import "context"

// Store is a string-keyed key-value store. An absent key is not an
// error: Get reports found=false and implementations never invent
// defaults themselves.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
