package kv

import (
	"context"
)

// Repository is the durable key/value storage a client profile lives in.
//
// Get returns (nil, nil) for an absent key. Delete and DeleteMany are
// idempotent. SetMany is all-or-nothing: either every pair is written or
// none is.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
