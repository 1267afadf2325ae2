// Package secrets provides the key-value repository backing the secure
// token store.
package secrets

import "context"

// Repository is a byte-oriented key-value store for secret material.
//
// Contract:
//   - Get returns (nil, nil) when the key is absent; errors are reserved
//     for underlying storage faults.
//   - Set upserts.
//   - Delete and Clear are idempotent; removing absent keys is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
