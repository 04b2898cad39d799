// Package storage provides the durable key-value adapters behind the status
// store and the submission credentials. Adapters are interface-driven so the
// engine can run against memory in tests, Redis on a gateway deployment, or
// an encrypted file on a device, without rewiring business code.
package storage

import "context"

// KV is the non-secret persistence adapter. Values are the engine's own
// JSON-shaped serializations.
type KV interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}

// SecureKV stores cryptographic submission material. Same contract as KV,
// but implementations are expected to seal values at rest.
type SecureKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
