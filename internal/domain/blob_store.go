package domain

import "context"

//go:generate mockgen -source=blob_store.go -destination=blob_store_mock.go -package=domain

// BlobStore is an opaque last-write-wins key/value store.
// Load returns (nil, nil) when the key is absent.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Ping(ctx context.Context) error
}
