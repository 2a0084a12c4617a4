package blob

import "context"

// Repository is a key/value blob store. Get reports ok=false for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
