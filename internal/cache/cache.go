package cache

import (
	"context"
	"time"
)

// Cache is the short-lived key/value store behind token revocation and
// password reset tickets.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	// TakeJSON reads and deletes key in one step; single-use values go through it.
	TakeJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	Del(ctx context.Context, keys ...string) error
}
