package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates session access across replicas. The session
// manager acquires the lock for a session ID before loading or saving, so one
// turn at a time runs per session even with multiple engine instances.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired, the context is
	// canceled, or the TTL expires. The returned UnlockFunc MUST be called to
	// release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
