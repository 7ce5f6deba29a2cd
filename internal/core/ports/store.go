package ports

import "context"

// Store is the key-prefixed adapter over the shared key-value area. Values
// are JSON-serialized by the implementation; callers deserialize tolerantly.
//
// Errors never propagate: Get reports absence (or an unreadable backend) as
// (nil, false), and Set reports failure as false so callers can queue the
// write for replay. Callers must not store secrets here — there is no
// encryption at rest.
type Store interface {
	// Get returns the raw JSON stored under key, or ok=false when the key
	// is absent or the backend is unavailable.
	Get(ctx context.Context, key string) (value []byte, ok bool)

	// Set marshals value to JSON and stores it under key. Returns false on
	// marshal or backend failure.
	Set(ctx context.Context, key string, value any) bool

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string)

	// Healthy reports backend reachability, for readiness probes.
	Healthy(ctx context.Context) error
}
