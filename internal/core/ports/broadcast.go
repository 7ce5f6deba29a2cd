package ports

import (
	"context"

	"github.com/neuradash/account-system/internal/core/domain"
)

// SyncBroadcaster propagates change notices between service instances so
// each can invalidate its in-memory cache. Delivery is eventually
// consistent with no ordering guarantee relative to the receiver's own
// in-flight writes.
type SyncBroadcaster interface {
	// Publish sends the notice to all other instances. Failures are logged
	// by the implementation, never surfaced.
	Publish(ctx context.Context, notice domain.ChangeNotice)

	// Subscribe invokes fn for every notice seen on the channel, including
	// echoes of the subscriber's own; callers filter by instance id.
	// It returns after starting the receive loop; the loop stops when ctx
	// is cancelled.
	Subscribe(ctx context.Context, fn func(domain.ChangeNotice))
}
