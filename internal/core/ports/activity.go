package ports

import (
	"context"

	"github.com/neuradash/account-system/internal/core/domain"
)

// ActivityRepository persists activity entries to the long-term archive.
type ActivityRepository interface {
	Insert(ctx context.Context, entry *domain.ActivityEntry) error
}

// ActivityArchiver accepts entries for asynchronous archival. The queue
// dispatcher implements this; a nil-safe no-op stands in when no archive
// backend is configured.
type ActivityArchiver interface {
	Enqueue(entry domain.ActivityEntry)
}
