package ports

import (
	"context"

	"github.com/neuradash/account-system/internal/core/domain"
)

// AccountService owns the canonical user record lifecycle: reads with
// enrichment, validated writes, plan changes, and teardown. All operations
// degrade to nil/false instead of returning errors; callers check return
// values (the enforcement of the spec's no-throw boundary).
type AccountService interface {
	// GetUserData returns the cached enriched record, re-reading from the
	// store when forceRefresh is set or no cache exists. Returns nil when
	// no user is stored or the session has expired (which also clears the
	// stale record).
	GetUserData(ctx context.Context, forceRefresh bool) *domain.EnrichedRecord

	// SaveUserData validates and merges patch over the stored record.
	// Returns false, persisting nothing, when validation fails.
	SaveUserData(ctx context.Context, patch map[string]any) bool

	// UpdateUserPlan switches the user to planID, building a fresh active
	// subscription. details may carry payment metadata; nil uses defaults.
	UpdateUserPlan(ctx context.Context, planID string, details *domain.Subscription) bool

	// UpdateSettings shallow-merges patch into the settings bag.
	UpdateSettings(ctx context.Context, patch map[string]any) bool

	// Settings returns the current settings bag, never nil.
	Settings(ctx context.Context) map[string]any

	// ClearUserData removes the user record and subscription (and settings
	// when clearSettings is set), drops the cache, and stops the sync loop.
	ClearUserData(ctx context.Context, clearSettings bool)

	// HasAccess and HasPlan are pure reads against the cached enrichment;
	// both report false when no user is loaded.
	HasAccess(feature string) bool
	HasPlan(minPlanID string) bool
	IsLoggedIn() bool

	// TrackActivity appends an entry to the recent-activity log, emits
	// activity_tracked, and hands the entry to the archiver.
	TrackActivity(ctx context.Context, action string, meta map[string]any)

	// RecentActivity returns up to limit recent entries, newest first.
	RecentActivity(ctx context.Context, limit int) []domain.ActivityEntry
}
