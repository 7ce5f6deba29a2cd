package domain

import "time"

// Event names emitted by the broadcaster.
const (
	EventInitialized     = "initialized"
	EventUserLoaded      = "user_loaded"
	EventUserUpdated     = "user_updated"
	EventPlanChanged     = "plan_changed"
	EventSettingsUpdated = "settings_updated"
	EventLoggedOut       = "logged_out"
	EventActivityTracked = "activity_tracked"
	EventNotification    = "notification"
)

// PlanChange is the payload of EventPlanChanged.
type PlanChange struct {
	OldPlanID string `json:"oldPlanId"`
	NewPlanID string `json:"newPlanId"`
}

// ActivityEntry records a single tracked user action. Recent entries live
// under the activity_log storage key; the full history is archived
// asynchronously.
type ActivityEntry struct {
	UserID    string         `json:"userId"`
	Action    string         `json:"action"`
	Meta      map[string]any `json:"meta,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ChangeNotice is published to other service instances after every persisted
// write so they can invalidate their caches. Instance identifies the writer;
// subscribers ignore their own notices.
type ChangeNotice struct {
	Instance string   `json:"instance"`
	Event    string   `json:"event"`
	Keys     []string `json:"keys,omitempty"`
}
