package domain

import "encoding/json"

// Feature flags recognised by permission checks.
const (
	FeatureAPIAccess       = "apiAccess"
	FeatureTeamMembers     = "teamMembers"
	FeatureCustomModels    = "customModels"
	FeatureWhiteLabel      = "whiteLabel"
	FeaturePrioritySupport = "prioritySupport"
	FeatureSSO             = "sso"
)

// UsageStats are synthetic usage metrics derived deterministically from the
// account's email seed and plan limits. They are demo data standing in for
// real telemetry and are never persisted.
type UsageStats struct {
	APICalls       int     `json:"apiCalls"`
	APILimit       int     `json:"apiLimit"`
	StoragePercent int     `json:"storagePercent"`
	ActiveModels   int     `json:"activeModels"`
	ModelsLimit    int     `json:"modelsLimit"`
	ProjectsUsed   int     `json:"projectsUsed"`
	ProjectsLimit  int     `json:"projectsLimit"`
	Accuracy       float64 `json:"accuracy"`
	Uptime         float64 `json:"uptime"`
	AvgResponseMs  int     `json:"avgResponseMs"`
}

// Permissions are plan-gated capability booleans, computed on read from the
// plan's position in the catalog order.
type Permissions struct {
	APIAccess       bool `json:"apiAccess"`
	TeamMembers     bool `json:"teamMembers"`
	CustomModels    bool `json:"customModels"`
	WhiteLabel      bool `json:"whiteLabel"`
	PrioritySupport bool `json:"prioritySupport"`
	SSO             bool `json:"sso"`
}

// PermissionsForPlan gates each capability by the plan's index in the total
// order: basic unlocks API access and teams, pro unlocks customisation and
// priority support, enterprise unlocks SSO.
func PermissionsForPlan(planID string) Permissions {
	idx := PlanIndex(planID)
	return Permissions{
		APIAccess:       idx >= 1,
		TeamMembers:     idx >= 1,
		CustomModels:    idx >= 2,
		WhiteLabel:      idx >= 2,
		PrioritySupport: idx >= 2,
		SSO:             idx >= 3,
	}
}

// Allows reports whether the permission set grants the named feature.
// Unknown feature names are denied.
func (p Permissions) Allows(feature string) bool {
	switch feature {
	case FeatureAPIAccess:
		return p.APIAccess
	case FeatureTeamMembers:
		return p.TeamMembers
	case FeatureCustomModels:
		return p.CustomModels
	case FeatureWhiteLabel:
		return p.WhiteLabel
	case FeaturePrioritySupport:
		return p.PrioritySupport
	case FeatureSSO:
		return p.SSO
	default:
		return false
	}
}

// EnrichedRecord is a user record combined with catalog-derived plan info,
// computed usage, computed permissions, and subscription details. It is the
// read model handed to consumers and is never itself persisted.
type EnrichedRecord struct {
	UserRecord
	PlanInfo     PlanEntry             `json:"planInfo"`
	Usage        UsageStats            `json:"usage"`
	Permissions  Permissions           `json:"permissions"`
	Subscription *EnrichedSubscription `json:"subscription,omitempty"`
}

// MarshalJSON emits the record fields flattened at the top level alongside
// the enrichment. Without this, the promoted UserRecord marshaller would
// drop the enrichment fields entirely.
func (e EnrichedRecord) MarshalJSON() ([]byte, error) {
	base, err := e.UserRecord.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	m["planInfo"] = e.PlanInfo
	m["usage"] = e.Usage
	m["permissions"] = e.Permissions
	if e.Subscription != nil {
		m["subscription"] = e.Subscription
	}
	return json.Marshal(m)
}
