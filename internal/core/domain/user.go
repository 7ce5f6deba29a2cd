package domain

import (
	"encoding/json"
	"errors"
	"regexp"
	"time"
)

// Storage keys under the configured prefix. The layout is conceptual and
// not guaranteed stable across versions.
const (
	KeyUserData     = "user_data"
	KeySubscription = "subscription"
	KeySettings     = "settings"
	KeyActivityLog  = "activity_log"
	KeyLastSync     = "last_sync"
)

var ErrNoUser = errors.New("no user loaded")
var ErrUnknownPlan = errors.New("unknown plan id")
var ErrInvalidEmail = errors.New("invalid email address")
var ErrInvalidPatch = errors.New("invalid patch")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrPaymentDeclined = errors.New("payment declined")

// emailRx accepts the basic local@domain.tld shape. Anything stricter is the
// responsibility of whatever real backend eventually replaces the simulator.
var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRx.MatchString(s)
}

// UserRecord is the canonical persisted identity. Fields the schema does not
// know about survive round-trips through Extra so older writers cannot drop
// data written by newer ones.
type UserRecord struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email,omitempty"`
	ProfileImage  string     `json:"profileImage,omitempty"`
	PlanID        string     `json:"planId,omitempty"`
	Plan          string     `json:"plan,omitempty"`
	LoginTime     *time.Time `json:"loginTime,omitempty"`
	SessionExpiry *time.Time `json:"sessionExpiry,omitempty"`
	LastModified  time.Time  `json:"lastModified"`

	Extra map[string]any `json:"-"`
}

// knownRecordKeys are the JSON keys owned by the typed schema above.
var knownRecordKeys = map[string]struct{}{
	"id": {}, "name": {}, "email": {}, "profileImage": {}, "planId": {},
	"plan": {}, "loginTime": {}, "sessionExpiry": {}, "lastModified": {},
}

type userRecordAlias UserRecord

// MarshalJSON flattens Extra into the top-level object.
func (u UserRecord) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(userRecordAlias(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return base, nil
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range u.Extra {
		if _, known := knownRecordKeys[k]; !known {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON fills the typed fields and keeps unknown keys in Extra.
func (u *UserRecord) UnmarshalJSON(data []byte) error {
	var alias userRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*u = UserRecord(alias)
	for k := range knownRecordKeys {
		delete(m, k)
	}
	if len(m) > 0 {
		u.Extra = m
	}
	return nil
}

// SessionExpired reports whether the record carries a sessionExpiry strictly
// in the past. Absence of sessionExpiry means the session never expires.
func (u *UserRecord) SessionExpired(now time.Time) bool {
	return u.SessionExpiry != nil && u.SessionExpiry.Before(now)
}

// Defaulted returns a copy with placeholder identity filled in where absent.
func (u UserRecord) Defaulted() UserRecord {
	if u.Name == "" {
		u.Name = "Guest User"
	}
	if u.Email == "" {
		u.Email = "guest@example.com"
	}
	if u.PlanID == "" {
		u.PlanID = PlanFree
	}
	return u
}

// ApplyPatch shallow-merges patch over the record, last write wins. Keys the
// schema owns update their typed fields; everything else lands in Extra. The
// subscription and settings sub-objects are not record fields and must be
// split off by the caller before merging.
func (u *UserRecord) ApplyPatch(patch map[string]any) {
	for k, v := range patch {
		switch k {
		case "id":
			u.ID = asString(v)
		case "name":
			u.Name = asString(v)
		case "email":
			u.Email = asString(v)
		case "profileImage":
			u.ProfileImage = asString(v)
		case "planId":
			u.PlanID = asString(v)
		case "plan":
			u.Plan = asString(v)
		case "loginTime":
			u.LoginTime = asTime(v)
		case "sessionExpiry":
			u.SessionExpiry = asTime(v)
		case "lastModified":
			// always set by the manager on write, never by callers
		default:
			if u.Extra == nil {
				u.Extra = make(map[string]any)
			}
			u.Extra[k] = v
		}
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}
