package domain

import "strconv"

// Plan identifiers, in ascending order of capability.
const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Unlimited is the conventional sentinel for numeric limits without a cap.
const Unlimited = -1

// PlanEntry describes a subscription tier. The catalog is immutable at
// runtime; entries are returned by value so callers cannot mutate it.
type PlanEntry struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	APILimit      int      `json:"apiLimit"`
	ModelsLimit   int      `json:"modelsLimit"`
	ProjectsLimit int      `json:"projectsLimit"`
	StorageLimit  string   `json:"storageLimit"`
	Features      []string `json:"features"`
	Color         string   `json:"color"`
	Icon          string   `json:"icon"`
	PriceMonthly  float64  `json:"priceMonthly"`
}

// planOrder defines the total order free < basic < pro < enterprise used for
// permission gating and upgrade/downgrade detection.
var planOrder = []string{PlanFree, PlanBasic, PlanPro, PlanEnterprise}

var planCatalog = map[string]PlanEntry{
	PlanFree: {
		ID: PlanFree, Name: "Free", APILimit: 1000, ModelsLimit: 3,
		ProjectsLimit: 2, StorageLimit: "5GB",
		Features: []string{"Basic analytics", "Community support", "2 projects"},
		Color:    "#9CA3AF", Icon: "circle", PriceMonthly: 0,
	},
	PlanBasic: {
		ID: PlanBasic, Name: "Basic", APILimit: 10000, ModelsLimit: 10,
		ProjectsLimit: 10, StorageLimit: "50GB",
		Features: []string{"API access", "Team members", "Email support", "10 projects"},
		Color:    "#3B82F6", Icon: "zap", PriceMonthly: 9.99,
	},
	PlanPro: {
		ID: PlanPro, Name: "Pro", APILimit: 100000, ModelsLimit: 50,
		ProjectsLimit: 100, StorageLimit: "500GB",
		Features: []string{"Custom models", "White label", "Priority support", "Advanced analytics"},
		Color:    "#8B5CF6", Icon: "star", PriceMonthly: 49.99,
	},
	PlanEnterprise: {
		ID: PlanEnterprise, Name: "Enterprise", APILimit: Unlimited, ModelsLimit: Unlimited,
		ProjectsLimit: Unlimited, StorageLimit: "Unlimited",
		Features: []string{"Unlimited everything", "SSO", "Dedicated support", "Custom SLA"},
		Color:    "#F59E0B", Icon: "building", PriceMonthly: 299,
	},
}

// LookupPlan resolves a plan id to its catalog entry.
func LookupPlan(id string) (PlanEntry, bool) {
	p, ok := planCatalog[id]
	return p, ok
}

// PlanIndex returns the position of id in the plan order, or -1 for unknown
// ids. Higher index means a more capable plan.
func PlanIndex(id string) int {
	for i, p := range planOrder {
		if p == id {
			return i
		}
	}
	return -1
}

// ListPurchasablePlans returns every catalog entry except free, in order.
func ListPurchasablePlans() []PlanEntry {
	out := make([]PlanEntry, 0, len(planOrder)-1)
	for _, id := range planOrder[1:] {
		out = append(out, planCatalog[id])
	}
	return out
}

// PlanComparison is a catalog entry annotated with display-ready limits.
type PlanComparison struct {
	PlanEntry
	APILimitLabel      string `json:"apiLimitLabel"`
	ModelsLimitLabel   string `json:"modelsLimitLabel"`
	ProjectsLimitLabel string `json:"projectsLimitLabel"`
}

// ComparePlans returns all entries, in order, with human-formatted limits.
func ComparePlans() []PlanComparison {
	out := make([]PlanComparison, 0, len(planOrder))
	for _, id := range planOrder {
		p := planCatalog[id]
		out = append(out, PlanComparison{
			PlanEntry:          p,
			APILimitLabel:      FormatLimit(p.APILimit),
			ModelsLimitLabel:   FormatLimit(p.ModelsLimit),
			ProjectsLimitLabel: FormatLimit(p.ProjectsLimit),
		})
	}
	return out
}

// FormatLimit renders a numeric limit for display, mapping the Unlimited
// sentinel to its label.
func FormatLimit(n int) string {
	if n == Unlimited {
		return "Unlimited"
	}
	return strconv.Itoa(n)
}
