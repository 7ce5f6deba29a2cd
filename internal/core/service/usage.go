package service

import "github.com/neuradash/account-system/internal/core/domain"

// Effective limits substituted for the Unlimited sentinel so the generator
// has a range to work with.
const (
	effAPILimit      = 250000
	effModelsLimit   = 64
	effProjectsLimit = 32
)

// MockUsage generates the synthetic usage statistics shown on the dashboard.
// This is cosmetic demo data, not telemetry: the numbers are derived
// deterministically from the email seed and the plan's limits so they look
// stable across reads without any real measurement behind them. A future
// analytics pipeline replaces this function wholesale.
func MockUsage(email string, plan domain.PlanEntry) domain.UsageStats {
	seed := emailSeed(email)

	apiCap := plan.APILimit
	if apiCap == domain.Unlimited {
		apiCap = effAPILimit
	}
	modelsCap := plan.ModelsLimit
	if modelsCap == domain.Unlimited {
		modelsCap = effModelsLimit
	}
	projectsCap := plan.ProjectsLimit
	if projectsCap == domain.Unlimited {
		projectsCap = effProjectsLimit
	}

	apiCalls := (seed * 37) % apiCap
	if floor := apiCap / 20; apiCalls < floor {
		apiCalls += floor
	}

	return domain.UsageStats{
		APICalls:       apiCalls,
		APILimit:       plan.APILimit,
		StoragePercent: 15 + seed%70,
		ActiveModels:   1 + seed%modelsCap,
		ModelsLimit:    plan.ModelsLimit,
		ProjectsUsed:   1 + (seed/3)%projectsCap,
		ProjectsLimit:  plan.ProjectsLimit,
		Accuracy:       90 + float64(seed%90)/10,
		Uptime:         99.5 + float64(seed%50)/100,
		AvgResponseMs:  80 + seed%140,
	}
}

// emailSeed sums the byte values of the email string.
func emailSeed(email string) int {
	seed := 0
	for _, b := range []byte(email) {
		seed += int(b)
	}
	return seed
}
