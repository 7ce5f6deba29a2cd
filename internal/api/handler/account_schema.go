package handler

import "github.com/neuradash/account-system/internal/core/domain"

// --- Request types ---

type signupRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	RememberMe bool   `json:"rememberMe"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type updatePlanRequest struct {
	PlanID        string `json:"planId" validate:"required"`
	PaymentMethod string `json:"paymentMethod"`
}

type trackActivityRequest struct {
	Action string         `json:"action" validate:"required"`
	Meta   map[string]any `json:"meta"`
}

// --- Response types ---

type authResponse struct {
	Token string                 `json:"token"`
	User  *domain.EnrichedRecord `json:"user"`
}

type settingsResponse struct {
	Settings map[string]any `json:"settings"`
}

type activityResponse struct {
	Entries []domain.ActivityEntry `json:"entries"`
}

// exportResponse is the full portable account snapshot.
type exportResponse struct {
	User       *domain.EnrichedRecord `json:"user"`
	Settings   map[string]any         `json:"settings"`
	Activity   []domain.ActivityEntry `json:"activity"`
	ExportedAt string                 `json:"exportedAt"`
}
