package ports

import (
	"context"

	"github.com/neuradash/account-system/internal/core/domain"
)

// Gateway endpoints understood by the simulated backend.
const (
	EndpointLogin  = "/auth/login"
	EndpointSignup = "/auth/signup"
	EndpointCharge = "/payment/charge"
)

// GatewayResponse is the result of a simulated backend round-trip.
type GatewayResponse struct {
	Success bool
	// User carries the raw record fields to pass into SaveUserData after
	// a login or signup.
	User map[string]any
	// Subscription is set by the payment endpoint on a successful charge.
	Subscription *domain.Subscription
}

// Gateway models the network backend the UI flows talk to. The shipped
// implementation is a timer-delayed simulator; swapping in a real API must
// not require changes at call sites, so the interface is a real
// asynchronous contract honouring context cancellation.
type Gateway interface {
	Do(ctx context.Context, endpoint string, payload map[string]any) (*GatewayResponse, error)
}
