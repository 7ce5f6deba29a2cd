// Package gateway provides the simulated network backend for auth and
// payment flows. Responses are delayed by a configurable interval to mimic
// real round-trip latency, and every call honours context cancellation.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/neuradash/account-system/internal/core/domain"
	"github.com/neuradash/account-system/internal/core/ports"
)

type account struct {
	id           string
	name         string
	passwordHash []byte
}

// SimulatedGateway answers auth and payment calls from an in-memory account
// table. Unknown logins are auto-provisioned, which keeps demo environments
// usable without a seeding step.
type SimulatedGateway struct {
	delay time.Duration
	log   zerolog.Logger

	mu       sync.Mutex
	accounts map[string]*account // keyed by lowercased email
	now      func() time.Time
}

func NewSimulatedGateway(delay time.Duration, log zerolog.Logger) *SimulatedGateway {
	return &SimulatedGateway{
		delay:    delay,
		log:      log,
		accounts: make(map[string]*account),
		now:      time.Now,
	}
}

// Do dispatches to the endpoint handler after the configured delay. The delay
// is interruptible: a cancelled context returns ctx.Err immediately.
func (g *SimulatedGateway) Do(ctx context.Context, endpoint string, payload map[string]any) (*ports.GatewayResponse, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	switch endpoint {
	case ports.EndpointLogin:
		return g.login(payload)
	case ports.EndpointSignup:
		return g.signup(payload)
	case ports.EndpointCharge:
		return g.charge(payload)
	default:
		return nil, fmt.Errorf("gateway: unknown endpoint %q", endpoint)
	}
}

func (g *SimulatedGateway) login(payload map[string]any) (*ports.GatewayResponse, error) {
	email := strings.ToLower(str(payload, "email"))
	password := str(payload, "password")
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	acc, ok := g.accounts[email]
	if !ok {
		// Auto-provision: first login creates the account.
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		acc = &account{id: uuid.NewString(), name: nameFromEmail(email), passwordHash: hash}
		g.accounts[email] = acc
		g.log.Info().Str("email", email).Msg("account auto-provisioned on login")
	} else if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return &ports.GatewayResponse{Success: true, User: g.userPayload(acc, email)}, nil
}

func (g *SimulatedGateway) signup(payload map[string]any) (*ports.GatewayResponse, error) {
	email := strings.ToLower(str(payload, "email"))
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(str(payload, "password")), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.accounts[email]; exists {
		return nil, domain.ErrInvalidCredentials
	}

	acc := &account{id: uuid.NewString(), passwordHash: hash}
	if name := str(payload, "name"); name != "" {
		acc.name = name
	} else {
		acc.name = nameFromEmail(email)
	}
	g.accounts[email] = acc

	return &ports.GatewayResponse{Success: true, User: g.userPayload(acc, email)}, nil
}

// charge approves every payment and returns the subscription the caller
// described. Card numbers ending in 0000 are declined so failure paths stay
// exercisable.
func (g *SimulatedGateway) charge(payload map[string]any) (*ports.GatewayResponse, error) {
	if strings.HasSuffix(str(payload, "paymentMethod"), "0000") {
		return nil, domain.ErrPaymentDeclined
	}

	planID := str(payload, "planId")
	plan, ok := domain.LookupPlan(planID)
	if !ok {
		return nil, domain.ErrUnknownPlan
	}

	sub := domain.DefaultSubscription(plan, g.now())
	if pm := str(payload, "paymentMethod"); pm != "" {
		sub.PaymentMethod = pm
	}
	return &ports.GatewayResponse{Success: true, Subscription: &sub}, nil
}

func (g *SimulatedGateway) userPayload(acc *account, email string) map[string]any {
	return map[string]any{
		"id":     acc.id,
		"name":   acc.name,
		"email":  email,
		"planId": domain.PlanFree,
	}
}

func str(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

// nameFromEmail derives a display name from the local part of an address.
func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	words := strings.Fields(local)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "New User"
	}
	return strings.Join(words, " ")
}
