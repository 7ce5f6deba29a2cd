package domain

import (
	"math"
	"time"
)

const SubscriptionActive = "active"

// Subscription is the secondary persisted entity describing the billing
// relationship. It is keyed separately from the user record; absence implies
// an implicit free, inactive subscription.
type Subscription struct {
	PlanID        string    `json:"planId"`
	PlanName      string    `json:"planName"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Status        string    `json:"status"`
	AutoRenew     bool      `json:"autoRenew"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency,omitempty"`
}

// EnrichedSubscription carries the derived fields computed on every read.
// None of them are persisted.
type EnrichedSubscription struct {
	Subscription
	DaysRemaining  int  `json:"daysRemaining"`
	IsExpiringSoon bool `json:"isExpiringSoon"`
	IsExpired      bool `json:"isExpired"`
}

// Enrich derives the remaining-time view of the subscription at now.
// DaysRemaining is the ceiling of (endDate - now) in days.
func (s Subscription) Enrich(now time.Time) EnrichedSubscription {
	days := int(math.Ceil(s.EndDate.Sub(now).Hours() / 24))
	return EnrichedSubscription{
		Subscription:   s,
		DaysRemaining:  days,
		IsExpiringSoon: days > 0 && days <= 7,
		IsExpired:      days <= 0,
	}
}

// DefaultSubscription builds the subscription created by a plan change when
// the caller supplies no details: active, starting now, ending 30 days out.
// The free plan gets an effectively non-expiring end date (~100 years).
func DefaultSubscription(plan PlanEntry, now time.Time) Subscription {
	end := now.AddDate(0, 0, 30)
	if plan.ID == PlanFree {
		end = now.AddDate(100, 0, 0)
	}
	return Subscription{
		PlanID:    plan.ID,
		PlanName:  plan.Name,
		StartDate: now,
		EndDate:   end,
		Status:    SubscriptionActive,
		AutoRenew: true,
		Amount:    plan.PriceMonthly,
		Currency:  "USD",
	}
}
