// Package billing provides models and repositories for subscription payments.
package billing

import "time"

// Transaction represents one completed subscription payment.
// Rows are created by the payment webhook and never modified; the analytics
// engine only reads them in aggregate sums.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Plan represents a subscription plan offered by the platform.
type Plan struct {
	ID    string  `json:"subscription_id"`
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

// UserSubscription links a user to a plan.
type UserSubscription struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	PlanID   string `json:"subscription_id"`
	IsActive bool   `json:"is_active"`
}

// PlanBreakdown is the per-plan count of active subscriptions.
// The "Unknown" type is used when the plan row no longer exists.
type PlanBreakdown struct {
	PlanID string `json:"subscription_id"`
	Type   string `json:"type"`
	Count  int    `json:"count"`
}
