// Package analytics implements the revenue-attribution engine: it aggregates
// watch time across users and media and splits the provider half of
// subscription revenue proportionally to minute-weighted consumption.
package analytics

import (
	"github.com/lumora/playshare/internal/billing"
)

// RevenueSummary holds platform revenue totals and the fixed 50/50 split
// between the platform ("admin share") and the provider pool.
type RevenueSummary struct {
	TotalRevenue         float64 `json:"totalRevenue"`
	MonthlyRevenue       float64 `json:"monthlyRevenue"`
	AdminShareTotal      float64 `json:"adminShareTotal"`
	AdminShareMonthly    float64 `json:"adminShareMonthly"`
	ProviderShareTotal   float64 `json:"providerShareTotal"`
	ProviderShareMonthly float64 `json:"providerShareMonthly"`
}

// MediaStats holds consumption aggregates for one media item.
type MediaStats struct {
	TotalViews      int
	UniqueViews     int
	MinutesConsumed float64
	MonthlyMinutes  float64
}

// ItemPerformance is the per-item row of a provider's performance report.
type ItemPerformance struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Duration        *int    `json:"duration"`
	TotalViews      int     `json:"totalViews"`
	UniqueViews     int     `json:"uniqueViews"`
	MinutesConsumed float64 `json:"minutesConsumed"`
	MonthlyMinutes  float64 `json:"monthlyMinutes"`
	RevenueEarned   float64 `json:"revenueEarned"`
	MonthlyEarnings float64 `json:"monthlyEarnings"`
}

// ProviderPerformance is one provider's aggregate row.
//
// UniqueViews is the sum of per-item unique-viewer counts, not a deduplicated
// viewer count across the provider's catalog: a viewer who watched two of the
// provider's items counts twice here. Existing dashboards depend on this
// figure, so it is kept as-is.
type ProviderPerformance struct {
	ProviderID           string            `json:"providerId"`
	ProviderName         string            `json:"providerName"`
	ProviderEmail        string            `json:"providerEmail"`
	TotalViews           int               `json:"totalViews"`
	UniqueViews          int               `json:"uniqueViews"`
	MinutesConsumed      float64           `json:"minutesConsumed"`
	MonthlyMinutes       float64           `json:"monthlyMinutes"`
	RevenueEarned        float64           `json:"revenueEarned"`
	MonthlyRevenueEarned float64           `json:"monthlyRevenueEarned"`
	Items                []ItemPerformance `json:"items"`
}

// PlatformPerformance is the full provider breakdown plus the platform-wide
// minute totals used as allocation denominators.
type PlatformPerformance struct {
	ProviderPerformance         []ProviderPerformance `json:"providerPerformance"`
	TotalPlatformMinutes        float64               `json:"totalPlatformMinutes"`
	TotalPlatformMonthlyMinutes float64               `json:"totalPlatformMonthlyMinutes"`
}

// SubscriptionActivity summarizes subscription state for the admin report.
type SubscriptionActivity struct {
	Active                int                     `json:"active"`
	Inactive              int                     `json:"inactive"`
	SubscriptionBreakdown []billing.PlanBreakdown `json:"subscriptionBreakdown"`
}

// AdminReport is the platform-wide analytics payload.
type AdminReport struct {
	Revenue             RevenueSummary        `json:"revenue"`
	UserActivity        SubscriptionActivity  `json:"userActivity"`
	ProviderPerformance []ProviderPerformance `json:"providerPerformance"`
}

// ProviderTotals holds one provider's headline figures in the self-service report.
type ProviderTotals struct {
	ProviderTotalMinutes   float64 `json:"providerTotalMinutes"`
	ProviderMonthlyMinutes float64 `json:"providerMonthlyMinutes"`
	ProviderShareTotal     float64 `json:"providerShareTotal"`
	ProviderShareMonthly   float64 `json:"providerShareMonthly"`
}

// ProviderReport is the self-service analytics payload for one provider.
// An unknown provider or one with no attributable media is a valid, empty
// report carrying Message, not an error.
type ProviderReport struct {
	Analytics      []ItemPerformance `json:"analytics"`
	ProviderTotals ProviderTotals    `json:"providerTotals"`
	Message        string            `json:"message,omitempty"`
}
