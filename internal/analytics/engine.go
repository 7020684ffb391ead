package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lumora/playshare/internal/billing"
	"github.com/lumora/playshare/internal/catalog"
	"github.com/lumora/playshare/internal/watch"
)

// Revenue is split evenly between the platform and the provider pool.
const providerPoolShare = 0.5

// NoMediaMessage is returned in the provider report when no media is
// attributable to the requesting provider.
const NoMediaMessage = "No media found for this provider (ensure media.provider_id exists)."

// Engine computes revenue and consumption reports from the billing, catalog
// and watch repositories. It holds no state of its own; every report is
// computed from the repositories at call time.
type Engine struct {
	billing billing.Repository
	catalog catalog.Repository
	watch   watch.Repository
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewEngine creates an analytics engine over the given repositories.
func NewEngine(b billing.Repository, c catalog.Repository, w watch.Repository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		billing: b,
		catalog: c,
		watch:   w,
		logger:  logger,
		now:     time.Now,
	}
}

// WithMetrics attaches a metric set to the engine.
func (e *Engine) WithMetrics(m *Metrics) *Engine {
	e.metrics = m
	return e
}

// WithClock overrides the engine's clock. Used by tests to pin the
// current-month window.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// monthBounds returns the inclusive [start, end] range of the month containing
// now, in now's location. Month boundaries follow the server's local timezone.
func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// round2 rounds to two decimal places. Applied only where a figure leaves the
// engine; intermediate accumulation stays at full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RevenueSummary returns lifetime and current-month revenue with the 50/50
// platform/provider split. All figures are rounded to cents.
func (e *Engine) RevenueSummary(ctx context.Context) (RevenueSummary, error) {
	start := e.now()
	summary, err := e.revenueSummary(ctx)
	e.metrics.observeCompute("revenue", start, err)
	return summary, err
}

func (e *Engine) revenueSummary(ctx context.Context) (RevenueSummary, error) {
	total, err := e.billing.SumAmounts(ctx)
	if err != nil {
		return RevenueSummary{}, fmt.Errorf("summing lifetime revenue: %w", err)
	}
	monthStart, monthEnd := monthBounds(e.now())
	monthly, err := e.billing.SumAmountsBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return RevenueSummary{}, fmt.Errorf("summing monthly revenue: %w", err)
	}
	return RevenueSummary{
		TotalRevenue:         round2(total),
		MonthlyRevenue:       round2(monthly),
		AdminShareTotal:      round2(total * providerPoolShare),
		AdminShareMonthly:    round2(monthly * providerPoolShare),
		ProviderShareTotal:   round2(total * providerPoolShare),
		ProviderShareMonthly: round2(monthly * providerPoolShare),
	}, nil
}

// mediaStats aggregates view counts and watch minutes for one media item.
//
// Minutes are the sum of every recorded checkpoint's progress divided by 60,
// not the high-water mark per viewer: a viewer whose client reported progress
// at 30s and again at 60s contributes 1.5 minutes. Payout weights and
// historical dashboards are built on this definition, so it must not be
// changed in isolation.
func (e *Engine) mediaStats(ctx context.Context, mediaID string, monthStart, monthEnd time.Time) (MediaStats, error) {
	views, err := e.watch.CountViews(ctx, mediaID)
	if err != nil {
		return MediaStats{}, fmt.Errorf("counting views for media %s: %w", mediaID, err)
	}
	unique, err := e.watch.CountUniqueViewers(ctx, mediaID)
	if err != nil {
		return MediaStats{}, fmt.Errorf("counting unique viewers for media %s: %w", mediaID, err)
	}
	totalSeconds, err := e.watch.SumProgressSeconds(ctx, mediaID)
	if err != nil {
		return MediaStats{}, fmt.Errorf("summing progress for media %s: %w", mediaID, err)
	}
	monthSeconds, err := e.watch.SumProgressSecondsBetween(ctx, mediaID, monthStart, monthEnd)
	if err != nil {
		return MediaStats{}, fmt.Errorf("summing monthly progress for media %s: %w", mediaID, err)
	}
	stats := MediaStats{TotalViews: views, UniqueViews: unique}
	if totalSeconds > 0 {
		stats.MinutesConsumed = float64(totalSeconds) / 60
	}
	if monthSeconds > 0 {
		stats.MonthlyMinutes = float64(monthSeconds) / 60
	}
	return stats, nil
}

// PlatformPerformance computes the per-provider, per-item consumption report
// and allocates the provider revenue pool across it.
//
// Allocation is a two-stage proportional waterfall: each provider receives
// the pool weighted by its minutes over platform minutes, and each item
// receives the provider's share weighted by item minutes over provider
// minutes. A zero denominator at either stage leaves the dependent figures
// at zero.
func (e *Engine) PlatformPerformance(ctx context.Context) (PlatformPerformance, error) {
	start := e.now()
	perf, err := e.platformPerformance(ctx)
	e.metrics.observeCompute("platform_performance", start, err)
	if err == nil {
		e.metrics.setProvidersSeen(len(perf.ProviderPerformance))
	}
	return perf, err
}

func (e *Engine) platformPerformance(ctx context.Context) (PlatformPerformance, error) {
	providers, err := e.catalog.ListProviders(ctx)
	if err != nil {
		return PlatformPerformance{}, fmt.Errorf("listing providers: %w", err)
	}

	monthStart, monthEnd := monthBounds(e.now())

	perf := PlatformPerformance{
		ProviderPerformance: make([]ProviderPerformance, 0, len(providers)),
	}

	for _, p := range providers {
		items, err := e.catalog.ListMediaByProvider(ctx, p.ID)
		if err != nil {
			return PlatformPerformance{}, fmt.Errorf("listing media for provider %s: %w", p.ID, err)
		}

		row := ProviderPerformance{
			ProviderID:    p.ID,
			ProviderName:  p.Name,
			ProviderEmail: p.Email,
			Items:         make([]ItemPerformance, 0, len(items)),
		}

		var providerMinutes, providerMonthly float64
		for _, item := range items {
			stats, err := e.mediaStats(ctx, item.ID, monthStart, monthEnd)
			if err != nil {
				return PlatformPerformance{}, err
			}
			row.Items = append(row.Items, ItemPerformance{
				ID:              item.ID,
				Title:           item.Title,
				Duration:        item.DurationMinutes,
				TotalViews:      stats.TotalViews,
				UniqueViews:     stats.UniqueViews,
				MinutesConsumed: round2(stats.MinutesConsumed),
				MonthlyMinutes:  round2(stats.MonthlyMinutes),
			})
			row.TotalViews += stats.TotalViews
			row.UniqueViews += stats.UniqueViews
			providerMinutes += stats.MinutesConsumed
			providerMonthly += stats.MonthlyMinutes
		}

		row.MinutesConsumed = round2(providerMinutes)
		row.MonthlyMinutes = round2(providerMonthly)
		perf.TotalPlatformMinutes += providerMinutes
		perf.TotalPlatformMonthlyMinutes += providerMonthly
		perf.ProviderPerformance = append(perf.ProviderPerformance, row)
	}

	revenue, err := e.revenueSummary(ctx)
	if err != nil {
		return PlatformPerformance{}, err
	}
	e.allocate(&perf, revenue)

	return perf, nil
}

// allocate distributes the provider pool over the computed performance rows.
// Mutates perf in place.
func (e *Engine) allocate(perf *PlatformPerformance, revenue RevenueSummary) {
	for i := range perf.ProviderPerformance {
		row := &perf.ProviderPerformance[i]

		var providerShare, providerMonthlyShare float64
		if perf.TotalPlatformMinutes > 0 && row.MinutesConsumed > 0 {
			providerShare = revenue.ProviderShareTotal * (row.MinutesConsumed / perf.TotalPlatformMinutes)
			row.RevenueEarned = round2(providerShare)
		}
		if perf.TotalPlatformMonthlyMinutes > 0 && row.MonthlyMinutes > 0 {
			providerMonthlyShare = revenue.ProviderShareMonthly * (row.MonthlyMinutes / perf.TotalPlatformMonthlyMinutes)
			row.MonthlyRevenueEarned = round2(providerMonthlyShare)
		}

		for j := range row.Items {
			item := &row.Items[j]
			if row.MinutesConsumed > 0 && item.MinutesConsumed > 0 {
				item.RevenueEarned = round2(providerShare * (item.MinutesConsumed / row.MinutesConsumed))
			}
			if row.MonthlyMinutes > 0 && item.MonthlyMinutes > 0 {
				item.MonthlyEarnings = round2(providerMonthlyShare * (item.MonthlyMinutes / row.MonthlyMinutes))
			}
		}
	}
}

// SubscriptionActivity returns active/inactive subscription counts and the
// per-plan breakdown of active subscriptions.
func (e *Engine) SubscriptionActivity(ctx context.Context) (SubscriptionActivity, error) {
	active, err := e.billing.CountSubscriptions(ctx, true)
	if err != nil {
		return SubscriptionActivity{}, fmt.Errorf("counting active subscriptions: %w", err)
	}
	inactive, err := e.billing.CountSubscriptions(ctx, false)
	if err != nil {
		return SubscriptionActivity{}, fmt.Errorf("counting inactive subscriptions: %w", err)
	}
	breakdown, err := e.billing.ActiveBreakdownByPlan(ctx)
	if err != nil {
		return SubscriptionActivity{}, fmt.Errorf("breaking down subscriptions by plan: %w", err)
	}
	if breakdown == nil {
		breakdown = []billing.PlanBreakdown{}
	}
	return SubscriptionActivity{
		Active:                active,
		Inactive:              inactive,
		SubscriptionBreakdown: breakdown,
	}, nil
}

// AdminAnalytics composes the platform-wide report: revenue split,
// subscription activity, and the allocated provider performance breakdown.
func (e *Engine) AdminAnalytics(ctx context.Context) (AdminReport, error) {
	start := e.now()
	report, err := e.adminAnalytics(ctx)
	e.metrics.observeCompute("admin", start, err)
	return report, err
}

func (e *Engine) adminAnalytics(ctx context.Context) (AdminReport, error) {
	perf, err := e.platformPerformance(ctx)
	if err != nil {
		return AdminReport{}, err
	}
	revenue, err := e.revenueSummary(ctx)
	if err != nil {
		return AdminReport{}, err
	}
	activity, err := e.SubscriptionActivity(ctx)
	if err != nil {
		return AdminReport{}, err
	}
	return AdminReport{
		Revenue:             revenue,
		UserActivity:        activity,
		ProviderPerformance: perf.ProviderPerformance,
	}, nil
}

// ProviderAnalytics returns the self-service report for one provider.
//
// The platform-wide performance must be computed first because the provider's
// payout depends on platform minute totals. A provider absent from the
// breakdown, or present with no media, gets an empty report with
// NoMediaMessage rather than an error.
func (e *Engine) ProviderAnalytics(ctx context.Context, providerID string) (ProviderReport, error) {
	start := e.now()
	report, err := e.providerAnalytics(ctx, providerID)
	e.metrics.observeCompute("provider", start, err)
	return report, err
}

func (e *Engine) providerAnalytics(ctx context.Context, providerID string) (ProviderReport, error) {
	perf, err := e.platformPerformance(ctx)
	if err != nil {
		return ProviderReport{}, err
	}

	for _, row := range perf.ProviderPerformance {
		if row.ProviderID != providerID {
			continue
		}
		if len(row.Items) == 0 {
			break
		}
		return ProviderReport{
			Analytics: row.Items,
			ProviderTotals: ProviderTotals{
				ProviderTotalMinutes:   row.MinutesConsumed,
				ProviderMonthlyMinutes: row.MonthlyMinutes,
				ProviderShareTotal:     row.RevenueEarned,
				ProviderShareMonthly:   row.MonthlyRevenueEarned,
			},
		}, nil
	}

	e.logger.Info("provider analytics requested with no attributable media", "provider_id", providerID)
	return ProviderReport{
		Analytics: []ItemPerformance{},
		Message:   NoMediaMessage,
	}, nil
}
