package api

import (
	"log/slog"
	"net/http"

	"github.com/lumora/playshare/internal/analytics"
	"github.com/lumora/playshare/internal/middleware"
)

// AnalyticsHandlers holds dependencies for the analytics HTTP handlers.
type AnalyticsHandlers struct {
	engine *analytics.Engine
	logger *slog.Logger
}

// NewAnalyticsHandlers creates a new AnalyticsHandlers instance.
func NewAnalyticsHandlers(engine *analytics.Engine, logger *slog.Logger) *AnalyticsHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandlers{engine: engine, logger: logger}
}

// RevenueResponse is the lifetime revenue figure the admin dashboard polls.
// The full split lives in the admin analytics report; this endpoint keeps the
// minimal shape its existing caller depends on.
type RevenueResponse struct {
	TotalRevenue float64 `json:"totalRevenue"`
}

// Revenue returns lifetime platform revenue.
// GET /revenue (admin only)
func (h *AnalyticsHandlers) Revenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.engine.RevenueSummary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute revenue summary", "error", err)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load revenue summary")
		return
	}

	WriteJSON(w, ctx, http.StatusOK, RevenueResponse{TotalRevenue: summary.TotalRevenue})
}

// AdminAnalytics returns the platform-wide report: revenue, subscription
// activity, and the allocated provider performance breakdown.
// GET /admin/analytics (admin only)
func (h *AnalyticsHandlers) AdminAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.engine.AdminAnalytics(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute admin analytics", "error", err)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load analytics")
		return
	}

	WriteJSON(w, ctx, http.StatusOK, report)
}

// ProviderAnalytics returns the authenticated provider's own performance
// report. A provider with no attributable media gets an empty report with an
// explanatory message, not a 404.
// GET /provider/analytics (ContentCreator only)
func (h *AnalyticsHandlers) ProviderAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	providerID := middleware.GetUserID(ctx)
	if providerID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "authentication required")
		return
	}

	report, err := h.engine.ProviderAnalytics(ctx, providerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute provider analytics", "error", err, "provider_id", providerID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load analytics")
		return
	}

	WriteJSON(w, ctx, http.StatusOK, report)
}
