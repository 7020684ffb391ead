package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lumora/playshare/internal/middleware"
	"github.com/lumora/playshare/internal/watch"
)

// TrackHandlers holds dependencies for the watch-tracking handler.
type TrackHandlers struct {
	watchRepo watch.Repository
	logger    *slog.Logger
	now       func() time.Time
}

// NewTrackHandlers creates a new TrackHandlers instance.
func NewTrackHandlers(watchRepo watch.Repository, logger *slog.Logger) *TrackHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackHandlers{watchRepo: watchRepo, logger: logger, now: time.Now}
}

// TrackRequest represents a watch progress checkpoint reported by a client.
type TrackRequest struct {
	MediaID   string `json:"mediaId"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
}

// TrackResponse acknowledges a recorded checkpoint.
type TrackResponse struct {
	ID string `json:"id"`
}

// Track records a watch checkpoint for the authenticated user. Every
// checkpoint is appended; consumption minutes are the sum of all reported
// progress, so clients are expected to report deltas or sparse checkpoints.
// POST /watch/track
func (h *TrackHandlers) Track(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "authentication required")
		return
	}

	var req TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if req.MediaID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "mediaId is required")
		return
	}
	if req.Progress < 0 {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "progress must not be negative")
		return
	}

	record := &watch.Record{
		ID:              uuid.NewString(),
		UserID:          userID,
		MediaID:         req.MediaID,
		ProgressSeconds: req.Progress,
		Completed:       req.Completed,
		WatchedAt:       h.now(),
	}
	if err := h.watchRepo.Insert(ctx, record); err != nil {
		h.logger.ErrorContext(ctx, "failed to record watch checkpoint", "error", err, "media_id", req.MediaID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to record progress")
		return
	}

	WriteJSON(w, ctx, http.StatusCreated, TrackResponse{ID: record.ID})
}
