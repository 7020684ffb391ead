// Package withdrawal manages provider payout requests. There is no balance
// table: a provider's withdrawn total is replayed from the append-only audit
// log, and the available balance is lifetime earnings minus that total.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"sync"

	"github.com/lumora/playshare/internal/analytics"
	"github.com/lumora/playshare/internal/audit"
)

// WithdrawAction is the audit-log action recording a withdrawal request.
const WithdrawAction = "PROVIDER_WITHDRAWAL"

const lockStripes = 64

var (
	// ErrInvalidAmount is returned when the requested amount is not a
	// positive finite number.
	ErrInvalidAmount = errors.New("withdrawal amount must be a positive number")
	// ErrInsufficientBalance is returned when the requested amount exceeds
	// the provider's available balance.
	ErrInsufficientBalance = errors.New("withdrawal amount exceeds available balance")
)

// amountPattern extracts the amount from an audit entry's details field.
// Entries whose details do not match contribute zero to the withdrawn total.
var amountPattern = regexp.MustCompile(`(?i)amount=([0-9]+(?:\.[0-9]+)?)`)

// Summary is a provider's withdrawal position. All figures are in the
// platform currency, rounded to cents.
type Summary struct {
	TotalEarned      float64 `json:"totalEarned"`
	WithdrawnTotal   float64 `json:"withdrawnTotal"`
	AvailableBalance float64 `json:"availableBalance"`
}

// Receipt is the response to an accepted withdrawal request.
type Receipt struct {
	Message          string  `json:"message"`
	TotalEarned      float64 `json:"totalEarned"`
	WithdrawnTotal   float64 `json:"withdrawnTotal"`
	AvailableBalance float64 `json:"availableBalance"`
}

// RequestInfo carries request metadata into the audit entry.
type RequestInfo struct {
	RequestID string
	IPAddress string
}

// Service computes withdrawal summaries and records withdrawal requests.
//
// Balance checks and the audit append are serialized per provider with a
// striped lock, so two concurrent requests cannot both pass the balance
// check and overdraw the account.
type Service struct {
	engine *analytics.Engine
	audit  audit.Repository
	logger *slog.Logger
	locks  [lockStripes]sync.Mutex
}

// NewService creates a withdrawal service over the analytics engine and
// audit log.
func NewService(engine *analytics.Engine, auditRepo audit.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine: engine,
		audit:  auditRepo,
		logger: logger,
	}
}

func (s *Service) lockFor(providerID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(providerID))
	return &s.locks[h.Sum32()%lockStripes]
}

// parseAmount extracts the withdrawn amount from an audit entry's details.
// Unparsable details count as zero.
func parseAmount(details string) float64 {
	match := amountPattern.FindStringSubmatch(details)
	if match == nil {
		return 0
	}
	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return 0
	}
	return amount
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summary returns the provider's current withdrawal position.
func (s *Service) Summary(ctx context.Context, providerID string) (Summary, error) {
	return s.summary(ctx, providerID)
}

func (s *Service) summary(ctx context.Context, providerID string) (Summary, error) {
	report, err := s.engine.ProviderAnalytics(ctx, providerID)
	if err != nil {
		return Summary{}, fmt.Errorf("loading provider earnings: %w", err)
	}
	totalEarned := report.ProviderTotals.ProviderShareTotal

	entries, err := s.audit.ListByUserAction(ctx, providerID, WithdrawAction)
	if err != nil {
		return Summary{}, fmt.Errorf("replaying withdrawal log: %w", err)
	}
	var withdrawn float64
	for _, entry := range entries {
		withdrawn += parseAmount(entry.Details)
	}

	return Summary{
		TotalEarned:      round2(totalEarned),
		WithdrawnTotal:   round2(withdrawn),
		AvailableBalance: round2(math.Max(totalEarned-withdrawn, 0)),
	}, nil
}

// Request records a withdrawal of amount for the provider. The amount is
// rounded to cents before it is checked and logged. Returns
// ErrInvalidAmount or ErrInsufficientBalance on rejection.
func (s *Service) Request(ctx context.Context, providerID string, amount float64, info RequestInfo) (Receipt, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Receipt{}, ErrInvalidAmount
	}
	rounded := round2(amount)
	if rounded <= 0 {
		return Receipt{}, ErrInvalidAmount
	}

	lock := s.lockFor(providerID)
	lock.Lock()
	defer lock.Unlock()

	summary, err := s.summary(ctx, providerID)
	if err != nil {
		return Receipt{}, err
	}
	if rounded > summary.AvailableBalance {
		return Receipt{}, ErrInsufficientBalance
	}

	if _, err := s.audit.Append(ctx, audit.NewEntry{
		UserID:    providerID,
		Action:    WithdrawAction,
		Details:   fmt.Sprintf("amount=%.2f", rounded),
		RequestID: info.RequestID,
		IPAddress: info.IPAddress,
	}); err != nil {
		return Receipt{}, fmt.Errorf("recording withdrawal: %w", err)
	}

	s.logger.Info("withdrawal recorded",
		"provider_id", providerID,
		"amount", rounded,
		"request_id", info.RequestID,
	)

	return Receipt{
		Message:          "Withdrawal request submitted successfully",
		TotalEarned:      summary.TotalEarned,
		WithdrawnTotal:   round2(summary.WithdrawnTotal + rounded),
		AvailableBalance: round2(summary.AvailableBalance - rounded),
	}, nil
}
