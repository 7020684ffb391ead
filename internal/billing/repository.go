package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the read surface the analytics engine needs over
// transactions and subscriptions, plus the append used by the payment webhook.
type Repository interface {
	// RecordTransaction appends a completed payment.
	RecordTransaction(ctx context.Context, tx *Transaction) error

	// SumAmounts returns the sum of all transaction amounts ever recorded.
	// Returns 0 for an empty store.
	SumAmounts(ctx context.Context) (float64, error)

	// SumAmountsBetween returns the sum of amounts for transactions created
	// within [start, end] inclusive.
	SumAmountsBetween(ctx context.Context, start, end time.Time) (float64, error)

	// CountSubscriptions counts user subscriptions by active state.
	CountSubscriptions(ctx context.Context, active bool) (int, error)

	// ActiveBreakdownByPlan returns per-plan counts of active subscriptions,
	// ordered by plan ID for stable output.
	ActiveBreakdownByPlan(ctx context.Context) ([]PlanBreakdown, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu            sync.RWMutex
	transactions  []*Transaction
	plans         map[string]*Plan
	subscriptions map[string]*UserSubscription
}

// NewInMemoryRepository creates a new in-memory billing repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		plans:         make(map[string]*Plan),
		subscriptions: make(map[string]*UserSubscription),
	}
}

// RecordTransaction appends a completed payment.
func (r *InMemoryRepository) RecordTransaction(_ context.Context, tx *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txCopy := *tx
	if txCopy.ID == "" {
		txCopy.ID = uuid.New().String()
	}
	if txCopy.CreatedAt.IsZero() {
		txCopy.CreatedAt = time.Now()
	}
	r.transactions = append(r.transactions, &txCopy)
	return nil
}

// SumAmounts returns the sum of all transaction amounts ever recorded.
func (r *InMemoryRepository) SumAmounts(_ context.Context) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, tx := range r.transactions {
		total += tx.Amount
	}
	return total, nil
}

// SumAmountsBetween returns the sum of amounts within [start, end] inclusive.
func (r *InMemoryRepository) SumAmountsBetween(_ context.Context, start, end time.Time) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, tx := range r.transactions {
		if !tx.CreatedAt.Before(start) && !tx.CreatedAt.After(end) {
			total += tx.Amount
		}
	}
	return total, nil
}

// CountSubscriptions counts user subscriptions by active state.
func (r *InMemoryRepository) CountSubscriptions(_ context.Context, active bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, sub := range r.subscriptions {
		if sub.IsActive == active {
			count++
		}
	}
	return count, nil
}

// ActiveBreakdownByPlan returns per-plan counts of active subscriptions.
func (r *InMemoryRepository) ActiveBreakdownByPlan(_ context.Context) ([]PlanBreakdown, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, sub := range r.subscriptions {
		if sub.IsActive {
			counts[sub.PlanID]++
		}
	}

	breakdown := make([]PlanBreakdown, 0, len(counts))
	for planID, count := range counts {
		planType := "Unknown"
		if plan, ok := r.plans[planID]; ok {
			planType = plan.Type
		}
		breakdown = append(breakdown, PlanBreakdown{
			PlanID: planID,
			Type:   planType,
			Count:  count,
		})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].PlanID < breakdown[j].PlanID
	})

	return breakdown, nil
}

// AddPlan stores a subscription plan. Used to seed development data.
func (r *InMemoryRepository) AddPlan(plan *Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	planCopy := *plan
	r.plans[planCopy.ID] = &planCopy
}

// AddSubscription stores a user subscription. Used to seed development data.
func (r *InMemoryRepository) AddSubscription(sub *UserSubscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subCopy := *sub
	if subCopy.ID == "" {
		subCopy.ID = uuid.New().String()
	}
	r.subscriptions[subCopy.ID] = &subCopy
}
