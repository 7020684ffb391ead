package billing

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRepository_SumAmounts(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	total, err := repo.SumAmounts(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 0 {
		t.Errorf("Expected 0 for empty store, got %v", total)
	}

	for _, amount := range []float64{9.99, 19.99, 0.02} {
		err := repo.RecordTransaction(ctx, &Transaction{UserID: "u1", Amount: amount})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	total, err = repo.SumAmounts(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 30.00 {
		t.Errorf("Expected 30.00, got %v", total)
	}
}

func TestInMemoryRepository_SumAmountsBetween_Inclusive(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.June, 30, 23, 59, 59, 999999999, time.UTC)

	seed := []struct {
		amount float64
		at     time.Time
	}{
		{1, start.Add(-time.Nanosecond)},
		{2, start},
		{4, end},
		{8, end.Add(time.Nanosecond)},
	}
	for _, s := range seed {
		err := repo.RecordTransaction(ctx, &Transaction{UserID: "u1", Amount: s.amount, CreatedAt: s.at})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	total, err := repo.SumAmountsBetween(ctx, start, end)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 6 {
		t.Errorf("Expected 6 inside the window, got %v", total)
	}
}

func TestInMemoryRepository_CountSubscriptions(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	repo.AddSubscription(&UserSubscription{UserID: "u1", PlanID: "p1", IsActive: true})
	repo.AddSubscription(&UserSubscription{UserID: "u2", PlanID: "p1", IsActive: true})
	repo.AddSubscription(&UserSubscription{UserID: "u3", PlanID: "p2", IsActive: false})

	active, err := repo.CountSubscriptions(ctx, true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if active != 2 {
		t.Errorf("Expected 2 active, got %d", active)
	}

	inactive, err := repo.CountSubscriptions(ctx, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if inactive != 1 {
		t.Errorf("Expected 1 inactive, got %d", inactive)
	}
}

func TestInMemoryRepository_ActiveBreakdownByPlan(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	repo.AddPlan(&Plan{ID: "plan-b", Type: "Premium", Price: 19.99})
	repo.AddPlan(&Plan{ID: "plan-a", Type: "Basic", Price: 9.99})

	repo.AddSubscription(&UserSubscription{UserID: "u1", PlanID: "plan-b", IsActive: true})
	repo.AddSubscription(&UserSubscription{UserID: "u2", PlanID: "plan-a", IsActive: true})
	repo.AddSubscription(&UserSubscription{UserID: "u3", PlanID: "plan-a", IsActive: true})
	repo.AddSubscription(&UserSubscription{UserID: "u4", PlanID: "plan-a", IsActive: false})
	repo.AddSubscription(&UserSubscription{UserID: "u5", PlanID: "plan-x", IsActive: true})

	breakdown, err := repo.ActiveBreakdownByPlan(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(breakdown) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(breakdown))
	}

	// Ordered by plan ID for stable output.
	if breakdown[0].PlanID != "plan-a" || breakdown[0].Count != 2 || breakdown[0].Type != "Basic" {
		t.Errorf("Unexpected first row %+v", breakdown[0])
	}
	if breakdown[1].PlanID != "plan-b" || breakdown[1].Count != 1 {
		t.Errorf("Unexpected second row %+v", breakdown[1])
	}
	if breakdown[2].PlanID != "plan-x" || breakdown[2].Type != "Unknown" {
		t.Errorf("Expected Unknown type for unregistered plan, got %+v", breakdown[2])
	}
}
