package watch

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryRepository_Insert_RejectsNegativeProgress(t *testing.T) {
	repo := NewInMemoryRepository()

	err := repo.Insert(context.Background(), &Record{
		UserID:          "u1",
		MediaID:         "m1",
		ProgressSeconds: -1,
	})
	if !errors.Is(err, ErrNegativeProgress) {
		t.Errorf("Expected ErrNegativeProgress, got %v", err)
	}

	views, err := repo.CountViews(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if views != 0 {
		t.Errorf("Expected rejected record not to be stored, got %d views", views)
	}
}

func TestInMemoryRepository_Insert_FillsDefaults(t *testing.T) {
	repo := NewInMemoryRepository()

	rec := &Record{UserID: "u1", MediaID: "m1", ProgressSeconds: 10}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The caller's record is copied, not retained.
	rec.ProgressSeconds = 9999
	total, err := repo.SumProgressSeconds(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 10 {
		t.Errorf("Expected stored progress 10, got %d", total)
	}
}

func TestInMemoryRepository_CountsAndSums(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	at := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	records := []*Record{
		{UserID: "u1", MediaID: "m1", ProgressSeconds: 30, WatchedAt: at},
		{UserID: "u1", MediaID: "m1", ProgressSeconds: 60, WatchedAt: at},
		{UserID: "u2", MediaID: "m1", ProgressSeconds: 90, WatchedAt: at},
		{UserID: "u1", MediaID: "m2", ProgressSeconds: 120, WatchedAt: at},
	}
	for _, rec := range records {
		if err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	views, _ := repo.CountViews(ctx, "m1")
	if views != 3 {
		t.Errorf("Expected 3 views for m1, got %d", views)
	}
	unique, _ := repo.CountUniqueViewers(ctx, "m1")
	if unique != 2 {
		t.Errorf("Expected 2 unique viewers for m1, got %d", unique)
	}
	total, _ := repo.SumProgressSeconds(ctx, "m1")
	if total != 180 {
		t.Errorf("Expected 180 seconds for m1, got %d", total)
	}
	total, _ = repo.SumProgressSeconds(ctx, "m3")
	if total != 0 {
		t.Errorf("Expected 0 seconds for unknown media, got %d", total)
	}
}

func TestInMemoryRepository_SumProgressSecondsBetween_Inclusive(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	start := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.May, 31, 23, 59, 59, 999999999, time.UTC)

	records := []*Record{
		{UserID: "u1", MediaID: "m1", ProgressSeconds: 1, WatchedAt: start.Add(-time.Nanosecond)},
		{UserID: "u1", MediaID: "m1", ProgressSeconds: 2, WatchedAt: start},
		{UserID: "u1", MediaID: "m1", ProgressSeconds: 4, WatchedAt: end},
		{UserID: "u1", MediaID: "m1", ProgressSeconds: 8, WatchedAt: end.Add(time.Nanosecond)},
	}
	for _, rec := range records {
		if err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	total, err := repo.SumProgressSecondsBetween(ctx, "m1", start, end)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 6 {
		t.Errorf("Expected 6 seconds inside the window, got %d", total)
	}
}
