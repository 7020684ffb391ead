package catalog

import (
	"context"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestInMemoryRepository_ListProviders_OrderedByID(t *testing.T) {
	repo := NewInMemoryRepository()

	repo.AddProvider(&Provider{ID: "p3", Name: "Gamma", Email: "g@example.com"})
	repo.AddProvider(&Provider{ID: "p1", Name: "Alpha", Email: "a@example.com"})
	repo.AddProvider(&Provider{ID: "p2", Name: "Beta", Email: "b@example.com"})

	providers, err := repo.ListProviders(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(providers) != 3 {
		t.Fatalf("Expected 3 providers, got %d", len(providers))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if providers[i].ID != want {
			t.Errorf("Expected provider %s at index %d, got %s", want, i, providers[i].ID)
		}
	}
}

func TestInMemoryRepository_ListProviders_IncludesZeroMediaProviders(t *testing.T) {
	repo := NewInMemoryRepository()

	repo.AddProvider(&Provider{ID: "p1", Name: "Empty", Email: "e@example.com"})

	providers, err := repo.ListProviders(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(providers) != 1 {
		t.Errorf("Expected provider without media to be listed, got %d providers", len(providers))
	}
}

func TestInMemoryRepository_ListMediaByProvider(t *testing.T) {
	repo := NewInMemoryRepository()

	repo.AddMediaItem(&MediaItem{ID: "m2", Title: "Second", ProviderID: strPtr("p1")})
	repo.AddMediaItem(&MediaItem{ID: "m1", Title: "First", ProviderID: strPtr("p1"), DurationMinutes: intPtr(42)})
	repo.AddMediaItem(&MediaItem{ID: "m3", Title: "Other", ProviderID: strPtr("p2")})
	repo.AddMediaItem(&MediaItem{ID: "m4", Title: "Orphan"})

	items, err := repo.ListMediaByProvider(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items for p1, got %d", len(items))
	}
	if items[0].ID != "m1" || items[1].ID != "m2" {
		t.Errorf("Expected items ordered by ID, got %s then %s", items[0].ID, items[1].ID)
	}
	if items[0].DurationMinutes == nil || *items[0].DurationMinutes != 42 {
		t.Errorf("Expected duration 42, got %v", items[0].DurationMinutes)
	}
}

func TestInMemoryRepository_ListMediaByProvider_DeepCopies(t *testing.T) {
	repo := NewInMemoryRepository()

	providerID := "p1"
	repo.AddMediaItem(&MediaItem{ID: "m1", Title: "First", ProviderID: &providerID})

	items, err := repo.ListMediaByProvider(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	*items[0].ProviderID = "tampered"

	again, err := repo.ListMediaByProvider(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(again) != 1 {
		t.Fatalf("Expected stored item untouched by caller mutation, got %d items", len(again))
	}
}
