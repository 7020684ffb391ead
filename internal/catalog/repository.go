package catalog

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the catalog reads the analytics engine depends on.
type Repository interface {
	// ListProviders returns every user holding the ContentCreator role,
	// ordered by ID. Providers with zero media items are included.
	ListProviders(ctx context.Context) ([]*Provider, error)

	// ListMediaByProvider returns the media items owned by a provider,
	// ordered by ID. Unattributed items (nil provider) never appear.
	ListMediaByProvider(ctx context.Context, providerID string) ([]*MediaItem, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu        sync.RWMutex
	providers map[string]*Provider
	media     map[string]*MediaItem
}

// NewInMemoryRepository creates a new in-memory catalog repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		providers: make(map[string]*Provider),
		media:     make(map[string]*MediaItem),
	}
}

// AddProvider stores a provider.
func (r *InMemoryRepository) AddProvider(p *Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pCopy := *p
	r.providers[pCopy.ID] = &pCopy
}

// AddMediaItem stores a media item.
func (r *InMemoryRepository) AddMediaItem(item *MediaItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	itemCopy := *item
	if item.ProviderID != nil {
		id := *item.ProviderID
		itemCopy.ProviderID = &id
	}
	if item.DurationMinutes != nil {
		d := *item.DurationMinutes
		itemCopy.DurationMinutes = &d
	}
	r.media[itemCopy.ID] = &itemCopy
}

// ListProviders returns every provider, ordered by ID.
func (r *InMemoryRepository) ListProviders(_ context.Context) ([]*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]*Provider, 0, len(r.providers))
	for _, p := range r.providers {
		pCopy := *p
		providers = append(providers, &pCopy)
	}

	sort.Slice(providers, func(i, j int) bool {
		return providers[i].ID < providers[j].ID
	})

	return providers, nil
}

// ListMediaByProvider returns the media items owned by a provider, ordered by ID.
func (r *InMemoryRepository) ListMediaByProvider(_ context.Context, providerID string) ([]*MediaItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*MediaItem
	for _, item := range r.media {
		if item.ProviderID != nil && *item.ProviderID == providerID {
			itemCopy := *item
			id := *item.ProviderID
			itemCopy.ProviderID = &id
			if item.DurationMinutes != nil {
				d := *item.DurationMinutes
				itemCopy.DurationMinutes = &d
			}
			items = append(items, &itemCopy)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})

	return items, nil
}
