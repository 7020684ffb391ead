// Package catalog provides models and repositories for content providers and
// the media items they own.
package catalog

// Provider is a platform user with the ContentCreator role, permitted to
// upload media and earn a revenue share from its consumption.
type Provider struct {
	ID    string `json:"providerId"`
	Name  string `json:"providerName"`
	Email string `json:"providerEmail"`
}

// MediaItem is one piece of catalog content. A nil ProviderID means the item
// is unattributed and excluded from provider aggregation.
type MediaItem struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	DurationMinutes *int    `json:"duration"`
	ProviderID      *string `json:"provider_id,omitempty"`
}
