package store

import (
	"context"

	"github.com/homescout-ai/homescout/internal/model"
)

// ListingFilter specifies criteria for the candidate listing search. Zero
// fields are not applied.
type ListingFilter struct {
	PriceMin     float64  `json:"price_min,omitempty"`
	PriceMax     float64  `json:"price_max,omitempty"`
	BedroomsMin  float64  `json:"bedrooms_min,omitempty"`
	BathroomsMin float64  `json:"bathrooms_min,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// QueryFilter specifies criteria for listing recorded queries.
type QueryFilter struct {
	Status model.QueryStatus `json:"status,omitempty"`
	Limit  int               `json:"limit,omitempty"`
	Offset int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for the recommendation pipeline.
type Store interface {
	// Listings
	SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)
	GetListing(ctx context.Context, listingID string) (*model.Listing, error)
	UpsertListings(ctx context.Context, listings []model.Listing) (int, error)

	// Neighborhoods
	GetNeighborhood(ctx context.Context, neighborhoodID string) (*model.Neighborhood, error)
	UpsertNeighborhoods(ctx context.Context, neighborhoods []model.Neighborhood) (int, error)

	// Query history
	CreateQuery(ctx context.Context, input model.QueryInput) (*model.Query, error)
	UpdateQueryStatus(ctx context.Context, queryID string, status model.QueryStatus) error
	UpdateQueryResult(ctx context.Context, queryID string, result *model.QueryResult) error
	GetQuery(ctx context.Context, queryID string) (*model.Query, error)
	ListQueries(ctx context.Context, filter QueryFilter) ([]model.Query, error)
	PruneQueries(ctx context.Context, keep int) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
