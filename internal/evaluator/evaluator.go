// Package evaluator holds the three per-listing analysis dimensions:
// locality, hazard, and affordability. Each evaluator is independent and
// safe to run concurrently with the others.
package evaluator

import (
	"context"

	"github.com/homescout-ai/homescout/internal/model"
)

// Locality scores neighborhood amenity access for a listing.
type Locality interface {
	EvaluateLocality(ctx context.Context, listing model.Listing, user model.UserContext) (model.LocalityReport, error)
}

// Hazard assesses natural hazard exposure for a listing.
type Hazard interface {
	EvaluateHazard(ctx context.Context, listing model.Listing, user model.UserContext) (model.HazardReport, error)
}

// Affordability analyzes whether the buyer can carry a listing.
type Affordability interface {
	EvaluateAffordability(ctx context.Context, listing model.Listing, user model.UserContext) (model.AffordabilityReport, error)
}
