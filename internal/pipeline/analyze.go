package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/homescout-ai/homescout/internal/evaluator"
	"github.com/homescout-ai/homescout/internal/model"
)

// Analyzer fans one listing out to the three evaluators in parallel and
// merges their results into an AnalysisRecord. A failed, panicked, or
// timed-out evaluator degrades to a failed partial; it never aborts its
// siblings and never fails the listing.
type Analyzer struct {
	locality      evaluator.Locality
	hazard        evaluator.Hazard
	affordability evaluator.Affordability
	timeout       time.Duration
}

// NewAnalyzer creates an Analyzer. timeoutSecs bounds each evaluator call
// individually.
func NewAnalyzer(loc evaluator.Locality, haz evaluator.Hazard, aff evaluator.Affordability, timeoutSecs int) *Analyzer {
	if timeoutSecs <= 0 {
		timeoutSecs = 30
	}
	return &Analyzer{
		locality:      loc,
		hazard:        haz,
		affordability: aff,
		timeout:       time.Duration(timeoutSecs) * time.Second,
	}
}

// Analyze runs all three evaluations for a single listing. Each branch
// writes a distinct record field, so no locking is needed.
func (a *Analyzer) Analyze(ctx context.Context, listing model.Listing, user model.UserContext) model.AnalysisRecord {
	rec := model.AnalysisRecord{Listing: listing}

	if listing.ID == "" {
		const msg = "missing listing id"
		rec.Locality = model.Fail[model.LocalityReport](msg)
		rec.Hazard = model.Fail[model.HazardReport](msg)
		rec.Affordability = model.Fail[model.AffordabilityReport](msg)
		zap.L().Warn("skipping evaluation of listing without id")
		return rec
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rec.Locality = runGuarded(gCtx, a.timeout, "locality", listing.ID,
			func(ctx context.Context) (model.LocalityReport, error) {
				return a.locality.EvaluateLocality(ctx, listing, user)
			})
		return nil
	})

	g.Go(func() error {
		rec.Hazard = runGuarded(gCtx, a.timeout, "hazard", listing.ID,
			func(ctx context.Context) (model.HazardReport, error) {
				return a.hazard.EvaluateHazard(ctx, listing, user)
			})
		return nil
	})

	g.Go(func() error {
		rec.Affordability = runGuarded(gCtx, a.timeout, "affordability", listing.ID,
			func(ctx context.Context) (model.AffordabilityReport, error) {
				return a.affordability.EvaluateAffordability(ctx, listing, user)
			})
		return nil
	})

	// Branches always return nil; failures live in the partials.
	_ = g.Wait()
	return rec
}

// runGuarded executes one evaluator call under its own timeout with panic
// recovery, converting any failure mode into a failed partial.
func runGuarded[T any](ctx context.Context, timeout time.Duration, dimension, listingID string, fn func(context.Context) (T, error)) (p model.Partial[T]) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("evaluator panicked",
				zap.String("dimension", dimension),
				zap.String("listing_id", listingID),
				zap.Any("panic", r),
			)
			p = model.Failf[T]("%s evaluator panicked: %v", dimension, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	val, err := fn(ctx)
	if err != nil {
		zap.L().Warn("evaluator failed",
			zap.String("dimension", dimension),
			zap.String("listing_id", listingID),
			zap.Error(err),
		)
		return model.Fail[T](err.Error())
	}
	return model.Ok(val)
}
