package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/config"
	"github.com/homescout-ai/homescout/internal/model"
)

// Engine converts an analysis record's evaluator partials into a composite
// 0-100 score with pros and cons. Four dimensions contribute up to 25
// points each (affordability, locality, safety, condition), plus a priority
// match bonus folded into the total before clamping.
type Engine struct {
	cfg config.ScoringConfig
}

// NewEngine creates a scoring engine with the given point scheme.
func NewEngine(cfg config.ScoringConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Score fills rec.CompositeScore, rec.Pros, and rec.Cons in place. Scoring
// is deterministic: identical inputs always produce identical output.
// Duplicate pros or cons are preserved as-is.
//
// A record whose three evaluations all failed scores exactly zero: the
// condition and priority components read only listing data and would
// otherwise let a listing nothing is known about outrank analyzed ones.
func (e *Engine) Score(rec *model.AnalysisRecord, user model.UserContext) {
	if rec.FullyFailed() {
		rec.CompositeScore = 0
		rec.Pros = nil
		rec.Cons = []string{"no analysis data available for this listing"}
		zap.L().Warn("all evaluations failed for listing",
			zap.String("listing_id", rec.Listing.ID),
		)
		return
	}

	var pros, cons []string
	var total float64

	// Locality: 0-25 straight from the report.
	if rec.Locality.OK() {
		loc := rec.Locality.Value
		total += clamp(loc.OverallScore, 0, 25)
		pros = append(pros, loc.Pros...)
		cons = append(cons, loc.Cons...)
	} else {
		cons = append(cons, "locality data unavailable")
	}

	// Safety: 0-25 from the hazard report.
	if rec.Hazard.OK() {
		haz := rec.Hazard.Value
		safety := clamp(haz.OverallSafetyScore, 0, 25)
		total += safety
		if safety >= 20 {
			pros = append(pros, "low natural hazard risk")
		} else if safety < 10 {
			cons = append(cons, "elevated natural hazard risk")
		}
		if haz.FloodInsuranceRequired {
			cons = append(cons, "flood insurance required")
		}
	} else {
		cons = append(cons, "hazard data unavailable")
	}

	// Affordability: 0-25.
	affPoints, affPros, affCons := e.affordabilityPoints(rec.Affordability)
	total += affPoints
	pros = append(pros, affPros...)
	cons = append(cons, affCons...)

	// Condition: 0-25 from listing age and price efficiency.
	condPoints, condPros, condCons := e.conditionPoints(rec.Listing)
	total += condPoints
	pros = append(pros, condPros...)
	cons = append(cons, condCons...)

	// Priority match bonus.
	prioPoints, prioPros := e.priorityBonus(rec, user.Priorities)
	total += prioPoints
	pros = append(pros, prioPros...)

	rec.CompositeScore = clamp(total, 0, 100)
	rec.Pros = pros
	rec.Cons = cons
}

func (e *Engine) affordabilityPoints(p model.Partial[model.AffordabilityReport]) (float64, []string, []string) {
	if !p.OK() {
		return 0, nil, []string{"affordability data unavailable"}
	}

	aff := p.Value
	var points float64
	var pros, cons []string

	if aff.IsAffordable {
		points += e.cfg.AffordableBase
		pros = append(pros, "fits comfortably within your budget")
		switch {
		case aff.BackEndRatio < e.cfg.DTIExcellentMax:
			points += e.cfg.DTIExcellentBonus
			pros = append(pros, "excellent debt-to-income ratio")
		case aff.BackEndRatio < e.cfg.DTIGoodMax:
			points += e.cfg.DTIGoodBonus
			pros = append(pros, "good debt-to-income ratio")
		}
	} else {
		cons = append(cons, "may strain your budget")
	}

	if aff.Investment.Good {
		points += e.cfg.InvestmentBonus
		pros = append(pros, "strong value for the price")
	}

	return clamp(points, 0, 25), pros, cons
}

func (e *Engine) conditionPoints(listing model.Listing) (float64, []string, []string) {
	points := e.cfg.ConditionBase
	var pros, cons []string

	if listing.YearBuilt > 0 {
		age := time.Now().Year() - listing.YearBuilt
		switch {
		case age < 10:
			points += 10
			pros = append(pros, "newer construction")
		case age <= 30:
			points += 5
		case age > 60:
			points -= 7
			cons = append(cons, "older home may need updates")
		}
	}

	if listing.SquareFootage > 0 && listing.Price > 0 {
		perSqft := listing.Price / listing.SquareFootage
		switch {
		case perSqft < 150:
			points += 5
			pros = append(pros, "excellent price per square foot")
		case perSqft > 300:
			points -= 5
			cons = append(cons, "high price per square foot")
		}
	}

	return clamp(points, 0, 25), pros, cons
}

// priorityBonus rewards listings whose data mentions the buyer's stated
// priorities. Matching is a plain lowercase substring check over the
// listing and the successful locality and hazard reports, serialized to
// JSON. The affordability report is excluded: it describes the buyer's
// finances, not the property.
func (e *Engine) priorityBonus(rec *model.AnalysisRecord, priorities []string) (float64, []string) {
	if len(priorities) == 0 {
		return 0, nil
	}

	haystack := strings.ToLower(marshalForMatch(rec))

	var points float64
	var pros []string
	for _, priority := range priorities {
		needle := strings.ToLower(strings.TrimSpace(priority))
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, needle) {
			points += e.cfg.PriorityBonus
			pros = append(pros, fmt.Sprintf("matches priority: %s", priority))
		}
	}

	if points > e.cfg.PriorityCap {
		points = e.cfg.PriorityCap
	}
	return points, pros
}

func marshalForMatch(rec *model.AnalysisRecord) string {
	var sb strings.Builder
	if b, err := json.Marshal(rec.Listing); err == nil {
		sb.Write(b)
	}
	if rec.Locality.OK() {
		if b, err := json.Marshal(rec.Locality.Value); err == nil {
			sb.Write(b)
		}
	}
	if rec.Hazard.OK() {
		if b, err := json.Marshal(rec.Hazard.Value); err == nil {
			sb.Write(b)
		}
	}
	return sb.String()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
