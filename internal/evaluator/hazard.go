package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/store"
)

// maxSafetyScore is the ceiling of the hazard dimension.
const maxSafetyScore = 25

// Hazard weights. Flood and wildfire dominate because they carry the
// largest insured-loss exposure.
const (
	floodWeight      = 0.30
	wildfireWeight   = 0.30
	earthquakeWeight = 0.25
	tornadoWeight    = 0.15
)

// StoreHazard assesses hazard exposure from the listing's neighborhood
// risk columns.
type StoreHazard struct {
	store store.Store
}

// NewStoreHazard returns a store-backed hazard evaluator.
func NewStoreHazard(st store.Store) *StoreHazard {
	return &StoreHazard{store: st}
}

func (e *StoreHazard) EvaluateHazard(ctx context.Context, listing model.Listing, _ model.UserContext) (model.HazardReport, error) {
	if listing.NeighborhoodID == "" {
		return model.HazardReport{}, eris.Errorf("hazard: listing %s has no neighborhood", listing.ID)
	}

	nbhd, err := e.store.GetNeighborhood(ctx, listing.NeighborhoodID)
	if err != nil {
		return model.HazardReport{}, eris.Wrapf(err, "hazard: neighborhood %s", listing.NeighborhoodID)
	}

	floodRisk := floodRiskFromZone(nbhd.FEMAFloodZone)
	tornado := parseRiskLevel(nbhd.TornadoRisk)
	wildfire := parseRiskLevel(nbhd.WildfireRisk)
	earthquake := parseRiskLevel(nbhd.EarthquakeRisk)

	// Weighted 1-10 composite, lower is better.
	overallRisk := float64(riskPoints(floodRisk))*floodWeight +
		float64(riskPoints(wildfire))*wildfireWeight +
		float64(riskPoints(earthquake))*earthquakeWeight +
		float64(riskPoints(tornado))*tornadoWeight

	safety := (10 - overallRisk) / 10 * maxSafetyScore
	if safety < 0 {
		safety = 0
	}
	if safety > maxSafetyScore {
		safety = maxSafetyScore
	}

	report := model.HazardReport{
		ListingID:              listing.ID,
		Neighborhood:           nbhd.Name,
		FloodZone:              nbhd.FEMAFloodZone,
		FloodRisk:              floodRisk,
		FloodInsuranceRequired: floodRisk == model.RiskHigh,
		TornadoRisk:            tornado,
		WildfireRisk:           wildfire,
		EarthquakeRisk:         earthquake,
		OverallRiskScore:       overallRisk,
		OverallSafetyScore:     safety,
		Summary:                riskSummary(nbhd.Name, overallRisk),
		Recommendations:        riskRecommendations(floodRisk, tornado, wildfire, earthquake),
	}

	zap.L().Debug("hazard evaluated",
		zap.String("listing_id", listing.ID),
		zap.Float64("overall_risk", overallRisk),
		zap.Float64("safety_score", safety),
	)
	return report, nil
}

// floodRiskFromZone grades a FEMA flood zone designation. A and V zones are
// the special flood hazard areas that trigger mandatory insurance.
func floodRiskFromZone(zone string) model.RiskLevel {
	z := strings.ToUpper(strings.TrimSpace(zone))
	switch {
	case z == "":
		return model.RiskUnknown
	case strings.HasPrefix(z, "A") || strings.HasPrefix(z, "V"):
		return model.RiskHigh
	case z == "B" || z == "X500" || strings.Contains(z, "SHADED"):
		return model.RiskMedium
	case z == "C" || z == "X":
		return model.RiskLow
	default:
		return model.RiskUnknown
	}
}

func parseRiskLevel(s string) model.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "minimal":
		return model.RiskLow
	case "medium", "moderate":
		return model.RiskMedium
	case "high", "severe":
		return model.RiskHigh
	default:
		return model.RiskUnknown
	}
}

// riskPoints maps a coarse risk grade onto the 1-10 scale. Unknown grades
// sit in the middle rather than counting as safe.
func riskPoints(r model.RiskLevel) int {
	switch r {
	case model.RiskLow:
		return 2
	case model.RiskMedium:
		return 5
	case model.RiskHigh:
		return 8
	default:
		return 5
	}
}

func riskSummary(neighborhood string, overallRisk float64) string {
	var grade string
	switch {
	case overallRisk < 3.5:
		grade = "low"
	case overallRisk < 6.5:
		grade = "moderate"
	default:
		grade = "high"
	}
	if neighborhood == "" {
		return fmt.Sprintf("Overall natural hazard exposure is %s (%.1f/10).", grade, overallRisk)
	}
	return fmt.Sprintf("%s has %s overall natural hazard exposure (%.1f/10).", neighborhood, grade, overallRisk)
}

func riskRecommendations(flood, tornado, wildfire, earthquake model.RiskLevel) []string {
	var recs []string
	if flood == model.RiskHigh {
		recs = append(recs, "flood insurance will be required by most lenders")
	} else if flood == model.RiskMedium {
		recs = append(recs, "consider optional flood coverage")
	}
	if wildfire == model.RiskHigh || wildfire == model.RiskMedium {
		recs = append(recs, "maintain defensible space around the structure")
	}
	if earthquake == model.RiskHigh {
		recs = append(recs, "ask about seismic retrofitting")
	}
	if tornado == model.RiskHigh || tornado == model.RiskMedium {
		recs = append(recs, "identify storm shelter options")
	}
	return recs
}
