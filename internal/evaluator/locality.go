package evaluator

import (
	"context"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/store"
)

type keywordWeight struct {
	name   string
	weight int
}

// amenityCategories lists, in fixed order, the description keywords that
// signal each report category and their score contributions. Order matters:
// report output must be deterministic for identical inputs.
var amenityCategories = []struct {
	name     string
	pro      string
	keywords []keywordWeight
}{
	{
		name: "schools",
		pro:  "good school options nearby",
		keywords: []keywordWeight{
			{"school", 5}, {"university", 3}, {"education", 3},
		},
	},
	{
		name: "shopping",
		pro:  "shopping within easy reach",
		keywords: []keywordWeight{
			{"shopping", 3}, {"grocery", 2}, {"mall", 2}, {"market", 2},
		},
	},
	{
		name: "restaurants",
		pro:  "plenty of dining options",
		keywords: []keywordWeight{
			{"restaurant", 3}, {"dining", 2}, {"cafe", 2},
		},
	},
	{
		name: "transportation",
		pro:  "convenient transportation access",
		keywords: []keywordWeight{
			{"transit", 4}, {"train", 3}, {"bus", 2}, {"highway", 2}, {"commute", 2},
		},
	},
	{
		name: "parks_recreation",
		pro:  "parks and recreation nearby",
		keywords: []keywordWeight{
			{"park", 4}, {"trail", 3}, {"greenbelt", 3}, {"recreation", 2},
		},
	},
	{
		name: "amenities",
		pro:  "community amenities close by",
		keywords: []keywordWeight{
			{"community center", 3}, {"pool", 2}, {"gym", 2}, {"library", 2},
		},
	},
}

// walkabilityKeywords contribute to the 0-10 walkability score.
var walkabilityKeywords = []keywordWeight{
	{"walkable", 4},
	{"walking distance", 3},
	{"downtown", 3},
	{"transit", 2},
	{"sidewalk", 1},
}

// maxLocalityScore is the ceiling of the locality dimension.
const maxLocalityScore = 25

// StoreLocality evaluates locality by mining the listing's neighborhood
// record for amenity signals.
type StoreLocality struct {
	store store.Store
}

// NewStoreLocality returns a store-backed locality evaluator.
func NewStoreLocality(st store.Store) *StoreLocality {
	return &StoreLocality{store: st}
}

func (e *StoreLocality) EvaluateLocality(ctx context.Context, listing model.Listing, _ model.UserContext) (model.LocalityReport, error) {
	if listing.NeighborhoodID == "" {
		return model.LocalityReport{}, eris.Errorf("locality: listing %s has no neighborhood", listing.ID)
	}

	nbhd, err := e.store.GetNeighborhood(ctx, listing.NeighborhoodID)
	if err != nil {
		return model.LocalityReport{}, eris.Wrapf(err, "locality: neighborhood %s", listing.NeighborhoodID)
	}

	text := strings.ToLower(nbhd.Description + " " + listing.Description)

	report := model.LocalityReport{
		ListingID: listing.ID,
		Address:   listing.Address,
	}

	featureTotal := 0
	for _, cat := range amenityCategories {
		var features []model.Feature
		for _, kw := range cat.keywords {
			if strings.Contains(text, kw.name) {
				features = append(features, model.Feature{Name: kw.name, Category: cat.name, Weight: kw.weight})
				featureTotal += kw.weight
			}
		}
		if len(features) == 0 {
			continue
		}
		switch cat.name {
		case "schools":
			report.Schools = features
		case "shopping":
			report.Shopping = features
		case "restaurants":
			report.Restaurants = features
		case "transportation":
			report.Transportation = features
		case "parks_recreation":
			report.ParksRecreation = features
		case "amenities":
			report.Amenities = features
		}
		report.Pros = append(report.Pros, cat.pro)
	}

	walkability := 0
	for _, kw := range walkabilityKeywords {
		if strings.Contains(text, kw.name) {
			walkability += kw.weight
		}
	}
	if walkability > 10 {
		walkability = 10
	}
	report.WalkabilityScore = walkability

	overall := float64(featureTotal) + float64(walkability)/2
	if overall > maxLocalityScore {
		overall = maxLocalityScore
	}
	report.OverallScore = overall
	report.Rating = localityRating(overall)

	if overall < 10 {
		report.Cons = append(report.Cons, "limited neighborhood amenities")
	}
	if walkability < 4 {
		report.Cons = append(report.Cons, "car dependent area")
	}

	if listing.Lon != 0 && listing.Lat != 0 && nbhd.Lon != 0 && nbhd.Lat != 0 {
		dist := centerDistanceKm(listing.Lon, listing.Lat, nbhd.Lon, nbhd.Lat)
		report.CenterDistanceKm = dist
		if dist <= 2.0 {
			report.Pros = append(report.Pros, "close to the neighborhood center")
		} else if dist > 5.0 {
			report.Cons = append(report.Cons, "long trip to the neighborhood center")
		}
	}

	zap.L().Debug("locality evaluated",
		zap.String("listing_id", listing.ID),
		zap.Float64("overall_score", overall),
		zap.Int("walkability", walkability),
	)
	return report, nil
}

func localityRating(score float64) string {
	switch {
	case score >= 20:
		return "Excellent"
	case score >= 15:
		return "Very Good"
	case score >= 10:
		return "Good"
	case score >= 5:
		return "Fair"
	default:
		return "Limited"
	}
}

// centerDistanceKm approximates the distance between a listing and its
// neighborhood center. Planar distance in degrees with a cosine latitude
// correction is accurate enough at neighborhood scale.
func centerDistanceKm(lon1, lat1, lon2, lat2 float64) float64 {
	midLat := (lat1 + lat2) / 2 * math.Pi / 180
	c1 := geom.Coord{lon1 * math.Cos(midLat), lat1}
	c2 := geom.Coord{lon2 * math.Cos(midLat), lat2}
	const kmPerDegree = 111.195
	return xy.Distance(c1, c2) * kmPerDegree
}
