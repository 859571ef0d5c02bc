package fetcher

import (
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/homescout-ai/homescout/internal/model"
)

// SeedFile is the combined YAML seed format: one document carrying both
// listings and neighborhoods. Either section may be omitted.
type SeedFile struct {
	Listings      []model.Listing
	Neighborhoods []model.Neighborhood
}

// The model structs carry json tags only, so the YAML shape is declared
// separately and converted.
type yamlSeed struct {
	Listings      []yamlListing      `yaml:"listings"`
	Neighborhoods []yamlNeighborhood `yaml:"neighborhoods"`
}

type yamlListing struct {
	ID             string  `yaml:"listing_id"`
	Price          float64 `yaml:"price"`
	Bedrooms       float64 `yaml:"bedrooms"`
	Bathrooms      float64 `yaml:"bathrooms"`
	SquareFootage  float64 `yaml:"square_footage"`
	YearBuilt      int     `yaml:"year_built"`
	PropertyType   string  `yaml:"property_type"`
	Address        string  `yaml:"address"`
	NeighborhoodID string  `yaml:"neighborhood_id"`
	Description    string  `yaml:"description"`
	Lon            float64 `yaml:"lon"`
	Lat            float64 `yaml:"lat"`
}

type yamlNeighborhood struct {
	ID              string  `yaml:"neighborhood_id"`
	Name            string  `yaml:"neighborhood_name"`
	Description     string  `yaml:"description"`
	FEMAFloodZone   string  `yaml:"fema_flood_zone_designation"`
	TornadoRisk     string  `yaml:"tornado_risk_level"`
	WildfireRisk    string  `yaml:"wildfire_risk_level"`
	EarthquakeRisk  string  `yaml:"earthquake_risk_level"`
	DominantWeather string  `yaml:"dominant_weather_pattern"`
	Lon             float64 `yaml:"lon"`
	Lat             float64 `yaml:"lat"`
}

// ReadSeedYAML parses a combined YAML seed document. Unknown fields are
// rejected so typos in seed files fail loudly.
func ReadSeedYAML(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlSeed
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &SeedFile{}, nil
		}
		return nil, eris.Wrap(err, "seed: decode yaml")
	}

	seed := &SeedFile{}
	for i, l := range doc.Listings {
		if l.ID == "" {
			return nil, eris.Errorf("seed: listing %d: empty listing_id", i)
		}
		seed.Listings = append(seed.Listings, model.Listing{
			ID:             l.ID,
			Price:          l.Price,
			Bedrooms:       l.Bedrooms,
			Bathrooms:      l.Bathrooms,
			SquareFootage:  l.SquareFootage,
			YearBuilt:      l.YearBuilt,
			PropertyType:   l.PropertyType,
			Address:        l.Address,
			NeighborhoodID: l.NeighborhoodID,
			Description:    l.Description,
			Lon:            l.Lon,
			Lat:            l.Lat,
		})
	}
	for i, n := range doc.Neighborhoods {
		if n.ID == "" {
			return nil, eris.Errorf("seed: neighborhood %d: empty neighborhood_id", i)
		}
		seed.Neighborhoods = append(seed.Neighborhoods, model.Neighborhood{
			ID:              n.ID,
			Name:            n.Name,
			Description:     n.Description,
			FEMAFloodZone:   n.FEMAFloodZone,
			TornadoRisk:     n.TornadoRisk,
			WildfireRisk:    n.WildfireRisk,
			EarthquakeRisk:  n.EarthquakeRisk,
			DominantWeather: n.DominantWeather,
			Lon:             n.Lon,
			Lat:             n.Lat,
		})
	}
	return seed, nil
}
