package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/homescout-ai/homescout/internal/model"
)

// readCSV parses an entire CSV document, returning the header row and the
// data rows. Field counts may vary per row; blank rows are dropped.
func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, eris.New("seed: empty csv")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "seed: read csv header")
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "seed: read csv row")
		}
		if blankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// ListingsFromCSV parses listing seed data. The header row names columns;
// listing_id and price are required, everything else is optional.
func ListingsFromCSV(r io.Reader) ([]model.Listing, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return listingsFromRows(header, rows)
}

// NeighborhoodsFromCSV parses neighborhood seed data.
func NeighborhoodsFromCSV(r io.Reader) ([]model.Neighborhood, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return neighborhoodsFromRows(header, rows)
}

func listingsFromRows(header []string, rows [][]string) ([]model.Listing, error) {
	idx := headerIndex(header)
	if err := requireColumns(idx, "listing_id", "price"); err != nil {
		return nil, err
	}

	listings := make([]model.Listing, 0, len(rows))
	for n, row := range rows {
		listing, err := listingFromRow(row, idx)
		if err != nil {
			return nil, eris.Wrapf(err, "seed: row %d", n+2)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func listingFromRow(row []string, idx map[string]int) (model.Listing, error) {
	listing := model.Listing{
		ID:             field(row, idx, "listing_id"),
		PropertyType:   field(row, idx, "property_type"),
		Address:        field(row, idx, "address"),
		NeighborhoodID: field(row, idx, "neighborhood_id"),
		Description:    field(row, idx, "description"),
	}
	if listing.ID == "" {
		return model.Listing{}, eris.New("seed: empty listing_id")
	}

	var err error
	if listing.Price, err = floatField(row, idx, "price"); err != nil {
		return model.Listing{}, err
	}
	if listing.Bedrooms, err = floatField(row, idx, "bedrooms"); err != nil {
		return model.Listing{}, err
	}
	if listing.Bathrooms, err = floatField(row, idx, "bathrooms"); err != nil {
		return model.Listing{}, err
	}
	if listing.SquareFootage, err = floatField(row, idx, "square_footage"); err != nil {
		return model.Listing{}, err
	}
	if listing.YearBuilt, err = intField(row, idx, "year_built"); err != nil {
		return model.Listing{}, err
	}
	if listing.Lon, err = floatField(row, idx, "lon"); err != nil {
		return model.Listing{}, err
	}
	if listing.Lat, err = floatField(row, idx, "lat"); err != nil {
		return model.Listing{}, err
	}
	return listing, nil
}

func neighborhoodsFromRows(header []string, rows [][]string) ([]model.Neighborhood, error) {
	idx := headerIndex(header)
	if err := requireColumns(idx, "neighborhood_id", "neighborhood_name"); err != nil {
		return nil, err
	}

	neighborhoods := make([]model.Neighborhood, 0, len(rows))
	for n, row := range rows {
		nbhd := model.Neighborhood{
			ID:              field(row, idx, "neighborhood_id"),
			Name:            field(row, idx, "neighborhood_name"),
			Description:     field(row, idx, "description"),
			FEMAFloodZone:   field(row, idx, "fema_flood_zone_designation"),
			TornadoRisk:     field(row, idx, "tornado_risk_level"),
			WildfireRisk:    field(row, idx, "wildfire_risk_level"),
			EarthquakeRisk:  field(row, idx, "earthquake_risk_level"),
			DominantWeather: field(row, idx, "dominant_weather_pattern"),
		}
		if nbhd.ID == "" {
			return nil, eris.Errorf("seed: row %d: empty neighborhood_id", n+2)
		}

		var err error
		if nbhd.Lon, err = floatField(row, idx, "lon"); err != nil {
			return nil, eris.Wrapf(err, "seed: row %d", n+2)
		}
		if nbhd.Lat, err = floatField(row, idx, "lat"); err != nil {
			return nil, eris.Wrapf(err, "seed: row %d", n+2)
		}
		neighborhoods = append(neighborhoods, nbhd)
	}
	return neighborhoods, nil
}
