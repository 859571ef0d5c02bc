// Package fetcher parses listing and neighborhood seed data from CSV,
// XLSX, and YAML files into model records ready for the store.
package fetcher

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// headerIndex maps lowercased, trimmed column names to their positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func requireColumns(idx map[string]int, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("seed: missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func field(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func floatField(row []string, idx map[string]int, name string) (float64, error) {
	s := field(row, idx, name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "seed: column %s", name)
	}
	return v, nil
}

func intField(row []string, idx map[string]int, name string) (int, error) {
	v, err := floatField(row, idx, name)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
