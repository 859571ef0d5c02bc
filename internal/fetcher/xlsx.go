package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/homescout-ai/homescout/internal/model"
)

// XLSXOptions selects the sheet to import.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ListingsFromXLSX parses listing seed data from a spreadsheet. The first
// row of the selected sheet names the columns, same as the CSV format.
func ListingsFromXLSX(path string, opts XLSXOptions) ([]model.Listing, error) {
	header, rows, err := readXLSX(path, opts)
	if err != nil {
		return nil, err
	}
	return listingsFromRows(header, rows)
}

// NeighborhoodsFromXLSX parses neighborhood seed data from a spreadsheet.
func NeighborhoodsFromXLSX(path string, opts XLSXOptions) ([]model.Neighborhood, error) {
	header, rows, err := readXLSX(path, opts)
	if err != nil {
		return nil, err
	}
	return neighborhoodsFromRows(header, rows)
}

func readXLSX(path string, opts XLSXOptions) ([]string, [][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "seed: open xlsx")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil, eris.New("seed: empty sheet")
	}

	header := rowToStrings(sheet.Rows[0])
	var rows [][]string
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if blankRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return header, rows, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("seed: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("seed: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
