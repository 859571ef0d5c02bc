package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/fetcher"
	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/store"
)

var seedFlags struct {
	listings      string
	neighborhoods string
	combined      string
	sheet         string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import listing and neighborhood data into the store",
	Long:  "Imports seed data from CSV or XLSX files (one entity per file) or a combined YAML document, upserting by ID.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if seedFlags.listings == "" && seedFlags.neighborhoods == "" && seedFlags.combined == "" {
			return eris.New("nothing to import: pass --listings, --neighborhoods, or --file")
		}

		if err := cfg.Validate("seed"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if seedFlags.combined != "" {
			if err := seedFromYAML(ctx, st, seedFlags.combined); err != nil {
				return err
			}
		}
		if seedFlags.listings != "" {
			listings, err := loadListings(seedFlags.listings)
			if err != nil {
				return err
			}
			if err := upsertListings(ctx, st, listings); err != nil {
				return err
			}
		}
		if seedFlags.neighborhoods != "" {
			neighborhoods, err := loadNeighborhoods(seedFlags.neighborhoods)
			if err != nil {
				return err
			}
			if err := upsertNeighborhoods(ctx, st, neighborhoods); err != nil {
				return err
			}
		}

		return nil
	},
}

func loadListings(path string) ([]model.Listing, error) {
	switch ext(path) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "open listings file")
		}
		defer f.Close()
		return fetcher.ListingsFromCSV(f)
	case ".xlsx":
		return fetcher.ListingsFromXLSX(path, fetcher.XLSXOptions{SheetName: seedFlags.sheet})
	default:
		return nil, eris.Errorf("unsupported listings format: %s", ext(path))
	}
}

func loadNeighborhoods(path string) ([]model.Neighborhood, error) {
	switch ext(path) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "open neighborhoods file")
		}
		defer f.Close()
		return fetcher.NeighborhoodsFromCSV(f)
	case ".xlsx":
		return fetcher.NeighborhoodsFromXLSX(path, fetcher.XLSXOptions{SheetName: seedFlags.sheet})
	default:
		return nil, eris.Errorf("unsupported neighborhoods format: %s", ext(path))
	}
}

func seedFromYAML(ctx context.Context, st store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrap(err, "open seed file")
	}
	defer f.Close()

	seed, err := fetcher.ReadSeedYAML(f)
	if err != nil {
		return err
	}

	// Neighborhoods first so listings can reference them immediately.
	if err := upsertNeighborhoods(ctx, st, seed.Neighborhoods); err != nil {
		return err
	}
	return upsertListings(ctx, st, seed.Listings)
}

func upsertListings(ctx context.Context, st store.Store, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	n, err := st.UpsertListings(ctx, listings)
	if err != nil {
		return eris.Wrap(err, "upsert listings")
	}
	zap.L().Info("listings imported", zap.Int("count", n))
	return nil
}

func upsertNeighborhoods(ctx context.Context, st store.Store, neighborhoods []model.Neighborhood) error {
	if len(neighborhoods) == 0 {
		return nil
	}
	n, err := st.UpsertNeighborhoods(ctx, neighborhoods)
	if err != nil {
		return eris.Wrap(err, "upsert neighborhoods")
	}
	zap.L().Info("neighborhoods imported", zap.Int("count", n))
	return nil
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedFlags.listings, "listings", "", "listings file (.csv or .xlsx)")
	f.StringVar(&seedFlags.neighborhoods, "neighborhoods", "", "neighborhoods file (.csv or .xlsx)")
	f.StringVar(&seedFlags.combined, "file", "", "combined seed file (.yaml)")
	f.StringVar(&seedFlags.sheet, "sheet", "", "xlsx sheet name (default first sheet)")
	rootCmd.AddCommand(seedCmd)
}
