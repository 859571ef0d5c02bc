package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/store"
)

var historyFlags struct {
	status string
	limit  int
	offset int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded recommendation queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("run"); err != nil {
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

		queries, err := st.ListQueries(ctx, store.QueryFilter{
			Status: model.QueryStatus(historyFlags.status),
			Limit:  historyFlags.limit,
			Offset: historyFlags.offset,
		})
		if err != nil {
			return eris.Wrap(err, "list queries")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(queries), "encode history")
	},
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.status, "status", "", "filter by status (queued, searching, analyzing, ranking, complete, failed)")
	f.IntVar(&historyFlags.limit, "limit", 20, "maximum queries to return")
	f.IntVar(&historyFlags.offset, "offset", 0, "number of queries to skip")
	rootCmd.AddCommand(historyCmd)
}
