package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/store"
)

var servePort int

// queryRunner is the slice of the pipeline the HTTP layer needs.
type queryRunner interface {
	Run(ctx context.Context, input model.QueryInput) (*model.RecommendationSet, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recommendation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Pipeline, env.Store, cfg.Server.AllowedOrigins),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(runner queryRunner, st store.Store, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		var input model.QueryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		set, err := runner.Run(r.Context(), input)
		if err != nil {
			zap.L().Error("analyze request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}
		writeJSON(w, http.StatusOK, set)
	})

	r.Get("/api/history", func(w http.ResponseWriter, r *http.Request) {
		filter, err := queryFilterFromRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		queries, err := st.ListQueries(r.Context(), filter)
		if err != nil {
			zap.L().Error("history request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "history lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"queries": queries})
	})

	r.Get("/api/history/{id}", func(w http.ResponseWriter, r *http.Request) {
		query, err := st.GetQuery(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				writeError(w, http.StatusNotFound, "query not found")
				return
			}
			zap.L().Error("history lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "history lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, query)
	})

	return r
}

func queryFilterFromRequest(r *http.Request) (store.QueryFilter, error) {
	filter := store.QueryFilter{Limit: 20}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = model.QueryStatus(status)
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			return filter, eris.New("limit must be an integer between 1 and 100")
		}
		filter.Limit = n
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return filter, eris.New("offset must be a non-negative integer")
		}
		filter.Offset = n
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
