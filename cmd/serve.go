package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/quote-sync/internal/engine"
	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/store"
)

var servePort int

// listResponse is one page of saved analyses.
type listResponse struct {
	Items  []model.PersistedAnalysis `json:"items" yaml:"items"`
	Total  int                       `json:"total" yaml:"total"`
	Limit  int                       `json:"limit,omitempty" yaml:"limit,omitempty"`
	Offset int                       `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// api serves the engine and store over HTTP.
type api struct {
	eng *engine.Engine
	st  store.Store
}

func buildRouter(a *api, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/documents", a.listDocuments)
	r.Post("/documents/{fileID}/analyze", a.analyzeDocument)
	r.Get("/analyses", a.listAnalyses)
	r.Get("/analyses/{id}", a.getAnalysis)
	return r
}

func (a *api) listDocuments(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	writeJSON(w, http.StatusOK, a.eng.ScanDocuments(r.Context(), refresh))
}

func (a *api) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	save, _ := strconv.ParseBool(r.URL.Query().Get("save"))
	if save && a.st == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	var resp analyzeResponse
	if save {
		resp.Result, resp.Saved = a.eng.AnalyzeAndSave(r.Context(), fileID)
	} else {
		resp.Result = a.eng.AnalyzeDocument(r.Context(), fileID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) listAnalyses(w http.ResponseWriter, r *http.Request) {
	if a.st == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	desc, _ := strconv.ParseBool(q.Get("desc"))

	filter, err := store.ListFilter{
		Query:   q.Get("q"),
		OrderBy: q.Get("order"),
		Desc:    desc,
		Limit:   limit,
		Offset:  offset,
	}.Normalize()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := a.st.List(r.Context(), filter)
	if err != nil {
		zap.L().Error("list analyses failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list analyses failed")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (a *api) getAnalysis(w http.ResponseWriter, r *http.Request) {
	if a.st == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}
	got, err := a.st.Get(r.Context(), chi.URLParam(r, "id"))
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		zap.L().Error("get analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, got)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scan, analyze and saved analyses over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		eng, err := initEngine(ctx, cfg, st)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(&api{eng: eng, st: st}, cfg.Server.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		// Graceful shutdown
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
