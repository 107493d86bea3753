package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/marketpulse/internal/analysis"
	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc, err := initAnalysis(st)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(&server{svc: svc, store: st}, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// server holds the API handlers' dependencies.
type server struct {
	svc   *analysis.Service
	store store.Store
}

func newRouter(s *server, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/verify-key", s.handleVerifyKey)
		r.Post("/verify-websearch", s.handleVerifyWebSearch)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", s.handleListBookmarks)
			r.Post("/", s.handleAddBookmark)
			r.Patch("/{id}", s.handleUpdateBookmarkNotes)
			r.Delete("/{id}", s.handleRemoveBookmark)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Delete("/", s.handleClearHistory)
			r.Get("/{id}", s.handleGetHistoryEntry)
			r.Delete("/{id}", s.handleRemoveHistoryEntry)
		})
	})

	return r
}

// requestLogger logs one line per request with the chi request ID.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

type analyzeRequest struct {
	CompanyName  string `json:"companyName"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	APIKey       string `json:"apiKey"`
	TavilyAPIKey string `json:"tavilyApiKey"`
	JinaAPIKey   string `json:"jinaApiKey"`
	Refresh      bool   `json:"refresh"`
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.svc.Analyze(r.Context(), analysis.Request{
		Company:   req.CompanyName,
		Provider:  req.Provider,
		Model:     req.Model,
		APIKey:    req.APIKey,
		TavilyKey: req.TavilyAPIKey,
		JinaKey:   req.JinaAPIKey,
		Refresh:   req.Refresh,
	})
	if err != nil {
		status := analysis.StatusCode(err)
		if status == http.StatusInternalServerError {
			zap.L().Error("analysis failed", zap.String("company", req.CompanyName), zap.Error(err))
		}
		writeError(w, status, analysis.Message(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type verifyRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

func (s *server) handleVerifyKey(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Provider) == "" || strings.TrimSpace(req.APIKey) == "" {
		writeJSON(w, http.StatusBadRequest, analysis.Verification{Error: "Provider and API key are required"})
		return
	}
	writeJSON(w, http.StatusOK, s.svc.VerifyKey(r.Context(), req.Provider, req.APIKey))
}

func (s *server) handleVerifyWebSearch(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.VerifyWebSearch(r.Context(), req.Provider, req.APIKey))
}

func (s *server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	if company := r.URL.Query().Get("company"); company != "" {
		b, err := s.store.GetBookmark(r.Context(), company)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if b == nil {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSON(w, http.StatusOK, b)
		return
	}

	bookmarks, err := s.store.ListBookmarks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

type bookmarkRequest struct {
	CompanyName string        `json:"companyName"`
	Provider    string        `json:"provider"`
	Data        *model.Report `json:"data"`
	Notes       string        `json:"notes"`
}

func (s *server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}

	var report model.Report
	if req.Data != nil {
		report = *req.Data
		report.Normalize()
	} else {
		cached, err := s.store.GetCachedReport(r.Context(), req.CompanyName, req.Provider)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if cached == nil {
			writeError(w, http.StatusBadRequest, "Analysis data is required")
			return
		}
		report = cached.Report
	}

	b, err := s.store.AddBookmark(r.Context(), req.CompanyName, req.Provider, report, req.Notes)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *server) handleUpdateBookmarkNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.store.UpdateBookmarkNotes(r.Context(), chi.URLParam(r, "id"), req.Notes); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveBookmark(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.store.ListHistory(r.Context(), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *server) handleGetHistoryEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetHistoryEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) handleRemoveHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveHistoryEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.ClearHistory(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	zap.L().Error("store operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
