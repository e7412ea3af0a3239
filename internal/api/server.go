// Package api exposes the HTTP interface for the food search service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/food"
	"github.com/nutrisync/foodsearch/internal/metrics"
	"github.com/nutrisync/foodsearch/internal/scraper"
)

// SearchEngine is the federation surface the API exposes.
type SearchEngine interface {
	FederatedSearch(ctx context.Context, query string, page, pageSize int) food.SearchResult
	FastSearch(ctx context.Context, query string, pageSize int) food.SearchResult
	LookupBarcode(ctx context.Context, code string) (food.NormalizedProduct, error)
}

// ScrapeTrigger starts a background catalog walk and returns its job
// ID.
type ScrapeTrigger interface {
	StartIncremental(ctx context.Context, s scraper.Scraper) (string, error)
}

// Server wires HTTP handlers to the engine, scrapers and stores.
type Server struct {
	router   chi.Router
	engine   SearchEngine
	trigger  ScrapeTrigger
	scrapers map[food.Source]scraper.Scraper
	jobs     food.JobStore
	products food.ProductStore
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	engine SearchEngine,
	trigger ScrapeTrigger,
	scrapers []scraper.Scraper,
	jobs food.JobStore,
	products food.ProductStore,
	logger *zap.Logger,
) *Server {
	byProvider := make(map[food.Source]scraper.Scraper, len(scrapers))
	for _, sc := range scrapers {
		byProvider[sc.Provider()] = sc
	}
	s := &Server{
		engine:   engine,
		trigger:  trigger,
		scrapers: byProvider,
		jobs:     jobs,
		products: products,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metricsMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.search)
		r.Get("/search/fast", s.fastSearch)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.searchCatalog)
			r.Get("/barcode/{code}", s.barcode)
			r.Get("/{product_id}", s.getProduct)
		})
		r.Post("/scrape/{provider}", s.startScrape)
		r.Get("/jobs/{job_id}", s.getJob)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, s.logger)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	page := intParam(r, "page", 1)
	pageSize := intParam(r, "page_size", 0)
	result := s.engine.FederatedSearch(r.Context(), query, page, pageSize)
	writeJSON(w, http.StatusOK, result, s.logger)
}

func (s *Server) fastSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	pageSize := intParam(r, "page_size", 0)
	result := s.engine.FastSearch(r.Context(), query, pageSize)
	writeJSON(w, http.StatusOK, result, s.logger)
}

func (s *Server) barcode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	product, err := s.engine.LookupBarcode(r.Context(), code)
	if err != nil {
		if errors.Is(err, food.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.writeError(w, http.StatusBadGateway, "barcode lookup unavailable")
		return
	}
	writeJSON(w, http.StatusOK, product, s.logger)
}

// searchCatalog reads the local catalog only, without touching the
// upstream providers.
func (s *Server) searchCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := intParam(r, "limit", 20)
	products, err := s.products.SearchByName(r.Context(), query, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "catalog search failed")
		return
	}
	if products == nil {
		products = []food.NormalizedProduct{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products}, s.logger)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	product, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, food.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "product load failed")
		return
	}
	writeJSON(w, http.StatusOK, product, s.logger)
}

func (s *Server) startScrape(w http.ResponseWriter, r *http.Request) {
	provider := food.Source(chi.URLParam(r, "provider"))
	sc, ok := s.scrapers[provider]
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown provider")
		return
	}
	jobID, err := s.trigger.StartIncremental(r.Context(), sc)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not start scrape")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID}, s.logger)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, food.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "job load failed")
		return
	}
	writeJSON(w, http.StatusOK, job, s.logger)
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}
		metrics.ObserveHTTPRequest(r.Method, routePattern, ww.status, time.Since(start))
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg}, s.logger)
}
