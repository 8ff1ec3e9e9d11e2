package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"bestseller-aggregator/internal/config"
	"bestseller-aggregator/internal/models"
	"bestseller-aggregator/internal/scraper"
)

// server exposes the aggregation facade over REST.
type server struct {
	svc *scraper.Service
	log zerolog.Logger
}

func newServer(svc *scraper.Service, log zerolog.Logger) *server {
	return &server{svc: svc, log: log}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.cors)
	r.Use(s.requestLog)

	r.Get("/healthz", s.health)
	r.Route("/api/bestsellers", func(r chi.Router) {
		r.Get("/", s.listSources)
		r.Get("/{source}", s.getBestsellers)
	})
	return r
}

// getBestsellers returns the top-10 JSON array for one source. The facade
// never fails, so the only error case is an unknown source key.
func (s *server) getBestsellers(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	if !s.svc.HasSource(source) {
		s.errorResponse(w, http.StatusNotFound, "unknown source: "+source)
		return
	}

	start := time.Now()
	items := s.svc.FetchTopTen(r.Context(), source)
	if items == nil {
		items = []models.BestsellerItem{}
	}

	s.log.Info().
		Str("source", source).
		Int("items", len(items)).
		Dur("elapsed", time.Since(start)).
		Msg("bestsellers served")

	s.writeJSON(w, http.StatusOK, items)
}

func (s *server) listSources(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, models.SourceListResponse{Sources: s.svc.Sources()})
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

// errorResponse creates an error response
func (s *server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, models.ErrorResponse{Error: message})
}

func (s *server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	svc := scraper.NewService(cfg, log)
	if cfg.Server.WarmUp {
		go svc.WarmUp(context.Background())
	}

	srv := newServer(svc, log)
	addr := ":" + cfg.Server.Port
	log.Info().Str("addr", addr).Msg("starting bestseller aggregator")
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
