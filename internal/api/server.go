package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/fanout"
	"github.com/charleschow/pennant-race/internal/process"
	"github.com/charleschow/pennant-race/internal/store"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

// TrendStore serves stored magic-number history.
type TrendStore interface {
	MagicTrend(ctx context.Context, league string, team game.TeamID, cutoff, limit int) ([]store.TrendPoint, error)
}

// Server exposes every configured league over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /debug/metrics
//	GET  /ws?league=kbo
//	GET  /api/v1/leagues
//	GET  /api/v1/leagues/{league}/standings
//	GET  /api/v1/leagues/{league}/magic-numbers[?cutoff=N]
//	GET  /api/v1/leagues/{league}/magic-numbers/matrix
//	GET  /api/v1/leagues/{league}/magic-numbers/{team}/trend[?cutoff=N&limit=7]
//	GET  /api/v1/leagues/{league}/teams/{team}/form[?window=10]
//	GET  /api/v1/leagues/{league}/head-to-head
//	GET  /api/v1/leagues/{league}/verify
//	POST /api/v1/leagues/{league}/games
//	POST /api/v1/leagues/{league}/refresh
type Server struct {
	leagues map[string]*process.SeasonProcess
	order   []string
	trends  TrendStore
	fanout  *fanout.Server
}

// NewServer serves procs in the given order. trends and fan may be nil.
func NewServer(procs []*process.SeasonProcess, trends TrendStore, fan *fanout.Server) *Server {
	s := &Server{
		leagues: make(map[string]*process.SeasonProcess, len(procs)),
		trends:  trends,
		fanout:  fan,
	}
	for _, p := range procs {
		s.leagues[p.League()] = p
		s.order = append(s.order, p.League())
	}
	return s
}

// Known reports whether league is served.
func (s *Server) Known(league string) bool {
	_, ok := s.leagues[league]
	return ok
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(metricsMiddleware)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/debug/metrics", s.metrics).Methods(http.MethodGet)
	if s.fanout != nil {
		r.HandleFunc("/ws", s.fanout.HandleWS).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/leagues", s.listLeagues).Methods(http.MethodGet)

	lg := v1.PathPrefix("/leagues/{league}").Subrouter()
	lg.HandleFunc("/standings", s.standings).Methods(http.MethodGet)
	lg.HandleFunc("/magic-numbers", s.magicNumbers).Methods(http.MethodGet)
	lg.HandleFunc("/magic-numbers/matrix", s.magicMatrix).Methods(http.MethodGet)
	lg.HandleFunc("/magic-numbers/{team}/trend", s.magicTrend).Methods(http.MethodGet)
	lg.HandleFunc("/teams/{team}/form", s.teamForm).Methods(http.MethodGet)
	lg.HandleFunc("/head-to-head", s.headToHead).Methods(http.MethodGet)
	lg.HandleFunc("/verify", s.verify).Methods(http.MethodGet)
	lg.HandleFunc("/games", s.postGames).Methods(http.MethodPost)
	lg.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		telemetry.Metrics.APIRequests.Inc()
		next.ServeHTTP(w, r)
		telemetry.Debugf("api: %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
