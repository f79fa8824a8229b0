package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/charleschow/pennant-race/internal/core/form"
	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/report"
	"github.com/charleschow/pennant-race/internal/core/verify"
	"github.com/charleschow/pennant-race/internal/process"
	"github.com/charleschow/pennant-race/internal/store"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

const maxIngestBody = 4 << 20

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, telemetry.TakeSnapshot())
}

type teamInfo struct {
	ID   game.TeamID `json:"id"`
	Name string      `json:"name"`
}

type leagueInfo struct {
	Key          string     `json:"key"`
	Name         string     `json:"name"`
	SeasonGames  int        `json:"season_games"`
	PlayoffSpots int        `json:"playoff_spots"`
	Scraping     bool       `json:"scraping"`
	Games        int        `json:"games"`
	AsOf         string     `json:"as_of,omitempty"`
	Teams        []teamInfo `json:"teams"`
}

func (s *Server) listLeagues(w http.ResponseWriter, _ *http.Request) {
	out := make([]leagueInfo, 0, len(s.order))
	for _, key := range s.order {
		p := s.leagues[key]
		rules := p.Rules()
		info := leagueInfo{
			Key:          key,
			Name:         p.Name(),
			SeasonGames:  rules.SeasonGames,
			PlayoffSpots: rules.PlayoffSpots,
			Scraping:     p.CanScrape(),
		}
		for _, id := range p.Roster().Teams() {
			info.Teams = append(info.Teams, teamInfo{ID: id, Name: p.Roster().Name(id)})
		}
		if b := p.Latest(); b != nil {
			info.Games = b.Table.GameCount
			info.AsOf = b.Standings.AsOf
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// league resolves the {league} path variable, writing a 404 when unknown.
func (s *Server) league(w http.ResponseWriter, r *http.Request) (*process.SeasonProcess, bool) {
	key := mux.Vars(r)["league"]
	p, ok := s.leagues[key]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_league", fmt.Sprintf("unknown league %q", key))
		return nil, false
	}
	return p, true
}

// bundle returns the league's latest computation, writing a 503 before the
// first one has finished.
func (s *Server) bundle(w http.ResponseWriter, r *http.Request) (*process.SeasonProcess, *report.Bundle, bool) {
	p, ok := s.league(w, r)
	if !ok {
		return nil, nil, false
	}
	b := p.Latest()
	if b == nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "standings not computed yet")
		return nil, nil, false
	}
	return p, b, true
}

// team resolves the {team} path variable through the roster's aliases.
func team(w http.ResponseWriter, r *http.Request, p *process.SeasonProcess) (game.TeamID, bool) {
	raw := mux.Vars(r)["team"]
	id, err := p.Roster().Resolve(raw)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_team", err.Error())
		return "", false
	}
	return id, true
}

// intQuery parses an optional positive integer query parameter.
func intQuery(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return n, true
}

func (s *Server) standings(w http.ResponseWriter, r *http.Request) {
	if _, b, ok := s.bundle(w, r); ok {
		writeJSON(w, http.StatusOK, b.Standings)
	}
}

func (s *Server) magicNumbers(w http.ResponseWriter, r *http.Request) {
	p, b, ok := s.bundle(w, r)
	if !ok {
		return
	}
	cutoff, ok := intQuery(w, r, "cutoff", p.Rules().PlayoffSpots)
	if !ok {
		return
	}
	if cutoff >= p.Roster().Len() {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("cutoff must be below the %d teams", p.Roster().Len()))
		return
	}
	rep, err := b.MagicFor(cutoff)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) magicMatrix(w http.ResponseWriter, r *http.Request) {
	if _, b, ok := s.bundle(w, r); ok {
		writeJSON(w, http.StatusOK, b.Matrix)
	}
}

type trendResponse struct {
	League string             `json:"league"`
	Team   game.TeamID        `json:"team"`
	Cutoff int                `json:"cutoff"`
	Points []store.TrendPoint `json:"points"`
}

func (s *Server) magicTrend(w http.ResponseWriter, r *http.Request) {
	p, ok := s.league(w, r)
	if !ok {
		return
	}
	id, ok := team(w, r, p)
	if !ok {
		return
	}
	cutoff, ok := intQuery(w, r, "cutoff", p.Rules().PlayoffSpots)
	if !ok {
		return
	}
	limit, ok := intQuery(w, r, "limit", store.DefaultTrendLimit)
	if !ok {
		return
	}
	if s.trends == nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "no trend store configured")
		return
	}
	points, err := s.trends.MagicTrend(r.Context(), p.League(), id, cutoff, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if points == nil {
		points = []store.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, trendResponse{League: p.League(), Team: id, Cutoff: cutoff, Points: points})
}

type formResponse struct {
	Team     game.TeamID `json:"team"`
	Name     string      `json:"name"`
	Window   int         `json:"window"`
	Games    int         `json:"games"`
	Record   string      `json:"record"`
	Sequence string      `json:"sequence"`
	Wins     int         `json:"wins"`
	Losses   int         `json:"losses"`
	Draws    int         `json:"draws"`
	Streak   string      `json:"streak"`
}

func (s *Server) teamForm(w http.ResponseWriter, r *http.Request) {
	p, b, ok := s.bundle(w, r)
	if !ok {
		return
	}
	id, ok := team(w, r, p)
	if !ok {
		return
	}
	window, ok := intQuery(w, r, "window", form.DefaultWindow)
	if !ok {
		return
	}
	f, err := b.Form(id, window)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{
		Team:     id,
		Name:     p.Roster().Name(id),
		Window:   f.Window,
		Games:    len(f.Results),
		Record:   f.Record(),
		Sequence: f.Sequence(),
		Wins:     f.Wins,
		Losses:   f.Losses,
		Draws:    f.Draws,
		Streak:   f.Streak.String(),
	})
}

func (s *Server) headToHead(w http.ResponseWriter, r *http.Request) {
	if _, b, ok := s.bundle(w, r); ok {
		writeJSON(w, http.StatusOK, b.HeadToHead)
	}
}

type verifyResponse struct {
	League     string             `json:"league"`
	AsOf       string             `json:"as_of"`
	OK         bool               `json:"ok"`
	Violations []verify.Violation `json:"violations"`
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	p, b, ok := s.bundle(w, r)
	if !ok {
		return
	}
	res := verify.Bundle(b, verify.DefaultEpsilon)
	violations := res.Violations
	if violations == nil {
		violations = []verify.Violation{}
	}
	writeJSON(w, http.StatusOK, verifyResponse{League: p.League(), AsOf: b.Standings.AsOf, OK: res.OK(), Violations: violations})
}

var errBadDate = errors.New("bad date")

// gameInput is the ingest wire shape. Team fields accept any roster alias.
type gameInput struct {
	Date      string      `json:"date"`
	AwayTeam  string      `json:"away_team"`
	HomeTeam  string      `json:"home_team"`
	AwayScore json.Number `json:"away_score"`
	HomeScore json.Number `json:"home_score"`
}

func (in gameInput) resolve(roster *game.Roster) (game.Game, error) {
	date, err := time.Parse(game.DateLayout, in.Date)
	if err != nil {
		return game.Game{}, fmt.Errorf("%w %q, want %s", errBadDate, in.Date, game.DateLayout)
	}
	away, err := roster.Resolve(in.AwayTeam)
	if err != nil {
		return game.Game{}, err
	}
	home, err := roster.Resolve(in.HomeTeam)
	if err != nil {
		return game.Game{}, err
	}
	as, err := game.ParseScore(in.AwayScore.String())
	if err != nil {
		return game.Game{}, err
	}
	hs, err := game.ParseScore(in.HomeScore.String())
	if err != nil {
		return game.Game{}, err
	}
	return game.NewGame(date, away, home, as, hs)
}

func (s *Server) postGames(w http.ResponseWriter, r *http.Request) {
	p, ok := s.league(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	var inputs []gameInput
	if err := json.Unmarshal(body, &inputs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("decode games: %v", err))
		return
	}
	if len(inputs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "no games in body")
		return
	}

	games := make([]game.Game, 0, len(inputs))
	for i, in := range inputs {
		g, err := in.resolve(p.Roster())
		if err != nil {
			telemetry.Metrics.GamesRejected.Inc()
			if errors.Is(err, errBadDate) {
				writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("game %d: %v", i, err))
				return
			}
			writeDomainError(w, fmt.Errorf("game %d: %w", i, err))
			return
		}
		games = append(games, g)
	}

	res, err := p.Ingest(r.Context(), "api", games)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	p, ok := s.league(w, r)
	if !ok {
		return
	}
	res, err := p.Refresh(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
