package game

import (
	"strconv"
	"strings"
	"time"
)

// TeamID is the canonical identifier of a club within one league-season.
type TeamID string

// Result is a game outcome seen from one team's side.
type Result int

const (
	Win Result = iota
	Loss
	Draw
)

func (r Result) String() string {
	switch r {
	case Win:
		return "W"
	case Loss:
		return "L"
	case Draw:
		return "D"
	default:
		return "?"
	}
}

// DateLayout is the calendar-date format used by every adapter.
const DateLayout = "2006-01-02"

// Game is one completed game. Values are immutable once constructed.
type Game struct {
	Date      time.Time `json:"date"`
	AwayTeam  TeamID    `json:"away_team"`
	HomeTeam  TeamID    `json:"home_team"`
	AwayScore int       `json:"away_score"`
	HomeScore int       `json:"home_score"`
}

// NewGame validates and builds a Game. The date is truncated to a UTC
// calendar day.
func NewGame(date time.Time, away, home TeamID, awayScore, homeScore int) (Game, error) {
	g := Game{
		Date:      Day(date),
		AwayTeam:  away,
		HomeTeam:  home,
		AwayScore: awayScore,
		HomeScore: homeScore,
	}
	if err := g.Validate(); err != nil {
		return Game{}, err
	}
	return g, nil
}

// Day strips the clock from t, keeping its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (g Game) Validate() error {
	if g.Date.IsZero() {
		return ErrNoDate
	}
	if g.AwayTeam == "" {
		return &UnknownTeamError{Side: "away"}
	}
	if g.HomeTeam == "" {
		return &UnknownTeamError{Side: "home"}
	}
	if g.AwayTeam == g.HomeTeam {
		return &SelfPlayError{Team: g.HomeTeam}
	}
	if g.AwayScore < 0 {
		return &MalformedScoreError{Value: g.AwayScore}
	}
	if g.HomeScore < 0 {
		return &MalformedScoreError{Value: g.HomeScore}
	}
	return nil
}

func (g Game) IsDraw() bool { return g.AwayScore == g.HomeScore }

func (g Game) Winner() (TeamID, bool) {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeam, true
	case g.AwayScore > g.HomeScore:
		return g.AwayTeam, true
	}
	return "", false
}

func (g Game) Loser() (TeamID, bool) {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.AwayTeam, true
	case g.AwayScore > g.HomeScore:
		return g.HomeTeam, true
	}
	return "", false
}

func (g Game) Involves(t TeamID) bool { return g.HomeTeam == t || g.AwayTeam == t }

func (g Game) IsHome(t TeamID) bool { return g.HomeTeam == t }

// Opponent returns the other side of the game for t.
func (g Game) Opponent(t TeamID) (TeamID, error) {
	switch t {
	case g.HomeTeam:
		return g.AwayTeam, nil
	case g.AwayTeam:
		return g.HomeTeam, nil
	}
	return "", ErrNotInvolved
}

// ScoreFor returns runs scored and allowed by t.
func (g Game) ScoreFor(t TeamID) (scored, allowed int, err error) {
	switch t {
	case g.HomeTeam:
		return g.HomeScore, g.AwayScore, nil
	case g.AwayTeam:
		return g.AwayScore, g.HomeScore, nil
	}
	return 0, 0, ErrNotInvolved
}

func (g Game) ResultFor(t TeamID) (Result, error) {
	scored, allowed, err := g.ScoreFor(t)
	if err != nil {
		return 0, err
	}
	switch {
	case scored > allowed:
		return Win, nil
	case scored < allowed:
		return Loss, nil
	}
	return Draw, nil
}

// ParseScore converts adapter text into a run total.
func ParseScore(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &MalformedScoreError{Raw: raw}
	}
	return n, nil
}
