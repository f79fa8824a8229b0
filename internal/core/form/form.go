package form

import (
	"fmt"
	"strings"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/standings"
)

// DefaultWindow is the size of the "recent 10" form window.
const DefaultWindow = 10

// Streak is the run of identical results ending at the most recent game.
// Valid is false for a team with no games.
type Streak struct {
	Length int
	Result game.Result
	Valid  bool
}

func (s Streak) String() string {
	if !s.Valid || s.Length == 0 {
		return "-"
	}
	return fmt.Sprintf("%d%s", s.Length, s.Result)
}

// Form is a team's trailing window plus its current streak.
type Form struct {
	Team    game.TeamID
	Window  int
	Results []game.Result // oldest first
	Wins    int
	Losses  int
	Draws   int
	Streak  Streak
}

// Record renders the window as "W-L-D".
func (f Form) Record() string {
	return standings.FormatRecord(f.Wins, f.Losses, f.Draws)
}

// Sequence renders the window as e.g. "WWLWWW".
func (f Form) Sequence() string {
	var b strings.Builder
	for _, r := range f.Results {
		b.WriteString(r.String())
	}
	return b.String()
}

// Analyze takes one team's games in chronological order and reports the
// last min(window, len(games)) results and the current streak. A window of
// zero or less uses DefaultWindow.
func Analyze(team game.TeamID, games []game.Game, window int) (Form, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	results := make([]game.Result, len(games))
	for i, g := range games {
		r, err := g.ResultFor(team)
		if err != nil {
			return Form{}, fmt.Errorf("%s on %s: %w", team, g.Date.Format(game.DateLayout), err)
		}
		results[i] = r
	}

	start := len(results) - window
	if start < 0 {
		start = 0
	}
	f := Form{
		Team:    team,
		Window:  window,
		Results: append([]game.Result(nil), results[start:]...),
		Streak:  streak(results),
	}
	for _, r := range f.Results {
		switch r {
		case game.Win:
			f.Wins++
		case game.Loss:
			f.Losses++
		case game.Draw:
			f.Draws++
		}
	}
	return f, nil
}

// AnalyzeAll computes form for every roster team over a full season.
func AnalyzeAll(roster *game.Roster, season game.Season, window int) (map[game.TeamID]Form, error) {
	out := make(map[game.TeamID]Form, roster.Len())
	for _, id := range roster.Teams() {
		f, err := Analyze(id, season.ForTeam(id), window)
		if err != nil {
			return nil, err
		}
		out[id] = f
	}
	return out, nil
}

// streak scans backward over the full history, not just the window.
func streak(results []game.Result) Streak {
	if len(results) == 0 {
		return Streak{}
	}
	last := results[len(results)-1]
	n := 0
	for i := len(results) - 1; i >= 0 && results[i] == last; i-- {
		n++
	}
	return Streak{Length: n, Result: last, Valid: true}
}
