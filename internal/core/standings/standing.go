package standings

import (
	"fmt"

	"github.com/charleschow/pennant-race/internal/core/game"
)

// Standing is the running record of one team. Counts are only ever
// incremented by the aggregator fold.
type Standing struct {
	Team   game.TeamID `json:"team"`
	Games  int         `json:"games"`
	Wins   int         `json:"wins"`
	Losses int         `json:"losses"`
	Draws  int         `json:"draws"`

	HomeWins   int `json:"home_wins"`
	HomeLosses int `json:"home_losses"`
	HomeDraws  int `json:"home_draws"`
	AwayWins   int `json:"away_wins"`
	AwayLosses int `json:"away_losses"`
	AwayDraws  int `json:"away_draws"`

	RunsScored  int `json:"runs_scored"`
	RunsAllowed int `json:"runs_allowed"`
}

// WinPct is W/(W+L). Draws are excluded; a team with no decisions is at 0.
func (s Standing) WinPct() float64 {
	return winPct(s.Wins, s.Losses)
}

func (s Standing) RunDiff() int   { return s.RunsScored - s.RunsAllowed }
func (s Standing) HomeGames() int { return s.HomeWins + s.HomeLosses + s.HomeDraws }
func (s Standing) AwayGames() int { return s.AwayWins + s.AwayLosses + s.AwayDraws }

func (s Standing) HomeRecord() string { return FormatRecord(s.HomeWins, s.HomeLosses, s.HomeDraws) }
func (s Standing) AwayRecord() string { return FormatRecord(s.AwayWins, s.AwayLosses, s.AwayDraws) }

func (s *Standing) apply(g game.Game) error {
	r, err := g.ResultFor(s.Team)
	if err != nil {
		return err
	}
	scored, allowed, _ := g.ScoreFor(s.Team)
	home := g.IsHome(s.Team)

	s.Games++
	s.RunsScored += scored
	s.RunsAllowed += allowed
	switch r {
	case game.Win:
		s.Wins++
		if home {
			s.HomeWins++
		} else {
			s.AwayWins++
		}
	case game.Loss:
		s.Losses++
		if home {
			s.HomeLosses++
		} else {
			s.AwayLosses++
		}
	case game.Draw:
		s.Draws++
		if home {
			s.HomeDraws++
		} else {
			s.AwayDraws++
		}
	}
	return nil
}

// FormatRecord renders "W-L-D".
func FormatRecord(w, l, d int) string {
	return fmt.Sprintf("%d-%d-%d", w, l, d)
}

// GamesBehind is ((leaderW - w) + (l - leaderL)) / 2. A team that sits
// behind the leader on win percentage but ahead on the raw count (possible
// when games played differ widely) is shown at 0.
func GamesBehind(leader, s Standing) float64 {
	gb := float64((leader.Wins-s.Wins)+(s.Losses-leader.Losses)) / 2
	if gb < 0 {
		return 0
	}
	return gb
}

// ComparePct orders a and b by exact win percentage: 1 when a is ahead,
// -1 when behind, 0 when level.
func ComparePct(a, b Standing) int { return comparePct(a.Wins, a.Losses, b.Wins, b.Losses) }

func winPct(w, l int) float64 {
	if w+l == 0 {
		return 0
	}
	return float64(w) / float64(w+l)
}
