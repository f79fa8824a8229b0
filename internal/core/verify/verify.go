package verify

import (
	"fmt"
	"math"
	"strings"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/magic"
	"github.com/charleschow/pennant-race/internal/core/report"
	"github.com/charleschow/pennant-race/internal/core/standings"
)

// DefaultEpsilon tolerates the three-decimal rounding of stored figures.
const DefaultEpsilon = 1e-3

// Violation is one failed check. Team is empty for league-wide checks.
type Violation struct {
	Team     game.TeamID `json:"team,omitempty"`
	Check    string      `json:"check"`
	Expected string      `json:"expected"`
	Actual   string      `json:"actual"`
}

func (v Violation) String() string {
	if v.Team == "" {
		return fmt.Sprintf("%s: expected %s, got %s", v.Check, v.Expected, v.Actual)
	}
	return fmt.Sprintf("%s %s: expected %s, got %s", v.Team, v.Check, v.Expected, v.Actual)
}

// InvariantViolation carries every failed check from one verification run.
type InvariantViolation struct {
	Violations []Violation
}

func (e *InvariantViolation) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%d invariant violation(s): %s", len(e.Violations), strings.Join(parts, "; "))
}

// Result collects violations across checks.
type Result struct {
	Violations []Violation `json:"violations"`
}

func (r Result) OK() bool { return len(r.Violations) == 0 }

// Err returns an *InvariantViolation, or nil when every check passed.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &InvariantViolation{Violations: r.Violations}
}

type collector struct {
	out []Violation
}

func (c *collector) ints(team game.TeamID, check string, expected, actual int) {
	if expected != actual {
		c.out = append(c.out, Violation{Team: team, Check: check, Expected: fmt.Sprint(expected), Actual: fmt.Sprint(actual)})
	}
}

func (c *collector) floats(team game.TeamID, check string, expected, actual, eps float64) {
	if math.Abs(expected-actual) >= eps {
		c.out = append(c.out, Violation{
			Team:     team,
			Check:    check,
			Expected: fmt.Sprintf("%.3f", expected),
			Actual:   fmt.Sprintf("%.3f", actual),
		})
	}
}

// Standings checks stored report rows: venue splits add up, win percentage
// and games behind match their formulas, ranks run 1..n and rows are
// ordered by win percentage with the leader on top.
func Standings(rows []report.StandingRow, eps float64) []Violation {
	var c collector
	if len(rows) == 0 {
		return nil
	}
	leader := asStanding(rows[0])
	for i, row := range rows {
		s := asStanding(row)
		c.ints(row.Team, "rank", i+1, row.Rank)
		if i > 0 && standings.ComparePct(asStanding(rows[i-1]), s) < 0 {
			c.out = append(c.out, Violation{Team: row.Team, Check: "rank order by win_pct",
				Expected: fmt.Sprintf("<= %s", report.FormatPct(asStanding(rows[i-1]).WinPct())),
				Actual:   report.FormatPct(s.WinPct())})
		}
		if standings.ComparePct(s, leader) > 0 {
			c.out = append(c.out, Violation{Team: leader.Team, Check: "leader has best win_pct",
				Expected: string(row.Team), Actual: string(leader.Team)})
		}
		c.ints(row.Team, "home_wins+away_wins=wins", row.Wins, row.HomeWins+row.AwayWins)
		c.ints(row.Team, "home_losses+away_losses=losses", row.Losses, row.HomeLosses+row.AwayLosses)
		c.ints(row.Team, "home_draws+away_draws=draws", row.Draws, row.HomeDraws+row.AwayDraws)
		c.ints(row.Team, "home_games+away_games=games", row.Games, s.HomeGames()+s.AwayGames())
		c.ints(row.Team, "wins+losses+draws=games", row.Games, row.Wins+row.Losses+row.Draws)
		c.floats(row.Team, "win_pct", s.WinPct(), row.WinPct, eps)
		c.floats(row.Team, "games_behind", standings.GamesBehind(leader, s), row.GamesBehind, eps)
		if row.WinPct < 0 || row.WinPct > 1 {
			c.out = append(c.out, Violation{Team: row.Team, Check: "win_pct in [0,1]", Expected: "[0,1]", Actual: fmt.Sprintf("%.3f", row.WinPct)})
		}
	}
	return c.out
}

func asStanding(r report.StandingRow) standings.Standing {
	return standings.Standing{
		Team:       r.Team,
		Games:      r.Games,
		Wins:       r.Wins,
		Losses:     r.Losses,
		Draws:      r.Draws,
		HomeWins:   r.HomeWins,
		HomeLosses: r.HomeLosses,
		HomeDraws:  r.HomeDraws,
		AwayWins:   r.AwayWins,
		AwayLosses: r.AwayLosses,
		AwayDraws:  r.AwayDraws,
	}
}

// Conservation checks league-wide totals: every win has a matching loss,
// draws come in pairs, each game is counted twice, and season series are
// mirror images of each other.
func Conservation(t *standings.Table) []Violation {
	var c collector
	var wins, losses, draws, played int
	for _, s := range t.Standings {
		wins += s.Wins
		losses += s.Losses
		draws += s.Draws
		played += s.Games
	}
	c.ints("", "sum(wins)=sum(losses)", wins, losses)
	c.ints("", "sum(draws) even", 0, draws%2)
	c.ints("", "sum(games)=2*games", 2*t.GameCount, played)

	for a, row := range t.HeadToHead {
		for b, rec := range row {
			mirror := t.HeadToHead.Get(b, a)
			c.ints(a, fmt.Sprintf("series vs %s wins mirror losses", b), rec.Wins, mirror.Losses)
			c.ints(a, fmt.Sprintf("series vs %s draws mirror", b), rec.Draws, mirror.Draws)
		}
	}
	return c.out
}

// Schedule flags any season series that has run past perOpponent meetings.
func Schedule(t *standings.Table, perOpponent int) []Violation {
	if perOpponent <= 0 {
		return nil
	}
	var c collector
	for a, row := range t.HeadToHead {
		for b, rec := range row {
			if rec.Played() > perOpponent {
				c.ints(a, fmt.Sprintf("games vs %s <= %d", b, perOpponent), perOpponent, rec.Played())
			}
		}
	}
	return c.out
}

// Magic re-derives every stored magic number from its recorded target.
func Magic(rows []report.MagicRow, contenders []magic.Contender) []Violation {
	var c collector
	byTeam := make(map[game.TeamID]magic.Contender, len(contenders))
	for _, ct := range contenders {
		byTeam[ct.Team] = ct
	}
	for _, row := range rows {
		self, ok := byTeam[row.Team]
		if !ok {
			c.out = append(c.out, Violation{Team: row.Team, Check: "contender present", Expected: "present", Actual: "missing"})
			continue
		}
		if self.Remaining < 0 {
			c.ints(row.Team, "remaining >= 0", 0, self.Remaining)
		}
		c.ints(row.Team, "max_wins=wins+remaining", self.Ceiling(), row.MaxWins)
		checkEntry(&c, row.Team, "playoff_magic", self, row.PlayoffTarget, row.PlayoffMagic, byTeam)
		checkEntry(&c, row.Team, "championship_magic", self, row.ChampionshipTarget, row.ChampionshipMagic, byTeam)
	}
	return c.out
}

func checkEntry(c *collector, team game.TeamID, check string, self magic.Contender, target game.TeamID, stored magic.Number, byTeam map[game.TeamID]magic.Contender) {
	if target == "" {
		c.ints(team, check, 0, int(stored))
		return
	}
	t, ok := byTeam[target]
	if !ok {
		c.out = append(c.out, Violation{Team: team, Check: check + " target", Expected: "known team", Actual: string(target)})
		return
	}
	c.ints(team, check, int(magic.Versus(self, t)), int(stored))
}

// Bundle runs every check against a built report bundle.
func Bundle(b *report.Bundle, eps float64) Result {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	var out []Violation
	out = append(out, Standings(b.Standings.Rows, eps)...)
	out = append(out, Conservation(b.Table)...)
	out = append(out, Schedule(b.Table, b.Rules.GamesPerOpponent)...)
	out = append(out, Magic(b.MagicNums.Rows, b.Contenders)...)
	return Result{Violations: out}
}
