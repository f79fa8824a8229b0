package standings

import (
	"fmt"
	"sort"

	"github.com/charleschow/pennant-race/internal/core/game"
)

// Row is a ranked standing.
type Row struct {
	Rank        int     `json:"rank"`
	GamesBehind float64 `json:"games_behind"`
	Standing
}

// Table is the immutable result of one aggregation pass.
type Table struct {
	Standings  map[game.TeamID]Standing
	Ranking    []Row
	HeadToHead HeadToHead
	GameCount  int
}

// Compute folds games in order into per-team standings. Every roster team
// gets a row even with zero games. The first game naming an unknown team or
// carrying a bad score aborts the fold.
func Compute(roster *game.Roster, games []game.Game) (*Table, error) {
	teams := roster.Teams()
	st := make(map[game.TeamID]*Standing, len(teams))
	for _, id := range teams {
		st[id] = &Standing{Team: id}
	}
	h2h := newHeadToHead(teams)

	for i, g := range games {
		if err := roster.CheckGame(g); err != nil {
			return nil, fmt.Errorf("game %d (%s %s@%s): %w", i, g.Date.Format(game.DateLayout), g.AwayTeam, g.HomeTeam, err)
		}
		if err := st[g.HomeTeam].apply(g); err != nil {
			return nil, err
		}
		if err := st[g.AwayTeam].apply(g); err != nil {
			return nil, err
		}
		h2h.record(g)
	}

	out := make(map[game.TeamID]Standing, len(st))
	for id, s := range st {
		out[id] = *s
	}
	return &Table{
		Standings:  out,
		Ranking:    Rank(out, h2h),
		HeadToHead: h2h,
		GameCount:  len(games),
	}, nil
}

// Get returns the standing for id and whether the team is in the table.
func (t *Table) Get(id game.TeamID) (Standing, bool) {
	s, ok := t.Standings[id]
	return s, ok
}

// Leader returns the first-ranked team.
func (t *Table) Leader() (Row, bool) {
	if len(t.Ranking) == 0 {
		return Row{}, false
	}
	return t.Ranking[0], true
}

// RankOf returns the 1-based rank of id, or 0 when absent.
func (t *Table) RankOf(id game.TeamID) int {
	for _, r := range t.Ranking {
		if r.Team == id {
			return r.Rank
		}
	}
	return 0
}

// Rank orders teams by win percentage. Teams level on percentage are split
// by their combined head-to-head percentage against each other, then run
// differential, then wins, then team ID.
func Rank(st map[game.TeamID]Standing, h2h HeadToHead) []Row {
	list := make([]Standing, 0, len(st))
	for _, s := range st {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if c := comparePct(list[i].Wins, list[i].Losses, list[j].Wins, list[j].Losses); c != 0 {
			return c > 0
		}
		return list[i].Team < list[j].Team
	})

	for start := 0; start < len(list); {
		end := start + 1
		for end < len(list) && comparePct(list[start].Wins, list[start].Losses, list[end].Wins, list[end].Losses) == 0 {
			end++
		}
		if end-start > 1 {
			breakTie(list[start:end], h2h)
		}
		start = end
	}

	rows := make([]Row, len(list))
	for i, s := range list {
		rows[i] = Row{Rank: i + 1, Standing: s}
		if i > 0 {
			rows[i].GamesBehind = GamesBehind(list[0], s)
		}
	}
	return rows
}

func breakTie(group []Standing, h2h HeadToHead) {
	ids := make([]game.TeamID, len(group))
	for i, s := range group {
		ids[i] = s.Team
	}
	vs := make(map[game.TeamID]Record, len(group))
	for _, id := range ids {
		vs[id] = h2h.within(id, ids)
	}
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		ra, rb := vs[a.Team], vs[b.Team]
		if c := comparePct(ra.Wins, ra.Losses, rb.Wins, rb.Losses); c != 0 {
			return c > 0
		}
		if a.RunDiff() != b.RunDiff() {
			return a.RunDiff() > b.RunDiff()
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Team < b.Team
	})
}

// comparePct compares w1/(w1+l1) with w2/(w2+l2) exactly. Zero decisions
// count as 0.
func comparePct(w1, l1, w2, l2 int) int {
	n1, d1 := w1, w1+l1
	n2, d2 := w2, w2+l2
	if d1 == 0 {
		n1, d1 = 0, 1
	}
	if d2 == 0 {
		n2, d2 = 0, 1
	}
	lhs, rhs := n1*d2, n2*d1
	switch {
	case lhs > rhs:
		return 1
	case lhs < rhs:
		return -1
	}
	return 0
}
