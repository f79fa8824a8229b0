package standings

import "github.com/charleschow/pennant-race/internal/core/game"

// Record is one team's record against a single opponent, split by venue.
type Record struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Draws      int `json:"draws"`
	HomeWins   int `json:"home_wins"`
	HomeLosses int `json:"home_losses"`
	HomeDraws  int `json:"home_draws"`
	AwayWins   int `json:"away_wins"`
	AwayLosses int `json:"away_losses"`
	AwayDraws  int `json:"away_draws"`
}

func (r Record) Played() int     { return r.Wins + r.Losses + r.Draws }
func (r Record) WinPct() float64 { return winPct(r.Wins, r.Losses) }
func (r Record) String() string  { return FormatRecord(r.Wins, r.Losses, r.Draws) }

func (r *Record) add(res game.Result, home bool) {
	switch res {
	case game.Win:
		r.Wins++
		if home {
			r.HomeWins++
		} else {
			r.AwayWins++
		}
	case game.Loss:
		r.Losses++
		if home {
			r.HomeLosses++
		} else {
			r.AwayLosses++
		}
	case game.Draw:
		r.Draws++
		if home {
			r.HomeDraws++
		} else {
			r.AwayDraws++
		}
	}
}

// HeadToHead is the season series matrix: team -> opponent -> record.
type HeadToHead map[game.TeamID]map[game.TeamID]Record

func newHeadToHead(teams []game.TeamID) HeadToHead {
	h := make(HeadToHead, len(teams))
	for _, a := range teams {
		row := make(map[game.TeamID]Record, len(teams)-1)
		for _, b := range teams {
			if a != b {
				row[b] = Record{}
			}
		}
		h[a] = row
	}
	return h
}

func (h HeadToHead) record(g game.Game) {
	for _, side := range []game.TeamID{g.HomeTeam, g.AwayTeam} {
		opp, _ := g.Opponent(side)
		res, _ := g.ResultFor(side)
		rec := h[side][opp]
		rec.add(res, g.IsHome(side))
		h[side][opp] = rec
	}
}

// Get returns a's record against b.
func (h HeadToHead) Get(a, b game.TeamID) Record {
	return h[a][b]
}

// Remaining is how many games a and b still have to play each other under a
// balanced schedule of perOpponent meetings. Never negative; an overplayed
// series is reported by the consistency verifier.
func (h HeadToHead) Remaining(a, b game.TeamID, perOpponent int) int {
	left := perOpponent - h.Get(a, b).Played()
	if left < 0 {
		return 0
	}
	return left
}

// within sums a's record against every other member of group.
func (h HeadToHead) within(a game.TeamID, group []game.TeamID) Record {
	var total Record
	for _, b := range group {
		if b == a {
			continue
		}
		r := h.Get(a, b)
		total.Wins += r.Wins
		total.Losses += r.Losses
		total.Draws += r.Draws
	}
	return total
}
