package game

import "sort"

// Season is an append-only, chronologically ordered list of completed games.
// Games sharing a date keep their source order.
type Season []Game

// SortChronological orders games by date, keeping source order within a day.
func SortChronological(games []Game) Season {
	out := make(Season, len(games))
	copy(out, games)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ForTeam returns the sub-sequence of games t played in, in season order.
func (s Season) ForTeam(t TeamID) []Game {
	var out []Game
	for _, g := range s {
		if g.Involves(t) {
			out = append(out, g)
		}
	}
	return out
}

// Last returns the most recent game, or false for an empty season.
func (s Season) Last() (Game, bool) {
	if len(s) == 0 {
		return Game{}, false
	}
	return s[len(s)-1], true
}
