package game

import (
	"sort"

	"github.com/charleschow/pennant-race/internal/core/team"
)

// Member is one club on a roster.
type Member struct {
	ID      TeamID
	Name    string
	Aliases []string
}

// Roster is the enumerated set of clubs for one league-season. It is built
// from configuration and passed explicitly to every computation.
type Roster struct {
	members []Member
	index   map[TeamID]int
	aliases team.Aliases
}

// NewRoster builds a roster preserving the configured order. Duplicate IDs
// keep their first occurrence.
func NewRoster(members ...Member) *Roster {
	r := &Roster{
		index:   make(map[TeamID]int, len(members)),
		aliases: make(team.Aliases),
	}
	for _, m := range members {
		if m.ID == "" {
			continue
		}
		if _, dup := r.index[m.ID]; dup {
			continue
		}
		r.index[m.ID] = len(r.members)
		r.members = append(r.members, m)
	}
	for _, m := range r.members {
		for _, a := range m.Aliases {
			r.aliases.Add(a, string(m.ID))
		}
		if m.Name != "" {
			r.aliases.Add(m.Name, string(m.ID))
		}
	}
	// IDs go in last so an alias never shadows a real ID.
	for _, m := range r.members {
		r.aliases.Add(string(m.ID), string(m.ID))
	}
	return r
}

// RosterOf is shorthand for a roster of bare IDs.
func RosterOf(ids ...TeamID) *Roster {
	members := make([]Member, len(ids))
	for i, id := range ids {
		members[i] = Member{ID: id}
	}
	return NewRoster(members...)
}

func (r *Roster) Len() int { return len(r.members) }

func (r *Roster) Contains(id TeamID) bool {
	_, ok := r.index[id]
	return ok
}

// Teams returns team IDs in configured order.
func (r *Roster) Teams() []TeamID {
	out := make([]TeamID, len(r.members))
	for i, m := range r.members {
		out[i] = m.ID
	}
	return out
}

// Sorted returns team IDs in lexical order.
func (r *Roster) Sorted() []TeamID {
	out := r.Teams()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Roster) Member(id TeamID) (Member, bool) {
	i, ok := r.index[id]
	if !ok {
		return Member{}, false
	}
	return r.members[i], true
}

// Name returns the display name, falling back to the ID.
func (r *Roster) Name(id TeamID) string {
	if m, ok := r.Member(id); ok && m.Name != "" {
		return m.Name
	}
	return string(id)
}

// Resolve maps a raw source spelling to a roster ID.
func (r *Roster) Resolve(name string) (TeamID, error) {
	if id, ok := r.aliases.Lookup(name); ok {
		return TeamID(id), nil
	}
	return "", &UnknownTeamError{Team: TeamID(name)}
}

// CheckGame verifies both participants are on the roster and the game is
// well formed.
func (r *Roster) CheckGame(g Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if !r.Contains(g.AwayTeam) {
		return &UnknownTeamError{Team: g.AwayTeam}
	}
	if !r.Contains(g.HomeTeam) {
		return &UnknownTeamError{Team: g.HomeTeam}
	}
	return nil
}
