package magic

import (
	"fmt"
	"sort"

	"github.com/charleschow/pennant-race/internal/core/game"
)

// Status buckets a team's position relative to a cutoff.
type Status string

const (
	StatusClinched    Status = "clinched"
	StatusMagic       Status = "magic"       // within closeMagic wins
	StatusCompetitive Status = "competitive" // magic at most half of remaining
	StatusTragic      Status = "tragic"      // alive but needs help
	StatusEliminated  Status = "eliminated"
)

const closeMagic = 5

// Entry is one team's magic number for finishing in the top Cutoff.
type Entry struct {
	Team   game.TeamID `json:"team"`
	Cutoff int         `json:"cutoff"`
	// Target is the rival whose ceiling must be cleared; empty when the
	// cutoff admits every other team.
	Target game.TeamID `json:"target,omitempty"`
	Magic  Number      `json:"magic"`
	// Tragic is the combined count of own losses and rival wins that ends
	// the team's chances. Zero means mathematically out.
	Tragic int    `json:"tragic"`
	Status Status `json:"status"`
}

// ForCutoff computes team's magic number for a top-n finish by final win
// count. The target is the other team with the n-th highest ceiling: once
// the team's wins exceed it, at most n-1 rivals can finish level or ahead.
// contenders should be in rank order; it breaks ceiling ties.
func ForCutoff(contenders []Contender, team game.TeamID, n int) (Entry, error) {
	if n < 1 {
		return Entry{}, fmt.Errorf("cutoff must be at least 1, got %d", n)
	}
	var self Contender
	found := false
	others := make([]Contender, 0, len(contenders))
	for _, c := range contenders {
		if err := c.validate(); err != nil {
			return Entry{}, err
		}
		if c.Team == team {
			self, found = c, true
			continue
		}
		others = append(others, c)
	}
	if !found {
		return Entry{}, &game.UnknownTeamError{Team: team}
	}

	e := Entry{Team: team, Cutoff: n}
	if len(others) < n {
		e.Status = StatusClinched
		return e, nil
	}

	byCeiling := append([]Contender(nil), others...)
	sort.SliceStable(byCeiling, func(i, j int) bool { return byCeiling[i].Ceiling() > byCeiling[j].Ceiling() })
	target := byCeiling[n-1]
	e.Target = target.Team
	e.Magic = Versus(self, target)

	byWins := append([]Contender(nil), others...)
	sort.SliceStable(byWins, func(i, j int) bool { return byWins[i].Wins > byWins[j].Wins })
	if t := self.Ceiling() - byWins[n-1].Wins + 1; t > 0 {
		e.Tragic = t
	}

	e.Status = classify(e, self.Remaining)
	return e, nil
}

func classify(e Entry, remaining int) Status {
	switch {
	case e.Magic.IsClinched():
		return StatusClinched
	case e.Tragic == 0:
		return StatusEliminated
	case e.Magic.IsEliminated():
		return StatusTragic
	case e.Magic <= closeMagic:
		return StatusMagic
	case int(e.Magic)*2 <= remaining:
		return StatusCompetitive
	}
	return StatusTragic
}

// Rules names the cutoffs reported for every team besides first place.
type Rules struct {
	PlayoffSpots int
	HomeField    int // top-n that hosts the first playoff round; 0 disables
}

// TeamMagic is every cutoff computed for one team.
type TeamMagic struct {
	Team         game.TeamID `json:"team"`
	Remaining    int         `json:"remaining"`
	MaxWins      int         `json:"max_wins"`
	Playoff      Entry       `json:"playoff"`
	Championship Entry       `json:"championship"`
	HomeField    *Entry      `json:"home_field,omitempty"`
}

// Report is the calculator output in contender order.
type Report struct {
	Rules Rules       `json:"rules"`
	Teams []TeamMagic `json:"teams"`
}

// Get returns a team's row.
func (r Report) Get(team game.TeamID) (TeamMagic, bool) {
	for _, tm := range r.Teams {
		if tm.Team == team {
			return tm, true
		}
	}
	return TeamMagic{}, false
}

// Calculate validates every contender before computing anything, so a
// single inconsistent schedule fails the whole report.
func Calculate(contenders []Contender, rules Rules) (Report, error) {
	for _, c := range contenders {
		if err := c.validate(); err != nil {
			return Report{}, err
		}
	}
	if rules.PlayoffSpots < 1 {
		return Report{}, fmt.Errorf("playoff spots must be at least 1, got %d", rules.PlayoffSpots)
	}

	rep := Report{Rules: rules, Teams: make([]TeamMagic, 0, len(contenders))}
	for _, c := range contenders {
		tm := TeamMagic{Team: c.Team, Remaining: c.Remaining, MaxWins: c.Ceiling()}
		var err error
		if tm.Playoff, err = ForCutoff(contenders, c.Team, rules.PlayoffSpots); err != nil {
			return Report{}, err
		}
		if tm.Championship, err = ForCutoff(contenders, c.Team, 1); err != nil {
			return Report{}, err
		}
		if rules.HomeField > 0 {
			hf, err := ForCutoff(contenders, c.Team, rules.HomeField)
			if err != nil {
				return Report{}, err
			}
			tm.HomeField = &hf
		}
		rep.Teams = append(rep.Teams, tm)
	}
	return rep, nil
}

// Matrix gives, per team, the entry for finishing in the top n for every
// n from 1 to len(contenders)-1.
func Matrix(contenders []Contender) (map[game.TeamID][]Entry, error) {
	out := make(map[game.TeamID][]Entry, len(contenders))
	for _, c := range contenders {
		row := make([]Entry, 0, len(contenders)-1)
		for n := 1; n < len(contenders); n++ {
			e, err := ForCutoff(contenders, c.Team, n)
			if err != nil {
				return nil, err
			}
			row = append(row, e)
		}
		out[c.Team] = row
	}
	return out, nil
}
