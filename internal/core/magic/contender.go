package magic

import (
	"fmt"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/standings"
)

// ScheduleInconsistencyError reports a team that has played more games than
// its schedule allows.
type ScheduleInconsistencyError struct {
	Team      game.TeamID
	Schedule  int
	Played    int
	Remaining int
}

func (e *ScheduleInconsistencyError) Error() string {
	if e.Schedule > 0 {
		return fmt.Sprintf("team %s: %d games played exceeds schedule of %d", e.Team, e.Played, e.Schedule)
	}
	return fmt.Sprintf("team %s: negative remaining games %d", e.Team, e.Remaining)
}

// Contender is the minimal input for magic-number arithmetic.
type Contender struct {
	Team      game.TeamID `json:"team"`
	Wins      int         `json:"wins"`
	Losses    int         `json:"losses"`
	Draws     int         `json:"draws"`
	Remaining int         `json:"remaining"`
}

// Ceiling is the final win total if the team wins out.
func (c Contender) Ceiling() int { return c.Wins + c.Remaining }

func (c Contender) validate() error {
	if c.Remaining < 0 {
		return &ScheduleInconsistencyError{Team: c.Team, Remaining: c.Remaining}
	}
	return nil
}

// Remaining is schedule - wins - losses - draws. Draws are games played.
func Remaining(schedule int, s standings.Standing) (int, error) {
	played := s.Wins + s.Losses + s.Draws
	left := schedule - played
	if left < 0 {
		return 0, &ScheduleInconsistencyError{Team: s.Team, Schedule: schedule, Played: played, Remaining: left}
	}
	return left, nil
}

// Contenders builds calculator input from a standings table, in rank order.
func Contenders(table *standings.Table, schedule int) ([]Contender, error) {
	out := make([]Contender, 0, len(table.Ranking))
	for _, row := range table.Ranking {
		left, err := Remaining(schedule, row.Standing)
		if err != nil {
			return nil, err
		}
		out = append(out, Contender{
			Team:      row.Team,
			Wins:      row.Wins,
			Losses:    row.Losses,
			Draws:     row.Draws,
			Remaining: left,
		})
	}
	return out, nil
}
