package game

import (
	"errors"
	"fmt"
)

// ErrNotInvolved is returned when a team-perspective query is made against
// a game the team did not play in.
var ErrNotInvolved = errors.New("team did not play in game")

// ErrNoDate is returned by Validate for a game without a date.
var ErrNoDate = errors.New("game has no date")

// UnknownTeamError reports a team identifier that is not on the roster.
// Side is "away" or "home" when the identifier was missing altogether.
type UnknownTeamError struct {
	Team TeamID
	Side string
}

func (e *UnknownTeamError) Error() string {
	if e.Team == "" && e.Side != "" {
		return fmt.Sprintf("missing %s team", e.Side)
	}
	return fmt.Sprintf("unknown team %q", string(e.Team))
}

// MalformedScoreError reports a score that is negative or not an integer.
// Raw carries the source text when the score came from an adapter.
type MalformedScoreError struct {
	Raw   string
	Value int
}

func (e *MalformedScoreError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("malformed score %q", e.Raw)
	}
	return fmt.Sprintf("malformed score %d", e.Value)
}

// SelfPlayError reports a game whose home and away team are the same.
type SelfPlayError struct {
	Team TeamID
}

func (e *SelfPlayError) Error() string {
	return fmt.Sprintf("team %q cannot play itself", string(e.Team))
}
