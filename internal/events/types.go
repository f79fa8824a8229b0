package events

import (
	"github.com/charleschow/pennant-race/internal/core/magic"
	"github.com/charleschow/pennant-race/internal/core/report"
)

// GamesIngestedEvent is published after a batch of games reaches the store.
type GamesIngestedEvent struct {
	League   string `json:"league"`
	Source   string `json:"source"`
	Inserted int    `json:"inserted"`
	Rejected int    `json:"rejected"`
	Skipped  int    `json:"skipped"`
}

// ReportUpdatedEvent carries the freshly built reports to dashboards.
type ReportUpdatedEvent struct {
	League    string                 `json:"league"`
	AsOf      string                 `json:"as_of"`
	Games     int                    `json:"games"`
	Standings report.StandingsReport `json:"standings"`
	Magic     report.MagicReport     `json:"magic"`
}

// Cutoff kinds reported in StatusChangeEvent.
const (
	KindPlayoff      = "playoff"
	KindChampionship = "championship"
)

// StatusChangeEvent is published when a team's status for a cutoff moves.
type StatusChangeEvent struct {
	League string       `json:"league"`
	Team   string       `json:"team"`
	Name   string       `json:"name"`
	Kind   string       `json:"kind"`
	From   magic.Status `json:"from"`
	To     magic.Status `json:"to"`
	AsOf   string       `json:"as_of"`
}
