package events

import "time"

// Event is the envelope that flows through the event bus.
// Every domain event (games stored, reports rebuilt, a clinch) is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	League    string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// New games were written to the store.
	EventGamesIngested EventType = "games_ingested"
	// Standings, form and magic numbers were recomputed.
	EventReportUpdated EventType = "report_updated"
	// A team crossed into clinched or eliminated for some cutoff.
	EventStatusChange EventType = "status_change"
)
