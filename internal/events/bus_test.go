package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DispatchOrder(t *testing.T) {
	b := NewBus()
	var calls []string
	b.Subscribe(EventReportUpdated, func(e Event) error {
		calls = append(calls, "first:"+e.League)
		return errors.New("boom")
	})
	b.Subscribe(EventReportUpdated, func(e Event) error {
		calls = append(calls, "second:"+e.League)
		return nil
	})
	b.Subscribe(EventStatusChange, func(e Event) error {
		calls = append(calls, "status")
		return nil
	})

	b.Publish(Event{Type: EventReportUpdated, League: "kbo"})
	assert.Equal(t, []string{"first:kbo", "second:kbo"}, calls, "a failing handler does not stop dispatch")

	b.Publish(Event{Type: EventGamesIngested})
	assert.Len(t, calls, 2)
}
