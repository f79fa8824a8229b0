package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/pennant-race/internal/core/magic"
	"github.com/charleschow/pennant-race/internal/events"
)

func capture(t *testing.T, status int) (*httptest.Server, *[]webhookPayload) {
	t.Helper()
	var got []webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var p webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		got = append(got, p)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func statusEvent(to magic.Status) events.Event {
	return events.Event{
		Type:   events.EventStatusChange,
		League: "kbo",
		Payload: events.StatusChangeEvent{
			League: "kbo", Team: "LG", Name: "LG 트윈스", Kind: events.KindChampionship,
			From: magic.StatusMagic, To: to, AsOf: "2025-09-27",
		},
	}
}

func TestHandleStatusChange(t *testing.T) {
	srv, got := capture(t, http.StatusNoContent)
	n := NewNotifier(srv.URL)

	require.NoError(t, n.HandleStatusChange(statusEvent(magic.StatusClinched)))
	require.NoError(t, n.HandleStatusChange(statusEvent(magic.StatusEliminated)))
	require.NoError(t, n.HandleStatusChange(statusEvent(magic.StatusCompetitive)))

	require.Len(t, *got, 2)
	clinch := (*got)[0].Embeds[0]
	assert.Equal(t, "Clinched: LG 트윈스", clinch.Title)
	assert.Equal(t, ColorGreen, clinch.Color)
	assert.Contains(t, clinch.Description, "regular-season title")
	assert.NotEmpty(t, clinch.Timestamp)

	out := (*got)[1].Embeds[0]
	assert.Equal(t, ColorRed, out.Color)
	assert.Equal(t, "Eliminated: LG 트윈스", out.Title)
}

func TestHandleStatusChange_Errors(t *testing.T) {
	srv, _ := capture(t, http.StatusTooManyRequests)
	n := NewNotifier(srv.URL)
	assert.Error(t, n.HandleStatusChange(statusEvent(magic.StatusClinched)))

	srv500, _ := capture(t, http.StatusInternalServerError)
	assert.ErrorContains(t, NewNotifier(srv500.URL).HandleStatusChange(statusEvent(magic.StatusEliminated)), "status=500")
}

func TestDisabledNotifier(t *testing.T) {
	n := NewNotifier("")
	assert.False(t, n.Enabled())
	assert.NoError(t, n.HandleStatusChange(statusEvent(magic.StatusClinched)))
	assert.NoError(t, n.SendText(context.Background(), "hello"))
}
