package fanout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/pennant-race/internal/core/magic"
	"github.com/charleschow/pennant-race/internal/core/report"
	"github.com/charleschow/pennant-race/internal/events"
)

func onlyKBO(league string) bool { return league == "kbo" }

func newTestServer(t *testing.T) (*events.Bus, *Server, *httptest.Server) {
	t.Helper()
	bus := events.NewBus()
	s := NewServer(bus, onlyKBO)
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWS))
	t.Cleanup(srv.Close)
	return bus, s, srv
}

func wsURL(srv *httptest.Server, league string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?league=" + league
}

func reportEvent(league string) events.Event {
	return events.Event{
		ID:        "r1",
		Type:      events.EventReportUpdated,
		League:    league,
		Timestamp: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
		Payload: events.ReportUpdatedEvent{
			League: league,
			AsOf:   "2025-09-01",
			Games:  600,
			Standings: report.StandingsReport{
				League: league,
				Rows:   []report.StandingRow{{Rank: 1, Team: "LG", Wins: 80, Losses: 50}},
			},
		},
	}
}

func TestProtocol_RoundTrip(t *testing.T) {
	evt := reportEvent("kbo")
	data, err := MarshalEvent(evt)
	require.NoError(t, err)

	got, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, evt.Type, got.Type)
	assert.Equal(t, evt.League, got.League)
	assert.True(t, evt.Timestamp.Equal(got.Timestamp))
	ru, ok := got.Payload.(events.ReportUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, 80, ru.Standings.Rows[0].Wins)

	sc := events.Event{Type: events.EventStatusChange, League: "kbo", Payload: events.StatusChangeEvent{Team: "LG", To: magic.StatusClinched}}
	data, err = MarshalEvent(sc)
	require.NoError(t, err)
	got, err = UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, magic.StatusClinched, got.Payload.(events.StatusChangeEvent).To)

	_, err = UnmarshalEvent([]byte(`{"type":"mystery","payload":{}}`))
	assert.ErrorContains(t, err, "unknown event type")
	_, err = UnmarshalEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestServer_RejectsBadLeague(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "mlb"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ForwardsByLeague(t *testing.T) {
	bus, s, srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "kbo"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	bus.Publish(reportEvent("npb-central"))
	bus.Publish(reportEvent("kbo"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	evt, err := UnmarshalEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, "kbo", evt.League, "other leagues are filtered out")

	conn.Close()
	assert.Eventually(t, func() bool { return s.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_Republishes(t *testing.T) {
	serverBus, s, srv := newTestServer(t)

	localBus := events.NewBus()
	got := make(chan events.Event, 1)
	localBus.Subscribe(events.EventReportUpdated, func(e events.Event) error {
		got <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		NewClient(strings.TrimPrefix(srv.URL, "http://"), "kbo", localBus).ConnectWithRetry(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	serverBus.Publish(reportEvent("kbo"))

	select {
	case e := <-got:
		assert.Equal(t, "kbo", e.League)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
}
