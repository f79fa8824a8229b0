package fanout

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/pennant-race/internal/events"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 30 * time.Second
)

// Client follows one league on a fanout server and republishes received
// events onto a local in-process bus.
type Client struct {
	addr   string
	league string
	bus    *events.Bus
}

func NewClient(addr, league string, bus *events.Bus) *Client {
	return &Client{
		addr:   addr,
		league: league,
		bus:    bus,
	}
}

// ConnectWithRetry connects to the fanout server and reconnects on failure
// with exponential backoff. Blocks until ctx is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connStart := time.Now()
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(connStart) > time.Minute {
			attempt = 0
		}

		attempt++
		backoff := time.Duration(float64(minBackoff) * math.Pow(2, float64(min(attempt-1, 5))))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		if err != nil {
			telemetry.Warnf("fanout: connection lost (attempt %d): %v; retrying in %s", attempt, err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.addr, Path: "/ws", RawQuery: url.Values{"league": {c.league}}.Encode()}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	telemetry.Infof("fanout: connected to %s as league=%s", c.addr, c.league)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		evt, err := UnmarshalEvent(msg)
		if err != nil {
			telemetry.Warnf("fanout: unmarshal error: %v", err)
			continue
		}

		c.bus.Publish(evt)
	}
}
