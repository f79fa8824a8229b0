package fanout

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/pennant-race/internal/events"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

const (
	clientSendBuf = 256
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type leagueClient struct {
	league string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
}

// Server fans out bus events to dashboard WebSocket clients. Each client
// watches one league.
type Server struct {
	mu      sync.Mutex
	clients map[*leagueClient]struct{}
	known   func(league string) bool
}

// NewServer subscribes to the bus. known reports whether a league is
// configured; nil accepts any league.
func NewServer(bus *events.Bus, known func(string) bool) *Server {
	s := &Server{
		clients: make(map[*leagueClient]struct{}),
		known:   known,
	}
	bus.Subscribe(events.EventReportUpdated, s.forward)
	bus.Subscribe(events.EventStatusChange, s.forward)
	bus.Subscribe(events.EventGamesIngested, s.forward)
	return s
}

// forward is called on the publisher's goroutine. It serializes the event
// and enqueues it to matching clients' send channels (non-blocking).
func (s *Server) forward(evt events.Event) error {
	data, err := MarshalEvent(evt)
	if err != nil {
		telemetry.Warnf("fanout: marshal error: %v", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		if c.league != evt.League {
			continue
		}
		select {
		case c.send <- data:
		default:
			telemetry.Metrics.FanoutDropped.Inc()
			telemetry.Warnf("fanout: dropping message for slow client league=%s", c.league)
		}
	}
	return nil
}

// ClientCount returns the number of connected dashboards.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// HandleWS is the HTTP handler for WebSocket upgrade requests.
// Dashboards connect with ?league=kbo.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	league := r.URL.Query().Get("league")
	if league == "" {
		http.Error(w, "missing ?league= query param", http.StatusBadRequest)
		return
	}
	if s.known != nil && !s.known(league) {
		http.Error(w, "unknown league "+league, http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}

	c := &leagueClient{
		league: league,
		conn:   conn,
		send:   make(chan []byte, clientSendBuf),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	telemetry.Metrics.FanoutClients.Inc()

	telemetry.Plainf("Fanout: Client Connected [%s]", league)

	go s.writePump(c)
	go s.readPump(c)
}

// writePump drains the client's send channel and writes to the WS connection.
// It owns the client lifecycle: on exit it removes the client from the map
// (so forward never sends to a stale channel) and closes the connection.
func (s *Server) writePump(c *leagueClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error league=%s: %v", c.league, err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive by reading pongs and close frames.
// Dashboards send nothing upstream. On exit it signals writePump via c.done
// (never closes c.send).
func (s *Server) readPump(c *leagueClient) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *leagueClient) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	telemetry.Metrics.FanoutClients.Dec()
	telemetry.Plainf("Fanout: Client Disconnected [%s]", c.league)
}
