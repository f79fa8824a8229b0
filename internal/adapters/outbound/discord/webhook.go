package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charleschow/pennant-race/internal/core/magic"
	"github.com/charleschow/pennant-race/internal/events"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// SendText posts a plain message.
func (n *Notifier) SendText(ctx context.Context, msg string) error {
	return n.send(ctx, webhookPayload{Content: msg})
}

func (n *Notifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		telemetry.Warnf("discord: rate limited")
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}

	return nil
}

// --- Convenience methods for common alert types ---

const (
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorYellow = 0xF1C40F
	ColorBlue   = 0x3498DB
)

func kindLabel(kind string) string {
	switch kind {
	case events.KindChampionship:
		return "regular-season title"
	case events.KindPlayoff:
		return "postseason berth"
	}
	return kind
}

func (n *Notifier) Clinched(ctx context.Context, league, team, kind, asOf string) error {
	return n.SendEmbed(ctx, Embed{
		Title:       fmt.Sprintf("Clinched: %s", team),
		Description: fmt.Sprintf("%s has clinched the %s.", team, kindLabel(kind)),
		Color:       ColorGreen,
		Fields: []Field{
			{Name: "League", Value: league, Inline: true},
			{Name: "As of", Value: asOf, Inline: true},
		},
	})
}

func (n *Notifier) Eliminated(ctx context.Context, league, team, kind, asOf string) error {
	return n.SendEmbed(ctx, Embed{
		Title:       fmt.Sprintf("Eliminated: %s", team),
		Description: fmt.Sprintf("%s can no longer reach the %s.", team, kindLabel(kind)),
		Color:       ColorRed,
		Fields: []Field{
			{Name: "League", Value: league, Inline: true},
			{Name: "As of", Value: asOf, Inline: true},
		},
	})
}

// HandleStatusChange is an events.Handler that alerts on clinches and
// eliminations. Other transitions are ignored.
func (n *Notifier) HandleStatusChange(evt events.Event) error {
	sc, ok := evt.Payload.(events.StatusChangeEvent)
	if !ok || !n.Enabled() {
		return nil
	}
	name := sc.Name
	if name == "" {
		name = sc.Team
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch sc.To {
	case magic.StatusClinched:
		err = n.Clinched(ctx, sc.League, name, sc.Kind, sc.AsOf)
	case magic.StatusEliminated:
		err = n.Eliminated(ctx, sc.League, name, sc.Kind, sc.AsOf)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	telemetry.Metrics.AlertsSent.Inc()
	telemetry.Infof("discord: %s %s %s (%s)", sc.League, name, sc.To, sc.Kind)
	return nil
}
