package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/pennant-race/internal/core/report"
	"github.com/charleschow/pennant-race/internal/events"
	"github.com/charleschow/pennant-race/internal/fanout"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

// watch follows one league on a running server and reprints the standings
// and magic table every time they are rebuilt.
func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	league := flag.String("league", "kbo", "league to follow")
	magicOnly := flag.Bool("magic", false, "print only the magic-number table")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel("info"))

	bus := events.NewBus()
	bus.Subscribe(events.EventReportUpdated, func(evt events.Event) error {
		ru, ok := evt.Payload.(events.ReportUpdatedEvent)
		if !ok {
			return nil
		}
		fmt.Print("\033[H\033[2J")
		fmt.Printf("%s  as of %s  games=%d\n\n", ru.League, ru.AsOf, ru.Games)
		if !*magicOnly {
			report.WriteStandings(os.Stdout, ru.Standings)
			fmt.Println()
		}
		return report.WriteMagic(os.Stdout, ru.Magic)
	})
	bus.Subscribe(events.EventStatusChange, func(evt events.Event) error {
		sc, ok := evt.Payload.(events.StatusChangeEvent)
		if !ok {
			return nil
		}
		telemetry.Infof("%s %s: %s -> %s (%s)", sc.Team, sc.Kind, sc.From, sc.To, sc.AsOf)
		return nil
	})
	bus.Subscribe(events.EventGamesIngested, func(evt events.Event) error {
		gi, ok := evt.Payload.(events.GamesIngestedEvent)
		if !ok {
			return nil
		}
		telemetry.Infof("ingested from %s  new=%d rejected=%d skipped=%d", gi.Source, gi.Inserted, gi.Rejected, gi.Skipped)
		return nil
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	telemetry.Infof("watching %s on %s (ctrl-c to quit)", *league, *addr)
	fanout.NewClient(*addr, *league, bus).ConnectWithRetry(ctx)
}
