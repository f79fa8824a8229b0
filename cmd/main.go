package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charleschow/pennant-race/internal/adapters/outbound/daum"
	"github.com/charleschow/pennant-race/internal/adapters/outbound/discord"
	"github.com/charleschow/pennant-race/internal/api"
	"github.com/charleschow/pennant-race/internal/config"
	"github.com/charleschow/pennant-race/internal/events"
	"github.com/charleschow/pennant-race/internal/fanout"
	"github.com/charleschow/pennant-race/internal/process"
	"github.com/charleschow/pennant-race/internal/store"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting pennant-race  season=%d", cfg.SeasonYear)

	bus := events.NewBus()

	// ── Leagues ─────────────────────────────────────────────────
	leagues, err := config.LoadLeagues(cfg.LeaguesPath)
	if err != nil {
		telemetry.Errorf("Failed to load leagues: %v", err)
		os.Exit(1)
	}

	// ── Store ───────────────────────────────────────────────────
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("Store: %v", err)
		os.Exit(1)
	}

	// ── Schedule scraper ────────────────────────────────────────
	var source process.Source
	if cfg.ScrapeEnabled {
		source = daum.NewClient(cfg.ScrapeBaseURL, cfg.ScrapeRPS)
		telemetry.Infof("Scraper enabled  base=%s  every=%s", cfg.ScrapeBaseURL, cfg.ScrapeInterval)
	} else {
		telemetry.Infof("Scraper disabled; ingest via POST /api/v1/leagues/{league}/games")
	}

	// ── League processes ────────────────────────────────────────
	var procs []*process.SeasonProcess
	for _, key := range leagues.Keys() {
		def, _ := leagues.League(key)
		procs = append(procs, process.New(key, def, db, bus, process.Options{
			Year:     cfg.SeasonYear,
			Interval: cfg.ScrapeInterval,
			Source:   source,
		}))
		telemetry.Infof("League %s  teams=%d  games=%d  playoff_spots=%d", key, len(def.Teams), def.SeasonGames, def.PlayoffSpots)
	}

	// ── Alerts ──────────────────────────────────────────────────
	notifier := discord.NewNotifier(cfg.DiscordWebhookURL)
	if notifier.Enabled() {
		bus.Subscribe(events.EventStatusChange, notifier.HandleStatusChange)
		telemetry.Infof("Discord alerts enabled")
	}

	// ── HTTP API + fanout ───────────────────────────────────────
	fan := fanout.NewServer(bus, func(league string) bool {
		_, ok := leagues.League(league)
		return ok
	})
	srv := api.NewServer(procs, db, fan)

	addr := fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("API listening on %q", addr)

	// ── Refresh loops ───────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, p := range procs {
		wg.Add(1)
		go func(p *process.SeasonProcess) {
			defer wg.Done()
			p.Run(ctx)
		}(p)
	}

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
	wg.Wait()
	db.Close()

	telemetry.Infof("Shutdown complete  ingested=%d  rejected=%d  recomputes=%d  scrapes=%d  alerts=%d",
		telemetry.Metrics.GamesIngested.Value(),
		telemetry.Metrics.GamesRejected.Value(),
		telemetry.Metrics.Recomputes.Value(),
		telemetry.Metrics.ScrapeRequests.Value(),
		telemetry.Metrics.AlertsSent.Value(),
	)
}
