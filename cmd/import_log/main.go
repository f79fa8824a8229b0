package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charleschow/pennant-race/internal/adapters/inbound/seasonlog"
	"github.com/charleschow/pennant-race/internal/config"
	"github.com/charleschow/pennant-race/internal/core/report"
	"github.com/charleschow/pennant-race/internal/store"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

func main() {
	league := flag.String("league", "kbo", "league key in the leagues file")
	leaguesPath := flag.String("leagues", "config/leagues.yaml", "path to league definitions")
	logPath := flag.String("log", "", "season log to import")
	dbPath := flag.String("db", "data/pennant.db", "path to the store")
	export := flag.String("export", "", "write the stored season as a log to this file (- for stdout) instead of importing")
	replace := flag.Bool("replace", false, "delete the league's stored games before importing")
	flag.Parse()

	telemetry.InitWriter(os.Stderr, telemetry.ParseLogLevel("info"))

	leagues, err := config.LoadLeagues(*leaguesPath)
	if err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(1)
	}
	def, ok := leagues.League(*league)
	if !ok {
		telemetry.Errorf("unknown league %q (have %v)", *league, leagues.Keys())
		os.Exit(1)
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		telemetry.Errorf("store: %v", err)
		os.Exit(1)
	}
	defer st.Close()
	ctx := context.Background()

	if *export != "" {
		if err := exportSeason(ctx, st, *league, *export); err != nil {
			telemetry.Errorf("export: %v", err)
			os.Exit(1)
		}
		return
	}

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/import_log -league kbo -log season.txt [-replace] | -export out.txt")
		os.Exit(1)
	}

	f, err := os.Open(*logPath)
	if err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(1)
	}
	defer f.Close()

	roster := def.Roster()
	season, skipped, err := seasonlog.Parse(f, roster, seasonlog.Options{Exhibition: def.Exhibition})
	if err != nil {
		telemetry.Errorf("parse %s: %v", *logPath, err)
		os.Exit(1)
	}
	for _, s := range skipped {
		telemetry.Debugf("skipped line %d (%s): %s", s.Line, s.Reason, s.Text)
	}

	// Refuse a log that cannot produce a consistent report.
	if _, err := report.Build(def.Rules(*league), roster, season); err != nil {
		telemetry.Errorf("season log rejected: %v", err)
		os.Exit(1)
	}

	if *replace {
		if err := st.DeleteLeague(ctx, *league); err != nil {
			telemetry.Errorf("%v", err)
			os.Exit(1)
		}
	}

	n, err := st.UpsertGames(ctx, *league, "log:"+*logPath, season)
	if err != nil {
		telemetry.Errorf("import: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("imported %s into %s  games=%d  new=%d  skipped=%d", *logPath, *league, len(season), n, len(skipped))
}

func exportSeason(ctx context.Context, st *store.Store, league, path string) error {
	season, err := st.Season(ctx, league)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := seasonlog.Write(w, season); err != nil {
		return err
	}
	telemetry.Infof("exported %d %s games to %s", len(season), league, path)
	return nil
}
