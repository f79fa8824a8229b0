package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charleschow/pennant-race/internal/adapters/inbound/seasonlog"
	"github.com/charleschow/pennant-race/internal/config"
	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/report"
	"github.com/charleschow/pennant-race/internal/core/verify"
	"github.com/charleschow/pennant-race/internal/store"
)

// verify rebuilds a league's reports from a season log or the store,
// prints them and checks every consistency rule. It exits 1 on any
// violation so it can gate a data import.
func main() {
	league := flag.String("league", "kbo", "league key in the leagues file")
	leaguesPath := flag.String("leagues", "config/leagues.yaml", "path to league definitions")
	logPath := flag.String("log", "", "season log to verify (default: read the store)")
	dbPath := flag.String("db", "data/pennant.db", "path to the store")
	cutoff := flag.Int("cutoff", 0, "playoff cutoff for the magic table (default: league setting)")
	quiet := flag.Bool("q", false, "only print violations")
	flag.Parse()

	leagues, err := config.LoadLeagues(*leaguesPath)
	if err != nil {
		fail("%v", err)
	}
	def, ok := leagues.League(*league)
	if !ok {
		fail("unknown league %q (have %v)", *league, leagues.Keys())
	}
	roster := def.Roster()

	season, err := loadSeason(*league, def, roster, *logPath, *dbPath)
	if err != nil {
		fail("%v", err)
	}

	b, err := report.Build(def.Rules(*league), roster, season)
	if err != nil {
		fail("build report: %v", err)
	}

	if !*quiet {
		fmt.Printf("=== %s standings as of %s (%d games) ===\n", def.Name, b.Standings.AsOf, len(season))
		report.WriteStandings(os.Stdout, b.Standings)
		fmt.Println()

		magic := b.MagicNums
		if *cutoff > 0 && *cutoff != def.PlayoffSpots {
			if magic, err = b.MagicFor(*cutoff); err != nil {
				fail("magic numbers: %v", err)
			}
		}
		fmt.Printf("=== Magic numbers (top %d) ===\n", magic.PlayoffSpots)
		report.WriteMagic(os.Stdout, magic)
		fmt.Println()
	}

	res := verify.Bundle(b, verify.DefaultEpsilon)
	if res.OK() {
		fmt.Println("verify: all checks passed")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEAM\tCHECK\tEXPECTED\tACTUAL")
	for _, v := range res.Violations {
		team := string(v.Team)
		if team == "" {
			team = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", team, v.Check, v.Expected, v.Actual)
	}
	w.Flush()
	fmt.Printf("verify: %d violation(s)\n", len(res.Violations))
	os.Exit(1)
}

func loadSeason(league string, def config.LeagueDef, roster *game.Roster, logPath, dbPath string) (game.Season, error) {
	if logPath != "" {
		f, err := os.Open(logPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		season, skipped, err := seasonlog.Parse(f, roster, seasonlog.Options{Exhibition: def.Exhibition})
		if err != nil {
			return nil, err
		}
		if len(skipped) > 0 {
			fmt.Fprintf(os.Stderr, "skipped %d exhibition game(s)\n", len(skipped))
		}
		return season, nil
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Season(context.Background(), league)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "verify: "+format+"\n", args...)
	os.Exit(2)
}
