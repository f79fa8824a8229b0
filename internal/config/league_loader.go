package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/report"
)

type TeamDef struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type LeagueDef struct {
	Name             string `yaml:"name"`
	SeasonGames      int    `yaml:"season_games"`
	GamesPerOpponent int    `yaml:"games_per_opponent"`
	PlayoffSpots     int    `yaml:"playoff_spots"`
	HomeField        int    `yaml:"home_field"`
	FormWindow       int    `yaml:"form_window"`

	// ScrapeSlug is the schedule-page path segment, e.g. "kbo". Empty
	// disables scraping for this league.
	ScrapeSlug string `yaml:"scrape_slug"`
	// SeasonMonths are the calendar months (1-12) the scraper walks.
	SeasonMonths []int `yaml:"season_months"`
	// Exhibition lists teams whose games never count, e.g. all-star sides.
	Exhibition []string `yaml:"exhibition"`

	Teams []TeamDef `yaml:"teams"`
}

type Leagues struct {
	Leagues map[string]LeagueDef `yaml:"leagues"`
}

func LoadLeagues(path string) (Leagues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Leagues{}, fmt.Errorf("read leagues: %w", err)
	}
	return ParseLeagues(data)
}

func ParseLeagues(data []byte) (Leagues, error) {
	var ls Leagues
	if err := yaml.Unmarshal(data, &ls); err != nil {
		return Leagues{}, fmt.Errorf("parse leagues: %w", err)
	}
	for key, def := range ls.Leagues {
		if err := def.validate(); err != nil {
			return Leagues{}, fmt.Errorf("league %s: %w", key, err)
		}
	}
	return ls, nil
}

func (ld LeagueDef) validate() error {
	if len(ld.Teams) < 2 {
		return fmt.Errorf("need at least 2 teams, got %d", len(ld.Teams))
	}
	if ld.SeasonGames <= 0 {
		return fmt.Errorf("season_games must be positive")
	}
	if ld.PlayoffSpots < 1 || ld.PlayoffSpots >= len(ld.Teams) {
		return fmt.Errorf("playoff_spots %d out of range for %d teams", ld.PlayoffSpots, len(ld.Teams))
	}
	seen := make(map[string]bool, len(ld.Teams))
	for _, t := range ld.Teams {
		if t.ID == "" {
			return fmt.Errorf("team with empty id")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate team id %q", t.ID)
		}
		seen[t.ID] = true
	}
	for _, m := range ld.SeasonMonths {
		if m < 1 || m > 12 {
			return fmt.Errorf("season month %d out of range", m)
		}
	}
	return nil
}

// Keys returns league keys in lexical order.
func (ls Leagues) Keys() []string {
	keys := make([]string, 0, len(ls.Leagues))
	for k := range ls.Leagues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (ls Leagues) League(key string) (LeagueDef, bool) {
	ld, ok := ls.Leagues[key]
	return ld, ok
}

// Roster builds the league's roster in configured order.
func (ld LeagueDef) Roster() *game.Roster {
	members := make([]game.Member, len(ld.Teams))
	for i, t := range ld.Teams {
		members[i] = game.Member{ID: game.TeamID(t.ID), Name: t.Name, Aliases: t.Aliases}
	}
	return game.NewRoster(members...)
}

// Rules converts the definition into report rules under the given key.
func (ld LeagueDef) Rules(key string) report.Rules {
	return report.Rules{
		League:           key,
		SeasonGames:      ld.SeasonGames,
		GamesPerOpponent: ld.GamesPerOpponent,
		PlayoffSpots:     ld.PlayoffSpots,
		HomeField:        ld.HomeField,
		FormWindow:       ld.FormWindow,
	}
}
