package daum

import (
	"fmt"
	"time"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/team"
)

// RowError reports a scraped row that could not become a game.
type RowError struct {
	Row RawGame
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s %s %s:%s %s: %v", e.Row.Date, e.Row.AwayTeam, e.Row.AwayScore, e.Row.HomeScore, e.Row.HomeTeam, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Conversion is the outcome of resolving scraped rows against a roster.
type Conversion struct {
	Games   []game.Game
	Skipped []RawGame
	Errors  []*RowError
}

// Convert resolves every row. Rows naming an exhibition team are skipped;
// rows with unknown teams or bad scores are returned as errors and never
// become games.
func Convert(rows []RawGame, roster *game.Roster, exhibition []string) Conversion {
	skip := make(map[string]bool, len(exhibition))
	for _, name := range exhibition {
		skip[team.Normalize(name)] = true
	}

	var c Conversion
	for _, row := range rows {
		if skip[team.Normalize(row.AwayTeam)] || skip[team.Normalize(row.HomeTeam)] {
			c.Skipped = append(c.Skipped, row)
			continue
		}
		g, err := convertRow(row, roster)
		if err != nil {
			c.Errors = append(c.Errors, &RowError{Row: row, Err: err})
			continue
		}
		c.Games = append(c.Games, g)
	}
	return c
}

func convertRow(row RawGame, roster *game.Roster) (game.Game, error) {
	date, err := time.Parse(game.DateLayout, row.Date)
	if err != nil {
		return game.Game{}, fmt.Errorf("bad date: %w", err)
	}
	away, err := roster.Resolve(row.AwayTeam)
	if err != nil {
		return game.Game{}, err
	}
	home, err := roster.Resolve(row.HomeTeam)
	if err != nil {
		return game.Game{}, err
	}
	as, err := game.ParseScore(row.AwayScore)
	if err != nil {
		return game.Game{}, err
	}
	hs, err := game.ParseScore(row.HomeScore)
	if err != nil {
		return game.Game{}, err
	}
	return game.NewGame(date, away, home, as, hs)
}
