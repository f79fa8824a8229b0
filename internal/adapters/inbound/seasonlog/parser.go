package seasonlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/team"
)

// A season log is a plain text file of completed games:
//
//	2025-03-22
//	롯데 2:12 LG(H)
//	두산 5:6 SSG(H)
//
// A date line applies to every game line after it. The first team is the
// visitor, the second the home club; the (H) marker is optional.

var (
	dateLine = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})$`)
	gameLine = regexp.MustCompile(`^(.+?)\s+(\S+?):(\S+?)\s+(.+?)\s*(\(H\))?$`)
)

// Options controls how a log is read.
type Options struct {
	// Exhibition names games to skip, such as all-star squads.
	Exhibition []string
}

// Skipped is a well-formed game line that was deliberately left out.
type Skipped struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// LineError locates a parse failure in the log.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

var (
	ErrNoDate      = errors.New("game line before any date line")
	ErrUnparseable = errors.New("not a date or game line")
)

// Parse reads every game in r, returned in chronological order. The first
// bad line stops parsing with a *LineError.
func Parse(r io.Reader, roster *game.Roster, opts Options) (game.Season, []Skipped, error) {
	exhibition := make(map[string]bool, len(opts.Exhibition))
	for _, name := range opts.Exhibition {
		exhibition[team.Normalize(name)] = true
	}

	var (
		season  game.Season
		skipped []Skipped
		date    time.Time
		lineNo  int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if m := dateLine.FindStringSubmatch(text); m != nil {
			d, err := time.Parse(game.DateLayout, m[1])
			if err != nil {
				return nil, nil, &LineError{Line: lineNo, Text: text, Err: err}
			}
			date = d
			continue
		}

		m := gameLine.FindStringSubmatch(text)
		if m == nil {
			return nil, nil, &LineError{Line: lineNo, Text: text, Err: ErrUnparseable}
		}
		if date.IsZero() {
			return nil, nil, &LineError{Line: lineNo, Text: text, Err: ErrNoDate}
		}

		awayName, homeName := strings.TrimSpace(m[1]), strings.TrimSpace(m[4])
		if exhibition[team.Normalize(awayName)] || exhibition[team.Normalize(homeName)] {
			skipped = append(skipped, Skipped{Line: lineNo, Text: text, Reason: "exhibition"})
			continue
		}

		g, err := buildGame(roster, date, awayName, homeName, m[2], m[3])
		if err != nil {
			return nil, nil, &LineError{Line: lineNo, Text: text, Err: err}
		}
		season = append(season, g)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read season log: %w", err)
	}
	return game.SortChronological(season), skipped, nil
}

func buildGame(roster *game.Roster, date time.Time, awayName, homeName, rawAway, rawHome string) (game.Game, error) {
	away, err := roster.Resolve(awayName)
	if err != nil {
		return game.Game{}, err
	}
	home, err := roster.Resolve(homeName)
	if err != nil {
		return game.Game{}, err
	}
	as, err := game.ParseScore(rawAway)
	if err != nil {
		return game.Game{}, err
	}
	hs, err := game.ParseScore(rawHome)
	if err != nil {
		return game.Game{}, err
	}
	return game.NewGame(date, away, home, as, hs)
}
