package daum

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/charleschow/pennant-race/internal/core/game"
)

// completedState is the label the schedule page puts on finished games.
const completedState = "종료"

var (
	monthDay  = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})`)
	scoreText = regexp.MustCompile(`\d+`)
)

// RawGame is one completed schedule row as text. Team names are the page's
// spellings and still need resolving against a roster.
type RawGame struct {
	Date      string `json:"date"`
	AwayTeam  string `json:"away_team"`
	HomeTeam  string `json:"home_team"`
	AwayScore string `json:"away_score"`
	HomeScore string `json:"home_score"`
	State     string `json:"state"`
}

// ParseSchedule extracts completed games from a monthly schedule page.
// Date cells span several rows, so a row without one inherits the last seen.
// Rows that are not completed games are dropped.
func ParseSchedule(r io.Reader, year int) ([]RawGame, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	rows := doc.Find("tbody#scheduleList tr")
	var (
		out     []RawGame
		current string
	)
	rows.Each(func(_ int, row *goquery.Selection) {
		if d := strings.TrimSpace(row.Find("td.td_date span.num_date").First().Text()); d != "" {
			if m := monthDay.FindStringSubmatch(d); m != nil {
				mon, _ := strconv.Atoi(m[1])
				day, _ := strconv.Atoi(m[2])
				current = time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.UTC).Format(game.DateLayout)
			}
		}
		if current == "" {
			return
		}

		cell := row.Find("td.td_team").First()
		if cell.Length() == 0 {
			return
		}
		// The page's team_home block holds the visiting club.
		visitor := cell.Find("div.team_home").First()
		host := cell.Find("div.team_away").First()
		if visitor.Length() == 0 || host.Length() == 0 {
			return
		}

		state := strings.TrimSpace(cell.Find("span.state_game").First().Text())
		if state != completedState {
			return
		}

		rg := RawGame{
			Date:      current,
			AwayTeam:  strings.TrimSpace(visitor.Find("span.txt_team").First().Text()),
			HomeTeam:  strings.TrimSpace(host.Find("span.txt_team").First().Text()),
			AwayScore: score(visitor),
			HomeScore: score(host),
			State:     state,
		}
		if rg.AwayTeam == "" || rg.HomeTeam == "" {
			return
		}
		out = append(out, rg)
	})
	return out, nil
}

// score returns the digits of a team block's score, or the raw text when
// it has none so conversion can report it.
func score(block *goquery.Selection) string {
	text := strings.TrimSpace(block.Find(".num_score").First().Text())
	if m := scoreText.FindString(text); m != "" {
		return m
	}
	return text
}
