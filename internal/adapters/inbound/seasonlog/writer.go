package seasonlog

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charleschow/pennant-race/internal/core/game"
)

// Write emits season in the log format, one date line per game day.
// Team IDs are written as-is so the output parses back with the same roster.
func Write(w io.Writer, season game.Season) error {
	bw := bufio.NewWriter(w)
	var last string
	for _, g := range game.SortChronological(season) {
		d := g.Date.Format(game.DateLayout)
		if d != last {
			if last != "" {
				fmt.Fprintln(bw)
			}
			fmt.Fprintln(bw, d)
			last = d
		}
		fmt.Fprintf(bw, "%s %d:%d %s(H)\n", g.AwayTeam, g.AwayScore, g.HomeScore, g.HomeTeam)
	}
	return bw.Flush()
}
