package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteStandings prints the standings report as an aligned text table.
func WriteStandings(w io.Writer, r StandingsReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "=== %s standings (as of %s) ===\n", r.League, r.AsOf)
	fmt.Fprintln(tw, "RK\tTEAM\tG\tW\tL\tD\tPCT\tGB\tHOME\tAWAY\tL10\tSTRK\tREM")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			row.Rank, row.Team, row.Games, row.Wins, row.Losses, row.Draws,
			row.WinPctDisplay, row.GamesBehindDisplay, row.HomeRecord, row.AwayRecord,
			row.Recent10, row.Streak, row.Remaining)
	}
	return tw.Flush()
}

// WriteMagic prints the magic-number report as an aligned text table.
func WriteMagic(w io.Writer, r MagicReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "=== %s magic numbers, top %d (as of %s) ===\n", r.League, r.PlayoffSpots, r.AsOf)
	fmt.Fprintln(tw, "RK\tTEAM\tREM\tMAX\tPO MAGIC\tPO TRAGIC\tPO STATUS\t1ST MAGIC\t1ST STATUS")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%d\t%s\t%s\t%s\n",
			row.Rank, row.Team, row.Remaining, row.MaxWins,
			row.PlayoffMagic, row.PlayoffTragic, row.PlayoffStatus,
			row.ChampionshipMagic, row.ChampionshipStatus)
	}
	return tw.Flush()
}
