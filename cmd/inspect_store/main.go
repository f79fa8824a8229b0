package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	_ "modernc.org/sqlite"
)

var recentGames = `SELECT game_date, away_team||' '||away_score||':'||home_score||' '||home_team AS game,
	CASE WHEN away_score = home_score THEN 'draw'
	     WHEN away_score > home_score THEN away_team ELSE home_team END AS winner,
	seq, source
FROM games WHERE league = ? ORDER BY game_date DESC, seq DESC, id DESC LIMIT ?`

var recentSnapshots = `SELECT calc_date, team, cutoff,
	CASE WHEN magic < 0 THEN 'X' WHEN magic = 0 THEN 'clinched' ELSE magic END AS magic,
	tragic, status
FROM magic_snapshots WHERE league = ?
ORDER BY calc_date DESC, cutoff, team LIMIT ?`

func main() {
	league := flag.String("league", "kbo", "league key")
	n := flag.Int("n", 20, "number of recent rows to display")
	table := flag.String("table", "all", "what to inspect: games, snapshots, or all")
	verbose := flag.Bool("v", false, "print the table schema first")
	dbPath := flag.String("db", "data/pennant.db", "path to the store")
	flag.Parse()

	if *table != "games" && *table != "snapshots" && *table != "all" {
		fmt.Fprintf(os.Stderr, "unknown table %q (use games, snapshots, or all)\n", *table)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath+"?_pragma=busy_timeout(10000)&mode=ro")
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch *table {
	case "games", "all":
		section(db, "Games", "games", recentGames, *league, *n, *verbose)
	}
	if *table == "all" {
		fmt.Println()
	}
	switch *table {
	case "snapshots", "all":
		section(db, "Magic snapshots", "magic_snapshots", recentSnapshots, *league, *n, *verbose)
	}
}

func section(db *sql.DB, title, table, query, league string, n int, verbose bool) {
	fmt.Printf("=== %s [%s] ===\n", title, league)

	if verbose {
		cols, err := schemaColumns(db, table)
		if err != nil {
			fmt.Printf("  (cannot read schema: %v)\n", err)
			return
		}
		fmt.Printf("Schema: %s\n\n", strings.Join(cols, ", "))
	}

	count := 0
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE league = ?", table), league).Scan(&count); err != nil {
		fmt.Printf("  (cannot count rows: %v)\n", err)
		return
	}
	if count == 0 {
		fmt.Println("(no data)")
		return
	}

	fmt.Printf("Rows: %d  |  Showing last %d:\n", count, min(n, count))
	printQuery(db, query, league, n)
}

// printQuery prints rows oldest first so the newest ends up at the bottom.
func printQuery(db *sql.DB, query, league string, n int) {
	rows, err := db.Query(query, league, n)
	if err != nil {
		fmt.Printf("  (query error: %v)\n", err)
		return
	}
	defer rows.Close()

	colNames, _ := rows.Columns()
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(colNames, "\t"))
	fmt.Fprintln(w, strings.Repeat("----\t", len(colNames)))

	vals := make([]any, len(colNames))
	ptrs := make([]any, len(colNames))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var buf [][]string
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			fmt.Fprintf(os.Stderr, "  scan error: %v\n", err)
			continue
		}
		cells := make([]string, len(colNames))
		for i, v := range vals {
			cells[i] = cell(v)
		}
		buf = append(buf, cells)
	}

	for i := len(buf) - 1; i >= 0; i-- {
		fmt.Fprintln(w, strings.Join(buf[i], "\t"))
	}
	w.Flush()
}

func schemaColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid         int
			name, ctype string
			notnull, pk int
			dflt        any
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name+" "+ctype)
	}
	return cols, rows.Err()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case int64:
		return fmt.Sprintf("%d", x)
	case []byte:
		return string(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}
