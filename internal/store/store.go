package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/telemetry"

	_ "modernc.org/sqlite"
)

// Store persists completed games and magic-number snapshots in SQLite.
// Reads go through database/sql; writes are serialized by mu.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	var rows int64
	db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&rows)
	telemetry.Plainf("store: opened %s  games=%d", path, rows)
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	league      TEXT    NOT NULL,
	game_date   TEXT    NOT NULL,
	away_team   TEXT    NOT NULL,
	home_team   TEXT    NOT NULL,
	away_score  INTEGER NOT NULL CHECK (away_score >= 0),
	home_score  INTEGER NOT NULL CHECK (home_score >= 0),
	seq         INTEGER NOT NULL DEFAULT 1,
	source      TEXT    NOT NULL DEFAULT '',
	created_at  TEXT    NOT NULL,
	UNIQUE (league, game_date, away_team, home_team, seq)
);
CREATE INDEX IF NOT EXISTS idx_games_league_date ON games (league, game_date);

CREATE TABLE IF NOT EXISTS magic_snapshots (
	league     TEXT    NOT NULL,
	calc_date  TEXT    NOT NULL,
	team       TEXT    NOT NULL,
	cutoff     INTEGER NOT NULL,
	magic      INTEGER NOT NULL,
	tragic     INTEGER NOT NULL,
	status     TEXT    NOT NULL,
	PRIMARY KEY (league, calc_date, team, cutoff)
);
`

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertGames appends games for a league. Stored games are never
// rewritten: an incoming game that matches an unclaimed stored game of the
// same date, pairing and score is a re-delivery and is skipped. Anything
// else is appended after the pairing's last seq, so the second game of a
// doubleheader can arrive in a later batch than the first.
func (s *Store) UpsertGames(ctx context.Context, league, source string, games []game.Game) (inserted int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (league, game_date, away_team, home_team, away_score, home_score, seq, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	pairings := make(map[string]*pairing)
	for _, g := range games {
		if err := g.Validate(); err != nil {
			return 0, fmt.Errorf("game %s %s@%s: %w", g.Date.Format(game.DateLayout), g.AwayTeam, g.HomeTeam, err)
		}
		date := g.Date.Format(game.DateLayout)
		key := date + "|" + string(g.AwayTeam) + "|" + string(g.HomeTeam)
		pr, ok := pairings[key]
		if !ok {
			if pr, err = loadPairing(ctx, tx, league, date, g.AwayTeam, g.HomeTeam); err != nil {
				return 0, err
			}
			pairings[key] = pr
		}
		if pr.claim(g.AwayScore, g.HomeScore) {
			continue
		}

		seq := pr.next()
		if _, err := stmt.ExecContext(ctx, league, date, g.AwayTeam, g.HomeTeam, g.AwayScore, g.HomeScore, seq, source, now); err != nil {
			return 0, fmt.Errorf("insert game: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// pairing is the stored games of one date and matchup during an upsert.
type pairing struct {
	maxSeq  int
	scores  [][2]int
	claimed []bool
}

func loadPairing(ctx context.Context, tx *sql.Tx, league, date string, away, home game.TeamID) (*pairing, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT seq, away_score, home_score FROM games
		WHERE league = ? AND game_date = ? AND away_team = ? AND home_team = ?
		ORDER BY seq`, league, date, away, home)
	if err != nil {
		return nil, fmt.Errorf("lookup games: %w", err)
	}
	defer rows.Close()

	pr := &pairing{}
	for rows.Next() {
		var seq, as, hs int
		if err := rows.Scan(&seq, &as, &hs); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		pr.maxSeq = max(pr.maxSeq, seq)
		pr.scores = append(pr.scores, [2]int{as, hs})
		pr.claimed = append(pr.claimed, false)
	}
	return pr, rows.Err()
}

// claim marks the first unclaimed stored game with this score as seen.
func (pr *pairing) claim(as, hs int) bool {
	for i, sc := range pr.scores {
		if !pr.claimed[i] && sc == [2]int{as, hs} {
			pr.claimed[i] = true
			return true
		}
	}
	return false
}

func (pr *pairing) next() int {
	pr.maxSeq++
	pr.scores = append(pr.scores, [2]int{})
	pr.claimed = append(pr.claimed, true)
	return pr.maxSeq
}

// Season loads a league's games in chronological order. Games on the same
// date come back in doubleheader then insertion order.
func (s *Store) Season(ctx context.Context, league string) (game.Season, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_date, away_team, home_team, away_score, home_score
		FROM games WHERE league = ?
		ORDER BY game_date, seq, id`, league)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var season game.Season
	for rows.Next() {
		var (
			date       string
			away, home string
			as, hs     int
		)
		if err := rows.Scan(&date, &away, &home, &as, &hs); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		d, err := time.Parse(game.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse game_date %q: %w", date, err)
		}
		season = append(season, game.Game{
			Date:      d,
			AwayTeam:  game.TeamID(away),
			HomeTeam:  game.TeamID(home),
			AwayScore: as,
			HomeScore: hs,
		})
	}
	return season, rows.Err()
}

// CountGames returns the number of stored games for a league.
func (s *Store) CountGames(ctx context.Context, league string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE league = ?`, league).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

// DeleteLeague removes every game and snapshot of a league.
func (s *Store) DeleteLeague(ctx context.Context, league string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE league = ?`, league); err != nil {
		return fmt.Errorf("delete games: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM magic_snapshots WHERE league = ?`, league); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}
