package store

import (
	"context"
	"fmt"
	"time"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/magic"
)

// DefaultTrendLimit is how many daily snapshots a trend returns by default.
const DefaultTrendLimit = 7

// TrendPoint is one day's stored magic number for a team and cutoff.
type TrendPoint struct {
	Date   string       `json:"date"`
	Magic  magic.Number `json:"magic"`
	Tragic int          `json:"tragic"`
	Status magic.Status `json:"status"`
}

// SaveMagicSnapshot records the playoff and championship entries of every
// team for calcDate. Saving the same day again replaces that day's rows.
func (s *Store) SaveMagicSnapshot(ctx context.Context, league string, calcDate time.Time, rep magic.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO magic_snapshots (league, calc_date, team, cutoff, magic, tragic, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare snapshot: %w", err)
	}
	defer stmt.Close()

	date := calcDate.Format(game.DateLayout)
	for _, tm := range rep.Teams {
		entries := []magic.Entry{tm.Playoff, tm.Championship}
		if tm.HomeField != nil && tm.HomeField.Cutoff != tm.Playoff.Cutoff && tm.HomeField.Cutoff != 1 {
			entries = append(entries, *tm.HomeField)
		}
		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, league, date, e.Team, e.Cutoff, int(e.Magic), e.Tragic, string(e.Status)); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert snapshot %s n=%d: %w", e.Team, e.Cutoff, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// MagicTrend returns up to limit most recent snapshots for a team and
// cutoff, oldest first.
func (s *Store) MagicTrend(ctx context.Context, league string, team game.TeamID, cutoff, limit int) ([]TrendPoint, error) {
	if limit <= 0 {
		limit = DefaultTrendLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT calc_date, magic, tragic, status FROM (
			SELECT calc_date, magic, tragic, status FROM magic_snapshots
			WHERE league = ? AND team = ? AND cutoff = ?
			ORDER BY calc_date DESC LIMIT ?
		) ORDER BY calc_date ASC`, league, team, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	defer rows.Close()

	var out []TrendPoint
	for rows.Next() {
		var (
			p      TrendPoint
			m      int
			status string
		)
		if err := rows.Scan(&p.Date, &m, &p.Tragic, &status); err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		p.Magic = magic.Number(m)
		p.Status = magic.Status(status)
		out = append(out, p)
	}
	return out, rows.Err()
}
