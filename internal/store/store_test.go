package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/magic"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time { return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC) }

func g(d int, away, home string, as, hs int) game.Game {
	return game.Game{Date: day(d), AwayTeam: game.TeamID(away), HomeTeam: game.TeamID(home), AwayScore: as, HomeScore: hs}
}

func TestUpsertGames_RoundTrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	n, err := s.UpsertGames(ctx, "kbo", "test", []game.Game{
		g(2, "LG", "KT", 3, 1),
		g(1, "SSG", "LG", 2, 2),
		g(2, "LG", "KT", 0, 4), // doubleheader
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	season, err := s.Season(ctx, "kbo")
	require.NoError(t, err)
	require.Len(t, season, 3)
	assert.Equal(t, g(1, "SSG", "LG", 2, 2), season[0])
	assert.Equal(t, g(2, "LG", "KT", 3, 1), season[1])
	assert.Equal(t, g(2, "LG", "KT", 0, 4), season[2])

	other, err := s.Season(ctx, "npb-central")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUpsertGames_Idempotent(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	batch := []game.Game{g(1, "LG", "KT", 3, 1), g(1, "LG", "KT", 3, 1), g(1, "NC", "KIA", 5, 6)}
	n, err := s.UpsertGames(ctx, "kbo", "a", batch)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "identical doubleheader games are both kept")

	n, err = s.UpsertGames(ctx, "kbo", "b", batch)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.UpsertGames(ctx, "kbo", "c", batch[1:])
	require.NoError(t, err)
	assert.Zero(t, n, "a partial re-delivery adds nothing")

	count, err := s.CountGames(ctx, "kbo")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUpsertGames_DoubleheaderAcrossBatches(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	n, err := s.UpsertGames(ctx, "kbo", "first", []game.Game{g(2, "LG", "KT", 3, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.UpsertGames(ctx, "kbo", "second", []game.Game{g(2, "LG", "KT", 0, 4)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Both games delivered together later on match what is stored.
	n, err = s.UpsertGames(ctx, "kbo", "full", []game.Game{g(2, "LG", "KT", 3, 1), g(2, "LG", "KT", 0, 4)})
	require.NoError(t, err)
	assert.Zero(t, n)

	season, err := s.Season(ctx, "kbo")
	require.NoError(t, err)
	assert.Equal(t, game.Season{g(2, "LG", "KT", 3, 1), g(2, "LG", "KT", 0, 4)}, season)
}

func TestUpsertGames_RejectsInvalidBatch(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.UpsertGames(ctx, "kbo", "test", []game.Game{
		g(1, "LG", "KT", 3, 1),
		g(1, "LG", "LG", 3, 1),
	})
	var selfPlay *game.SelfPlayError
	require.ErrorAs(t, err, &selfPlay)

	count, err := s.CountGames(ctx, "kbo")
	require.NoError(t, err)
	assert.Zero(t, count, "batch is all or nothing")
}

func TestMagicTrend(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	for d := 1; d <= 9; d++ {
		rep := magic.Report{Teams: []magic.TeamMagic{{
			Team:         "LG",
			Playoff:      magic.Entry{Team: "LG", Cutoff: 5, Magic: magic.Number(20 - d), Tragic: 30, Status: magic.StatusCompetitive},
			Championship: magic.Entry{Team: "LG", Cutoff: 1, Magic: magic.Eliminated, Tragic: 4, Status: magic.StatusTragic},
		}}}
		require.NoError(t, s.SaveMagicSnapshot(ctx, "kbo", day(d), rep))
	}

	trend, err := s.MagicTrend(ctx, "kbo", "LG", 5, 0)
	require.NoError(t, err)
	require.Len(t, trend, DefaultTrendLimit)
	assert.Equal(t, "2024-04-03", trend[0].Date)
	assert.Equal(t, "2024-04-09", trend[6].Date)
	assert.Equal(t, magic.Number(11), trend[6].Magic)

	champ, err := s.MagicTrend(ctx, "kbo", "LG", 1, 2)
	require.NoError(t, err)
	require.Len(t, champ, 2)
	assert.True(t, champ[1].Magic.IsEliminated())
	assert.Equal(t, magic.StatusTragic, champ[1].Status)
}

func TestSaveMagicSnapshot_ReplacesSameDay(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	save := func(m magic.Number) {
		rep := magic.Report{Teams: []magic.TeamMagic{{
			Team:         "KT",
			Playoff:      magic.Entry{Team: "KT", Cutoff: 5, Magic: m, Tragic: 10},
			Championship: magic.Entry{Team: "KT", Cutoff: 1, Magic: m, Tragic: 10},
		}}}
		require.NoError(t, s.SaveMagicSnapshot(ctx, "kbo", day(1), rep))
	}
	save(8)
	save(7)

	trend, err := s.MagicTrend(ctx, "kbo", "KT", 5, 7)
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, magic.Number(7), trend[0].Magic)
}

func TestDeleteLeague(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.UpsertGames(ctx, "kbo", "t", []game.Game{g(1, "LG", "KT", 1, 0)})
	require.NoError(t, err)
	_, err = s.UpsertGames(ctx, "npb-central", "t", []game.Game{g(1, "HAN", "YOG", 1, 0)})
	require.NoError(t, err)

	require.NoError(t, s.DeleteLeague(ctx, "kbo"))
	n, _ := s.CountGames(ctx, "kbo")
	assert.Zero(t, n)
	n, _ = s.CountGames(ctx, "npb-central")
	assert.Equal(t, 1, n)
}
