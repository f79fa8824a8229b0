package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/magic"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, ".600", FormatPct(0.6))
	assert.Equal(t, "1.000", FormatPct(1))
	assert.Equal(t, ".000", FormatPct(0))
	assert.Equal(t, ".667", FormatPct(2.0/3.0))
	assert.Equal(t, "-", FormatGB(0, true))
	assert.Equal(t, "0.0", FormatGB(0, false))
	assert.Equal(t, "2.5", FormatGB(2.5, false))
	assert.InDelta(t, 0.333, Round(1.0/3.0, 3), 1e-12)
}

func testSeason() (*game.Roster, game.Season) {
	roster := game.NewRoster(
		game.Member{ID: "LG", Name: "LG 트윈스"},
		game.Member{ID: "한화", Name: "한화 이글스"},
		game.Member{ID: "KT", Name: "KT 위즈"},
	)
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	season := game.Season{
		{Date: d, AwayTeam: "LG", HomeTeam: "한화", AwayScore: 5, HomeScore: 3},
		{Date: d.AddDate(0, 0, 1), AwayTeam: "LG", HomeTeam: "KT", AwayScore: 2, HomeScore: 2},
		{Date: d.AddDate(0, 0, 2), AwayTeam: "한화", HomeTeam: "KT", AwayScore: 4, HomeScore: 1},
		{Date: d.AddDate(0, 0, 3), AwayTeam: "KT", HomeTeam: "LG", AwayScore: 0, HomeScore: 6},
	}
	return roster, season
}

var testRules = Rules{League: "kbo", SeasonGames: 10, GamesPerOpponent: 5, PlayoffSpots: 2, HomeField: 1, FormWindow: 10}

func TestBuild(t *testing.T) {
	roster, season := testSeason()
	b, err := Build(testRules, roster, season)
	require.NoError(t, err)

	assert.Equal(t, "2025-06-04", b.Standings.AsOf)
	require.Len(t, b.Standings.Rows, 3)

	lg := b.Standings.Rows[0]
	assert.Equal(t, game.TeamID("LG"), lg.Team)
	assert.Equal(t, "LG 트윈스", lg.Name)
	assert.Equal(t, 1, lg.Rank)
	assert.Equal(t, "1.000", lg.WinPctDisplay)
	assert.Equal(t, "-", lg.GamesBehindDisplay)
	assert.Equal(t, "1-0-0", lg.HomeRecord)
	assert.Equal(t, "1-0-1", lg.AwayRecord)
	assert.Equal(t, "2-0-1", lg.Recent10)
	assert.Equal(t, "1W", lg.Streak)
	assert.Equal(t, 7, lg.Remaining)

	hh := b.Standings.Rows[1]
	assert.Equal(t, game.TeamID("한화"), hh.Team)
	assert.Equal(t, ".500", hh.WinPctDisplay)
	assert.Equal(t, "1.0", hh.GamesBehindDisplay)

	kt := b.Standings.Rows[2]
	assert.Equal(t, "2L", kt.Streak)
	assert.Equal(t, "2.0", kt.GamesBehindDisplay)

	require.Len(t, b.MagicNums.Rows, 3)
	assert.Equal(t, 2, b.MagicNums.PlayoffSpots)
	assert.Equal(t, game.TeamID("LG"), b.MagicNums.Rows[0].Team)
	require.NotNil(t, b.MagicNums.Rows[0].HomeFieldMagic)

	require.Len(t, b.Matrix.Rows, 3)
	assert.Len(t, b.Matrix.Rows[0].Cells, 2)

	require.Len(t, b.HeadToHead.Rows, 3)
	lgRow := b.HeadToHead.Rows[0]
	assert.Equal(t, game.TeamID("LG"), lgRow.Team)
	require.Len(t, lgRow.Series, 2)
	assert.Equal(t, game.TeamID("한화"), lgRow.Series[0].Opponent)
	assert.Equal(t, "1-0-0", lgRow.Series[0].Record)
	assert.Equal(t, "1-0-0", lgRow.Series[0].AwayRecord)
	assert.Equal(t, 4, lgRow.Series[0].Remaining)
	assert.Equal(t, "1-0-1", lgRow.Series[1].Record)
}

func TestBuild_Deterministic(t *testing.T) {
	roster, season := testSeason()
	a, err := Build(testRules, roster, season)
	require.NoError(t, err)
	b, err := Build(testRules, roster, season)
	require.NoError(t, err)

	ja, err := json.Marshal(a.Standings)
	require.NoError(t, err)
	jb, err := json.Marshal(b.Standings)
	require.NoError(t, err)
	assert.Equal(t, ja, jb)
	assert.Equal(t, a.MagicNums, b.MagicNums)
}

func TestBuild_ScheduleInconsistency(t *testing.T) {
	roster, season := testSeason()
	rules := testRules
	rules.SeasonGames = 2
	_, err := Build(rules, roster, season)
	var sie *magic.ScheduleInconsistencyError
	require.True(t, errors.As(err, &sie))
	assert.Equal(t, game.TeamID("LG"), sie.Team)
}

func TestBuild_UnknownTeam(t *testing.T) {
	roster, season := testSeason()
	season = append(season, game.Game{Date: season[0].Date, AwayTeam: "SSG", HomeTeam: "LG"})
	_, err := Build(testRules, roster, season)
	var ute *game.UnknownTeamError
	assert.True(t, errors.As(err, &ute))
}

func TestStandingsJSONFieldNames(t *testing.T) {
	roster, season := testSeason()
	b, err := Build(testRules, roster, season)
	require.NoError(t, err)

	data, err := json.Marshal(b.Standings.Rows[0])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, k := range []string{"rank", "team", "games", "wins", "losses", "draws", "win_pct",
		"games_behind", "games_behind_display", "home_record", "away_record", "recent10", "streak"} {
		assert.Contains(t, fields, k)
	}
	assert.Equal(t, "-", fields["games_behind_display"])
}

func TestBundleHelpers(t *testing.T) {
	roster, season := testSeason()
	b, err := Build(testRules, roster, season)
	require.NoError(t, err)

	f, err := b.Form("KT", 1)
	require.NoError(t, err)
	assert.Equal(t, "0-1-0", f.Record())

	_, err = b.Form("SSG", 10)
	var ute *game.UnknownTeamError
	assert.True(t, errors.As(err, &ute))

	same, err := b.MagicFor(2)
	require.NoError(t, err)
	assert.Equal(t, b.MagicNums, same)

	alt, err := b.MagicFor(1)
	require.NoError(t, err)
	assert.Equal(t, 1, alt.PlayoffSpots)
	assert.Equal(t, alt.Rows[0].ChampionshipMagic, alt.Rows[0].PlayoffMagic)
}

func TestWriteTables(t *testing.T) {
	roster, season := testSeason()
	b, err := Build(testRules, roster, season)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteStandings(&buf, b.Standings))
	assert.Contains(t, buf.String(), "kbo standings")
	assert.Contains(t, buf.String(), "1.000")

	buf.Reset()
	require.NoError(t, WriteMagic(&buf, b.MagicNums))
	assert.Contains(t, buf.String(), "top 2")
}
