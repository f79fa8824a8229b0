package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opening = time.Date(2025, 3, 22, 18, 30, 0, 0, time.UTC)

func TestNewGame_TruncatesDate(t *testing.T) {
	g, err := NewGame(opening, "LG", "KT", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC), g.Date)
}

func TestNewGame_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		away, home TeamID
		as, hs     int
		check      func(t *testing.T, err error)
	}{
		{
			name: "negative away score", away: "LG", home: "KT", as: -1, hs: 2,
			check: func(t *testing.T, err error) {
				var mse *MalformedScoreError
				require.True(t, errors.As(err, &mse))
				assert.Equal(t, -1, mse.Value)
			},
		},
		{
			name: "negative home score", away: "LG", home: "KT", as: 1, hs: -4,
			check: func(t *testing.T, err error) {
				var mse *MalformedScoreError
				assert.True(t, errors.As(err, &mse))
			},
		},
		{
			name: "self play", away: "LG", home: "LG", as: 1, hs: 0,
			check: func(t *testing.T, err error) {
				var spe *SelfPlayError
				require.True(t, errors.As(err, &spe))
				assert.Equal(t, TeamID("LG"), spe.Team)
			},
		},
		{
			name: "missing away team", away: "", home: "LG", as: 1, hs: 0,
			check: func(t *testing.T, err error) {
				var ute *UnknownTeamError
				require.True(t, errors.As(err, &ute))
				assert.Equal(t, "away", ute.Side)
				assert.EqualError(t, err, "missing away team")
			},
		},
		{
			name: "missing home team", away: "LG", home: "", as: 1, hs: 0,
			check: func(t *testing.T, err error) {
				var ute *UnknownTeamError
				require.True(t, errors.As(err, &ute))
				assert.Equal(t, "home", ute.Side)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGame(opening, tt.away, tt.home, tt.as, tt.hs)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestValidate_NoDate(t *testing.T) {
	g := Game{AwayTeam: "LG", HomeTeam: "KT", AwayScore: 1}
	assert.ErrorIs(t, g.Validate(), ErrNoDate)

	_, err := NewGame(time.Time{}, "LG", "KT", 1, 0)
	assert.ErrorIs(t, err, ErrNoDate, "a zero date stays zero after truncation")
}

func TestGame_Perspective(t *testing.T) {
	g, err := NewGame(opening, "두산", "삼성", 7, 2)
	require.NoError(t, err)

	w, ok := g.Winner()
	require.True(t, ok)
	assert.Equal(t, TeamID("두산"), w)
	l, ok := g.Loser()
	require.True(t, ok)
	assert.Equal(t, TeamID("삼성"), l)

	r, err := g.ResultFor("두산")
	require.NoError(t, err)
	assert.Equal(t, Win, r)
	r, err = g.ResultFor("삼성")
	require.NoError(t, err)
	assert.Equal(t, Loss, r)

	scored, allowed, err := g.ScoreFor("삼성")
	require.NoError(t, err)
	assert.Equal(t, 2, scored)
	assert.Equal(t, 7, allowed)

	assert.True(t, g.IsHome("삼성"))
	assert.False(t, g.IsHome("두산"))

	opp, err := g.Opponent("두산")
	require.NoError(t, err)
	assert.Equal(t, TeamID("삼성"), opp)

	_, err = g.ResultFor("KT")
	assert.ErrorIs(t, err, ErrNotInvolved)
}

func TestGame_Draw(t *testing.T) {
	g, err := NewGame(opening, "NC", "키움", 4, 4)
	require.NoError(t, err)
	assert.True(t, g.IsDraw())
	_, ok := g.Winner()
	assert.False(t, ok)
	r, err := g.ResultFor("NC")
	require.NoError(t, err)
	assert.Equal(t, Draw, r)
	assert.Equal(t, "D", r.String())
}

func TestParseScore(t *testing.T) {
	n, err := ParseScore(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, raw := range []string{"", "-1", "3.5", "x"} {
		_, err := ParseScore(raw)
		var mse *MalformedScoreError
		require.True(t, errors.As(err, &mse), raw)
		assert.Equal(t, raw, mse.Raw)
	}
}

func TestSortChronological_StableWithinDay(t *testing.T) {
	d1 := opening
	d2 := opening.AddDate(0, 0, 1)
	games := []Game{
		{Date: d2, AwayTeam: "A", HomeTeam: "B"},
		{Date: d1, AwayTeam: "C", HomeTeam: "D", AwayScore: 1},
		{Date: d1, AwayTeam: "C", HomeTeam: "D", AwayScore: 2},
	}
	s := SortChronological(games)
	require.Len(t, s, 3)
	assert.Equal(t, 1, s[0].AwayScore)
	assert.Equal(t, 2, s[1].AwayScore)
	assert.Equal(t, TeamID("A"), s[2].AwayTeam)
	// input untouched
	assert.Equal(t, TeamID("A"), games[0].AwayTeam)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, d2, last.Date)
	assert.Len(t, s.ForTeam("C"), 2)
}
