package magic

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/standings"
)

func TestVersus(t *testing.T) {
	tests := []struct {
		name    string
		pursuer Contender
		target  Contender
		want    Number
	}{
		{
			// Leading now does not mean A can guarantee anything: B's ceiling
			// of 102 needs 103 wins, and A tops out at 102.
			name:    "leader cannot guarantee",
			pursuer: Contender{Team: "A", Wins: 62, Losses: 40, Draws: 2, Remaining: 40},
			target:  Contender{Team: "B", Wins: 59, Losses: 39, Draws: 3, Remaining: 43},
			want:    Eliminated,
		},
		{
			name:    "one more win",
			pursuer: Contender{Team: "A", Wins: 80, Remaining: 10},
			target:  Contender{Team: "B", Wins: 70, Remaining: 10},
			want:    1,
		},
		{
			name:    "clinched exactly",
			pursuer: Contender{Team: "A", Wins: 81, Remaining: 9},
			target:  Contender{Team: "B", Wins: 70, Remaining: 10},
			want:    0,
		},
		{
			name:    "clinched with room to spare",
			pursuer: Contender{Team: "A", Wins: 100, Remaining: 0},
			target:  Contender{Team: "B", Wins: 50, Remaining: 0},
			want:    0,
		},
		{
			name:    "needs every remaining game",
			pursuer: Contender{Team: "A", Wins: 60, Remaining: 11},
			target:  Contender{Team: "B", Wins: 65, Remaining: 5},
			want:    11,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Versus(tt.pursuer, tt.target))
		})
	}
}

func TestVersus_MonotoneInRemaining(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 500; trial++ {
		target := Contender{Wins: rng.Intn(90), Remaining: rng.Intn(60)}
		wins := rng.Intn(90)
		prev := Versus(Contender{Wins: wins, Remaining: 60}, target)
		for rem := 59; rem >= 0; rem-- {
			cur := Versus(Contender{Wins: wins, Remaining: rem}, target)
			assert.False(t, prev.Harder(cur), "wins=%d rem=%d prev=%v cur=%v", wins, rem, prev, cur)
			prev = cur
		}
	}
}

func TestNumber(t *testing.T) {
	assert.True(t, Eliminated.Harder(50))
	assert.False(t, Number(50).Harder(Eliminated))
	assert.False(t, Eliminated.Harder(Eliminated))
	assert.True(t, Number(3).Harder(2))
	assert.Equal(t, "X", Eliminated.String())
	assert.Equal(t, "clinched", Number(0).String())
	assert.Equal(t, "7", Number(7).String())
}

func TestRemaining(t *testing.T) {
	left, err := Remaining(144, standings.Standing{Team: "LG", Wins: 80, Losses: 60, Draws: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	_, err = Remaining(144, standings.Standing{Team: "LG", Wins: 80, Losses: 60, Draws: 6})
	var sie *ScheduleInconsistencyError
	require.True(t, errors.As(err, &sie))
	assert.Equal(t, game.TeamID("LG"), sie.Team)
	assert.Equal(t, 146, sie.Played)
}

func fourTeams() []Contender {
	return []Contender{
		{Team: "A", Wins: 90, Remaining: 4},
		{Team: "B", Wins: 85, Remaining: 4},
		{Team: "C", Wins: 80, Remaining: 4},
		{Team: "D", Wins: 70, Remaining: 4},
	}
}

func TestForCutoff(t *testing.T) {
	cs := fourTeams()
	tests := []struct {
		team   game.TeamID
		n      int
		target game.TeamID
		magic  Number
		tragic int
		status Status
	}{
		{team: "A", n: 2, target: "C", magic: 0, tragic: 15, status: StatusClinched},
		{team: "B", n: 2, target: "C", magic: 0, tragic: 10, status: StatusClinched},
		{team: "C", n: 2, target: "B", magic: Eliminated, tragic: 0, status: StatusEliminated},
		{team: "D", n: 2, target: "B", magic: Eliminated, tragic: 0, status: StatusEliminated},
		{team: "B", n: 1, target: "A", magic: Eliminated, tragic: 0, status: StatusEliminated},
		{team: "A", n: 1, target: "B", magic: 0, tragic: 10, status: StatusClinched},
		{team: "C", n: 3, target: "D", magic: 0, tragic: 15, status: StatusClinched},
	}
	for _, tt := range tests {
		e, err := ForCutoff(cs, tt.team, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.target, e.Target, "%s top-%d", tt.team, tt.n)
		assert.Equal(t, tt.magic, e.Magic, "%s top-%d", tt.team, tt.n)
		assert.Equal(t, tt.tragic, e.Tragic, "%s top-%d", tt.team, tt.n)
		assert.Equal(t, tt.status, e.Status, "%s top-%d", tt.team, tt.n)
	}
}

func TestForCutoff_Edges(t *testing.T) {
	cs := fourTeams()

	e, err := ForCutoff(cs, "D", 5)
	require.NoError(t, err)
	assert.Equal(t, StatusClinched, e.Status)
	assert.Empty(t, e.Target)

	_, err = ForCutoff(cs, "Z", 1)
	var ute *game.UnknownTeamError
	assert.True(t, errors.As(err, &ute))

	_, err = ForCutoff(cs, "A", 0)
	assert.Error(t, err)
}

func TestForCutoff_TargetShiftsWithCeilings(t *testing.T) {
	// C sits third but has games in hand, so its ceiling is the one A must
	// clear for first place. For a top-2 finish it is the second highest
	// ceiling, B's.
	cs := []Contender{
		{Team: "A", Wins: 70, Remaining: 10},
		{Team: "B", Wins: 66, Remaining: 4},
		{Team: "C", Wins: 65, Remaining: 12},
		{Team: "D", Wins: 50, Remaining: 10},
	}
	e, err := ForCutoff(cs, "A", 2)
	require.NoError(t, err)
	assert.Equal(t, game.TeamID("B"), e.Target)
	assert.Equal(t, Number(1), e.Magic)

	e, err = ForCutoff(cs, "A", 1)
	require.NoError(t, err)
	assert.Equal(t, game.TeamID("C"), e.Target)
	assert.Equal(t, Number(8), e.Magic)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		pursuer Contender
		target  Contender
		status  Status
	}{
		{"close", Contender{Team: "A", Wins: 70, Remaining: 20}, Contender{Team: "B", Wins: 60, Remaining: 14}, StatusMagic},
		{"competitive", Contender{Team: "A", Wins: 60, Remaining: 40}, Contender{Team: "B", Wins: 60, Remaining: 10}, StatusCompetitive},
		{"needs help", Contender{Team: "A", Wins: 60, Remaining: 40}, Contender{Team: "B", Wins: 60, Remaining: 20}, StatusTragic},
		{"cannot guarantee", Contender{Team: "A", Wins: 62, Remaining: 40}, Contender{Team: "B", Wins: 59, Remaining: 43}, StatusTragic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ForCutoff([]Contender{tt.pursuer, tt.target}, "A", 1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, e.Status)
		})
	}
}

func TestCalculate(t *testing.T) {
	rep, err := Calculate(fourTeams(), Rules{PlayoffSpots: 3, HomeField: 2})
	require.NoError(t, err)
	require.Len(t, rep.Teams, 4)

	a, ok := rep.Get("A")
	require.True(t, ok)
	assert.Equal(t, 94, a.MaxWins)
	assert.Equal(t, StatusClinched, a.Playoff.Status)
	assert.Equal(t, StatusClinched, a.Championship.Status)
	require.NotNil(t, a.HomeField)
	assert.Equal(t, 2, a.HomeField.Cutoff)

	d, ok := rep.Get("D")
	require.True(t, ok)
	assert.Equal(t, StatusEliminated, d.Playoff.Status)

	_, ok = rep.Get("Z")
	assert.False(t, ok)
}

func TestCalculate_RejectsNegativeRemaining(t *testing.T) {
	cs := fourTeams()
	cs[2].Remaining = -1
	_, err := Calculate(cs, Rules{PlayoffSpots: 2})
	var sie *ScheduleInconsistencyError
	require.True(t, errors.As(err, &sie))
	assert.Equal(t, game.TeamID("C"), sie.Team)

	_, err = Calculate(fourTeams(), Rules{})
	assert.Error(t, err)
}

func TestMatrix(t *testing.T) {
	m, err := Matrix(fourTeams())
	require.NoError(t, err)
	require.Len(t, m, 4)
	for team, row := range m {
		require.Len(t, row, 3, team)
		for i, e := range row {
			assert.Equal(t, i+1, e.Cutoff)
		}
		// a looser cutoff is never harder to clinch
		for i := 1; i < len(row); i++ {
			assert.False(t, row[i].Magic.Harder(row[i-1].Magic), "%s n=%d", team, i+1)
		}
	}
	assert.Equal(t, StatusClinched, m["C"][2].Status)
}

func TestContenders(t *testing.T) {
	roster := game.RosterOf("A", "B")
	tbl, err := standings.Compute(roster, nil)
	require.NoError(t, err)
	cs, err := Contenders(tbl, 144)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, 144, cs[0].Remaining)
}
