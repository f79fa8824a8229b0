package report

import (
	"fmt"
	"time"

	"github.com/charleschow/pennant-race/internal/core/form"
	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/magic"
	"github.com/charleschow/pennant-race/internal/core/standings"
)

// Rules are the per-league constants a report is computed under.
type Rules struct {
	League           string
	SeasonGames      int
	GamesPerOpponent int
	PlayoffSpots     int
	HomeField        int
	FormWindow       int
}

// StandingRow is one line of the standings report. JSON names are stable.
type StandingRow struct {
	Rank               int         `json:"rank"`
	Team               game.TeamID `json:"team"`
	Name               string      `json:"name"`
	Games              int         `json:"games"`
	Wins               int         `json:"wins"`
	Losses             int         `json:"losses"`
	Draws              int         `json:"draws"`
	WinPct             float64     `json:"win_pct"`
	WinPctDisplay      string      `json:"win_pct_display"`
	GamesBehind        float64     `json:"games_behind"`
	GamesBehindDisplay string      `json:"games_behind_display"`
	HomeWins           int         `json:"home_wins"`
	HomeLosses         int         `json:"home_losses"`
	HomeDraws          int         `json:"home_draws"`
	AwayWins           int         `json:"away_wins"`
	AwayLosses         int         `json:"away_losses"`
	AwayDraws          int         `json:"away_draws"`
	HomeRecord         string      `json:"home_record"`
	AwayRecord         string      `json:"away_record"`
	Recent10           string      `json:"recent10"`
	Streak             string      `json:"streak"`
	RunsScored         int         `json:"runs_scored"`
	RunsAllowed        int         `json:"runs_allowed"`
	RunDiff            int         `json:"run_diff"`
	Remaining          int         `json:"remaining"`
}

type StandingsReport struct {
	League string        `json:"league"`
	AsOf   string        `json:"as_of"`
	Rows   []StandingRow `json:"rows"`
}

// MagicRow is one line of the magic-number report. Magic numbers use -1 for
// "cannot guarantee" and 0 for clinched.
type MagicRow struct {
	Rank               int          `json:"rank"`
	Team               game.TeamID  `json:"team"`
	Name               string       `json:"name"`
	Wins               int          `json:"wins"`
	Losses             int          `json:"losses"`
	Draws              int          `json:"draws"`
	Remaining          int          `json:"remaining"`
	MaxWins            int          `json:"max_wins"`
	PlayoffMagic       magic.Number `json:"playoff_magic"`
	PlayoffTarget      game.TeamID  `json:"playoff_target,omitempty"`
	PlayoffTragic      int          `json:"playoff_tragic"`
	PlayoffStatus      magic.Status `json:"playoff_status"`
	ChampionshipMagic  magic.Number `json:"championship_magic"`
	ChampionshipTarget game.TeamID  `json:"championship_target,omitempty"`
	ChampionshipTragic int          `json:"championship_tragic"`
	ChampionshipStatus magic.Status `json:"championship_status"`
	HomeFieldMagic     *int         `json:"home_field_magic,omitempty"`
	HomeFieldStatus    magic.Status `json:"home_field_status,omitempty"`
}

type MagicReport struct {
	League       string     `json:"league"`
	AsOf         string     `json:"as_of"`
	PlayoffSpots int        `json:"playoff_spots"`
	Rows         []MagicRow `json:"rows"`
}

// MatrixCell is one team's outlook for a single finishing position.
type MatrixCell struct {
	Rank   int          `json:"rank"`
	Magic  magic.Number `json:"magic"`
	Tragic int          `json:"tragic"`
	Status magic.Status `json:"status"`
}

type MatrixRow struct {
	Team  game.TeamID  `json:"team"`
	Name  string       `json:"name"`
	Cells []MatrixCell `json:"cells"`
}

type MatrixReport struct {
	League string      `json:"league"`
	AsOf   string      `json:"as_of"`
	Rows   []MatrixRow `json:"rows"`
}

// SeriesCell is a season series between two teams.
type SeriesCell struct {
	Opponent   game.TeamID `json:"opponent"`
	Record     string      `json:"record"`
	HomeRecord string      `json:"home_record"`
	AwayRecord string      `json:"away_record"`
	Remaining  int         `json:"remaining"`
}

type SeriesRow struct {
	Team   game.TeamID  `json:"team"`
	Series []SeriesCell `json:"series"`
}

type HeadToHeadReport struct {
	League string      `json:"league"`
	AsOf   string      `json:"as_of"`
	Rows   []SeriesRow `json:"rows"`
}

// Bundle is everything derived from one season snapshot. It is built in one
// pass and never mutated afterwards.
type Bundle struct {
	Rules      Rules
	AsOf       time.Time
	Roster     *game.Roster
	Season     game.Season
	Table      *standings.Table
	Forms      map[game.TeamID]form.Form
	Contenders []magic.Contender
	Magic      magic.Report

	Standings  StandingsReport
	MagicNums  MagicReport
	Matrix     MatrixReport
	HeadToHead HeadToHeadReport
}

// Build runs the aggregator, the form analyzer and the magic-number
// calculator over season and assembles the reports.
func Build(rules Rules, roster *game.Roster, season game.Season) (*Bundle, error) {
	table, err := standings.Compute(roster, season)
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	forms, err := form.AnalyzeAll(roster, season, rules.FormWindow)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	contenders, err := magic.Contenders(table, rules.SeasonGames)
	if err != nil {
		return nil, fmt.Errorf("magic: %w", err)
	}
	mrep, err := magic.Calculate(contenders, magic.Rules{PlayoffSpots: rules.PlayoffSpots, HomeField: rules.HomeField})
	if err != nil {
		return nil, fmt.Errorf("magic: %w", err)
	}
	matrix, err := magic.Matrix(contenders)
	if err != nil {
		return nil, fmt.Errorf("magic matrix: %w", err)
	}

	b := &Bundle{
		Rules:      rules,
		Roster:     roster,
		Season:     season,
		Table:      table,
		Forms:      forms,
		Contenders: contenders,
		Magic:      mrep,
	}
	if last, ok := season.Last(); ok {
		b.AsOf = last.Date
	}
	asOf := b.asOfString()

	b.Standings = StandingsReport{League: rules.League, AsOf: asOf, Rows: b.standingRows()}
	b.MagicNums = MagicReport{League: rules.League, AsOf: asOf, PlayoffSpots: rules.PlayoffSpots, Rows: b.magicRows()}
	b.Matrix = MatrixReport{League: rules.League, AsOf: asOf, Rows: b.matrixRows(matrix)}
	b.HeadToHead = HeadToHeadReport{League: rules.League, AsOf: asOf, Rows: b.seriesRows()}
	return b, nil
}

func (b *Bundle) asOfString() string {
	if b.AsOf.IsZero() {
		return ""
	}
	return b.AsOf.Format(game.DateLayout)
}

func (b *Bundle) standingRows() []StandingRow {
	rows := make([]StandingRow, 0, len(b.Table.Ranking))
	for i, r := range b.Table.Ranking {
		f := b.Forms[r.Team]
		rows = append(rows, StandingRow{
			Rank:               r.Rank,
			Team:               r.Team,
			Name:               b.Roster.Name(r.Team),
			Games:              r.Games,
			Wins:               r.Wins,
			Losses:             r.Losses,
			Draws:              r.Draws,
			WinPct:             Round(r.WinPct(), 3),
			WinPctDisplay:      FormatPct(r.WinPct()),
			GamesBehind:        Round(r.GamesBehind, 1),
			GamesBehindDisplay: FormatGB(r.GamesBehind, i == 0),
			HomeWins:           r.HomeWins,
			HomeLosses:         r.HomeLosses,
			HomeDraws:          r.HomeDraws,
			AwayWins:           r.AwayWins,
			AwayLosses:         r.AwayLosses,
			AwayDraws:          r.AwayDraws,
			HomeRecord:         r.HomeRecord(),
			AwayRecord:         r.AwayRecord(),
			Recent10:           f.Record(),
			Streak:             f.Streak.String(),
			RunsScored:         r.RunsScored,
			RunsAllowed:        r.RunsAllowed,
			RunDiff:            r.RunDiff(),
			Remaining:          b.Contenders[i].Remaining,
		})
	}
	return rows
}

func (b *Bundle) magicRows() []MagicRow {
	rows := make([]MagicRow, 0, len(b.Magic.Teams))
	for i, tm := range b.Magic.Teams {
		c := b.Contenders[i]
		row := MagicRow{
			Rank:               i + 1,
			Team:               tm.Team,
			Name:               b.Roster.Name(tm.Team),
			Wins:               c.Wins,
			Losses:             c.Losses,
			Draws:              c.Draws,
			Remaining:          tm.Remaining,
			MaxWins:            tm.MaxWins,
			PlayoffMagic:       tm.Playoff.Magic,
			PlayoffTarget:      tm.Playoff.Target,
			PlayoffTragic:      tm.Playoff.Tragic,
			PlayoffStatus:      tm.Playoff.Status,
			ChampionshipMagic:  tm.Championship.Magic,
			ChampionshipTarget: tm.Championship.Target,
			ChampionshipTragic: tm.Championship.Tragic,
			ChampionshipStatus: tm.Championship.Status,
		}
		if tm.HomeField != nil {
			m := int(tm.HomeField.Magic)
			row.HomeFieldMagic = &m
			row.HomeFieldStatus = tm.HomeField.Status
		}
		rows = append(rows, row)
	}
	return rows
}

func (b *Bundle) matrixRows(matrix map[game.TeamID][]magic.Entry) []MatrixRow {
	rows := make([]MatrixRow, 0, len(b.Contenders))
	for _, c := range b.Contenders {
		entries := matrix[c.Team]
		cells := make([]MatrixCell, len(entries))
		for i, e := range entries {
			cells[i] = MatrixCell{Rank: e.Cutoff, Magic: e.Magic, Tragic: e.Tragic, Status: e.Status}
		}
		rows = append(rows, MatrixRow{Team: c.Team, Name: b.Roster.Name(c.Team), Cells: cells})
	}
	return rows
}

func (b *Bundle) seriesRows() []SeriesRow {
	teams := b.Roster.Teams()
	rows := make([]SeriesRow, 0, len(teams))
	for _, a := range teams {
		row := SeriesRow{Team: a, Series: make([]SeriesCell, 0, len(teams)-1)}
		for _, o := range teams {
			if o == a {
				continue
			}
			rec := b.Table.HeadToHead.Get(a, o)
			cell := SeriesCell{
				Opponent:   o,
				Record:     rec.String(),
				HomeRecord: standings.FormatRecord(rec.HomeWins, rec.HomeLosses, rec.HomeDraws),
				AwayRecord: standings.FormatRecord(rec.AwayWins, rec.AwayLosses, rec.AwayDraws),
			}
			if b.Rules.GamesPerOpponent > 0 {
				cell.Remaining = b.Table.HeadToHead.Remaining(a, o, b.Rules.GamesPerOpponent)
			}
			row.Series = append(row.Series, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

// Form returns a team's form over a custom window, recomputed from the
// bundle's season.
func (b *Bundle) Form(team game.TeamID, window int) (form.Form, error) {
	if !b.Roster.Contains(team) {
		return form.Form{}, &game.UnknownTeamError{Team: team}
	}
	return form.Analyze(team, b.Season.ForTeam(team), window)
}

// MagicFor recomputes the magic report under a different playoff cutoff.
func (b *Bundle) MagicFor(cutoff int) (MagicReport, error) {
	if cutoff == b.Rules.PlayoffSpots {
		return b.MagicNums, nil
	}
	mrep, err := magic.Calculate(b.Contenders, magic.Rules{PlayoffSpots: cutoff, HomeField: b.Rules.HomeField})
	if err != nil {
		return MagicReport{}, err
	}
	alt := *b
	alt.Magic = mrep
	return MagicReport{League: b.Rules.League, AsOf: b.asOfString(), PlayoffSpots: cutoff, Rows: alt.magicRows()}, nil
}
