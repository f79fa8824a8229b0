package process

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charleschow/pennant-race/internal/adapters/outbound/daum"
	"github.com/charleschow/pennant-race/internal/config"
	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/magic"
	"github.com/charleschow/pennant-race/internal/core/report"
	"github.com/charleschow/pennant-race/internal/core/verify"
	"github.com/charleschow/pennant-race/internal/events"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

// ErrScrapeDisabled is returned by Refresh for a league without a source.
var ErrScrapeDisabled = errors.New("scraping disabled for league")

// Source lists completed games for one month of a league's schedule.
type Source interface {
	FetchMonth(ctx context.Context, slug string, year, month int) ([]daum.RawGame, error)
}

// Store is the persistence the pipeline needs.
type Store interface {
	UpsertGames(ctx context.Context, league, source string, games []game.Game) (int, error)
	Season(ctx context.Context, league string) (game.Season, error)
	SaveMagicSnapshot(ctx context.Context, league string, calcDate time.Time, rep magic.Report) error
}

type Options struct {
	Year     int
	Interval time.Duration
	// Source is nil when scraping is off.
	Source Source
	// Now stubs the clock for month selection.
	Now func() time.Time
}

// IngestResult summarizes one batch of incoming games.
type IngestResult struct {
	Source   string   `json:"source"`
	Received int      `json:"received"`
	Inserted int      `json:"inserted"`
	Rejected int      `json:"rejected"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// SeasonProcess owns one league: it pulls games in, stores them and keeps
// the latest report bundle. Refresh, Ingest and Recompute are serialized.
type SeasonProcess struct {
	key      string
	def      config.LeagueDef
	roster   *game.Roster
	rules    report.Rules
	year     int
	interval time.Duration
	source   Source
	store    Store
	bus      *events.Bus
	now      func() time.Time

	mu     sync.Mutex
	latest atomic.Pointer[report.Bundle]
	seq    atomic.Int64
}

func New(key string, def config.LeagueDef, st Store, bus *events.Bus, opts Options) *SeasonProcess {
	p := &SeasonProcess{
		key:      key,
		def:      def,
		roster:   def.Roster(),
		rules:    def.Rules(key),
		year:     opts.Year,
		interval: opts.Interval,
		source:   opts.Source,
		store:    st,
		bus:      bus,
		now:      opts.Now,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.year == 0 {
		p.year = p.now().Year()
	}
	if p.interval <= 0 {
		p.interval = 30 * time.Minute
	}
	return p
}

func (p *SeasonProcess) League() string        { return p.key }
func (p *SeasonProcess) Name() string          { return p.def.Name }
func (p *SeasonProcess) Roster() *game.Roster  { return p.roster }
func (p *SeasonProcess) Rules() report.Rules   { return p.rules }
func (p *SeasonProcess) Exhibition() []string  { return p.def.Exhibition }
func (p *SeasonProcess) CanScrape() bool       { return p.source != nil && p.def.ScrapeSlug != "" }
func (p *SeasonProcess) Latest() *report.Bundle { return p.latest.Load() }

// Run recomputes from the store, then refreshes on every tick until ctx
// is cancelled.
func (p *SeasonProcess) Run(ctx context.Context) {
	if _, err := p.Recompute(ctx); err != nil {
		telemetry.Errorf("%s: initial recompute: %v", p.key, err)
	}
	if !p.CanScrape() {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		if _, err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
			telemetry.Warnf("%s: refresh: %v", p.key, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh scrapes every season month up to the current one, stores the
// games that resolve and recomputes. Rows with unknown teams or bad scores
// are logged and counted, never stored.
func (p *SeasonProcess) Refresh(ctx context.Context) (IngestResult, error) {
	if !p.CanScrape() {
		return IngestResult{}, fmt.Errorf("%s: %w", p.key, ErrScrapeDisabled)
	}

	var (
		rows     []daum.RawGame
		firstErr error
		fetched  int
	)
	for _, month := range p.months() {
		got, err := p.source.FetchMonth(ctx, p.def.ScrapeSlug, p.year, month)
		if err != nil {
			if ctx.Err() != nil {
				return IngestResult{}, ctx.Err()
			}
			telemetry.Warnf("%s: fetch %d-%02d: %v", p.key, p.year, month, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fetched++
		rows = append(rows, got...)
	}
	if fetched == 0 && firstErr != nil {
		return IngestResult{}, fmt.Errorf("%s: every month failed: %w", p.key, firstErr)
	}

	conv := daum.Convert(rows, p.roster, p.def.Exhibition)
	res := IngestResult{Source: "daum", Received: len(rows), Skipped: len(conv.Skipped), Rejected: len(conv.Errors)}
	for _, rowErr := range conv.Errors {
		telemetry.Warnf("%s: rejected row %v", p.key, rowErr)
		res.Errors = append(res.Errors, rowErr.Error())
	}
	telemetry.Metrics.GamesRejected.Add(int64(res.Rejected))
	telemetry.Metrics.GamesSkipped.Add(int64(res.Skipped))

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.persist(ctx, &res, conv.Games); err != nil {
		return res, err
	}
	if _, err := p.recompute(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Ingest stores a caller-supplied batch. The batch is checked against the
// roster first and rejected whole if any game is invalid.
func (p *SeasonProcess) Ingest(ctx context.Context, source string, games []game.Game) (IngestResult, error) {
	for i, g := range games {
		if err := p.roster.CheckGame(g); err != nil {
			telemetry.Metrics.GamesRejected.Inc()
			return IngestResult{Source: source, Received: len(games), Rejected: 1}, fmt.Errorf("game %d: %w", i, err)
		}
	}

	res := IngestResult{Source: source, Received: len(games)}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.persist(ctx, &res, games); err != nil {
		return res, err
	}
	if _, err := p.recompute(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func (p *SeasonProcess) persist(ctx context.Context, res *IngestResult, games []game.Game) error {
	if len(games) > 0 {
		current, err := p.store.Season(ctx, p.key)
		if err != nil {
			return fmt.Errorf("%s: load season: %w", p.key, err)
		}
		// Dry run so a batch that breaks the schedule never reaches the store.
		if _, err := report.Build(p.rules, p.roster, merge(current, games)); err != nil {
			telemetry.Metrics.GamesRejected.Add(int64(len(games)))
			return fmt.Errorf("%s: batch rejected: %w", p.key, err)
		}

		n, err := p.store.UpsertGames(ctx, p.key, res.Source, games)
		if err != nil {
			return fmt.Errorf("%s: store games: %w", p.key, err)
		}
		res.Inserted = n
		telemetry.Metrics.GamesIngested.Add(int64(n))
	}
	telemetry.Infof("%s: ingested from %s  received=%d inserted=%d rejected=%d skipped=%d",
		p.key, res.Source, res.Received, res.Inserted, res.Rejected, res.Skipped)

	p.publish(events.EventGamesIngested, events.GamesIngestedEvent{
		League:   p.key,
		Source:   res.Source,
		Inserted: res.Inserted,
		Rejected: res.Rejected,
		Skipped:  res.Skipped,
	})
	return nil
}

// Recompute rebuilds the bundle from the stored season and swaps it in.
func (p *SeasonProcess) Recompute(ctx context.Context) (*report.Bundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recompute(ctx)
}

func (p *SeasonProcess) recompute(ctx context.Context) (*report.Bundle, error) {
	start := time.Now()
	season, err := p.store.Season(ctx, p.key)
	if err != nil {
		telemetry.Metrics.RecomputeErrors.Inc()
		return nil, fmt.Errorf("%s: load season: %w", p.key, err)
	}
	b, err := report.Build(p.rules, p.roster, season)
	if err != nil {
		telemetry.Metrics.RecomputeErrors.Inc()
		return nil, fmt.Errorf("%s: build report: %w", p.key, err)
	}

	if res := verify.Bundle(b, verify.DefaultEpsilon); !res.OK() {
		for _, v := range res.Violations {
			telemetry.Errorf("%s: consistency: %s", p.key, v)
		}
	}

	if !b.AsOf.IsZero() {
		if err := p.store.SaveMagicSnapshot(ctx, p.key, b.AsOf, b.Magic); err != nil {
			telemetry.Warnf("%s: save magic snapshot: %v", p.key, err)
		}
	}

	prev := p.latest.Swap(b)
	telemetry.Metrics.Recomputes.Inc()
	telemetry.Metrics.RecomputeTime.Since(start)
	telemetry.Debugf("%s: recomputed %d games in %s", p.key, len(season), time.Since(start))

	p.publish(events.EventReportUpdated, events.ReportUpdatedEvent{
		League:    p.key,
		AsOf:      b.Standings.AsOf,
		Games:     len(season),
		Standings: b.Standings,
		Magic:     b.MagicNums,
	})
	p.publishStatusChanges(prev, b)
	return b, nil
}

// publishStatusChanges announces teams that newly clinched or were
// eliminated since prev. The first bundle has no baseline and announces
// nothing.
func (p *SeasonProcess) publishStatusChanges(prev, next *report.Bundle) {
	if prev == nil {
		return
	}
	for _, tm := range next.Magic.Teams {
		old, ok := prev.Magic.Get(tm.Team)
		if !ok {
			continue
		}
		p.statusChange(tm.Team, events.KindPlayoff, old.Playoff.Status, tm.Playoff.Status, next.Standings.AsOf)
		p.statusChange(tm.Team, events.KindChampionship, old.Championship.Status, tm.Championship.Status, next.Standings.AsOf)
	}
}

func (p *SeasonProcess) statusChange(team game.TeamID, kind string, from, to magic.Status, asOf string) {
	if from == to || (to != magic.StatusClinched && to != magic.StatusEliminated) {
		return
	}
	telemetry.Infof("%s: %s %s -> %s (%s)", p.key, team, from, to, kind)
	p.publish(events.EventStatusChange, events.StatusChangeEvent{
		League: p.key,
		Team:   string(team),
		Name:   p.roster.Name(team),
		Kind:   kind,
		From:   from,
		To:     to,
		AsOf:   asOf,
	})
}

func (p *SeasonProcess) publish(t events.EventType, payload any) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(events.Event{
		ID:        fmt.Sprintf("%s-%d", p.key, p.seq.Add(1)),
		Type:      t,
		League:    p.key,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// months returns the configured season months that have started.
func (p *SeasonProcess) months() []int {
	now := p.now()
	var out []int
	for _, m := range p.def.SeasonMonths {
		if p.year == now.Year() && m > int(now.Month()) {
			continue
		}
		if p.year > now.Year() {
			continue
		}
		out = append(out, m)
	}
	return out
}

// merge applies batch to season the way the store does: a game equal to a
// stored game of the same pairing and date that no earlier batch game
// matched is a re-delivery; every other game is appended.
func merge(season game.Season, batch []game.Game) game.Season {
	out := append(game.Season(nil), season...)
	claimed := make([]bool, len(season))
	for _, g := range batch {
		dup := false
		for i, s := range season {
			if !claimed[i] && sameGame(s, g) {
				claimed[i] = true
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, g)
		}
	}
	return game.SortChronological(out)
}

func sameGame(a, b game.Game) bool {
	return a.Date.Equal(b.Date) && a.AwayTeam == b.AwayTeam && a.HomeTeam == b.HomeTeam &&
		a.AwayScore == b.AwayScore && a.HomeScore == b.HomeScore
}
