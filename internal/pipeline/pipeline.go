// Package pipeline orchestrates one full run: gather a snapshot from
// the providers, reconcile identities, build the lineup, scan the
// waiver wire, flag IL moves, and persist the report. Upstream failures
// degrade the run where possible; only a missing roster aborts it.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/il"
	"github.com/courtvision/lineup-service/internal/lineup"
	"github.com/courtvision/lineup-service/internal/match"
	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/internal/value"
	"github.com/courtvision/lineup-service/internal/waiver"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// ScoreSource supplies the external score snapshot.
type ScoreSource interface {
	Fetch(ctx context.Context) (map[string]*types.ScoreRecord, error)
}

// PlatformSource supplies the roster and the free-agent pool.
type PlatformSource interface {
	Roster(ctx context.Context) ([]types.RosterPlayer, error)
	FreeAgents(ctx context.Context, limit int) ([]types.FreeAgentPlayer, error)
}

// ScheduleSource answers game-day and games-remaining questions.
type ScheduleSource interface {
	TeamsPlaying(ctx context.Context, date time.Time) (map[string]bool, error)
	GamesRemaining(ctx context.Context, from time.Time) (map[string]int, error)
}

// MVPSource supplies the league's weekly MVP table.
type MVPSource interface {
	Fetch(ctx context.Context) ([]types.MVPEntry, error)
}

// ReportStore persists run output and the untouchable list.
type ReportStore interface {
	GetUntouchables(ctx context.Context) (map[string]float64, error)
	SetUntouchables(ctx context.Context, untouchables map[string]float64) error
	SetLatestReport(ctx context.Context, report *types.Report) error
}

// Config carries the pipeline's tunables.
type Config struct {
	FreeAgentCap int
}

// Pipeline wires the decision stages together.
type Pipeline struct {
	cfg        Config
	scores     ScoreSource
	platform   PlatformSource
	schedule   ScheduleSource
	mvp        MVPSource
	store      ReportStore
	matcher    *match.Matcher
	model      value.Model
	assigner   *lineup.Assigner
	comparator *waiver.Comparator
	ilManager  *il.Manager
	log        *logrus.Entry
}

// New assembles a pipeline from its collaborators.
func New(cfg Config, scores ScoreSource, platform PlatformSource, schedule ScheduleSource, mvp MVPSource, store ReportStore,
	matcher *match.Matcher, model value.Model, assigner *lineup.Assigner, comparator *waiver.Comparator, ilManager *il.Manager) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		scores:     scores,
		platform:   platform,
		schedule:   schedule,
		mvp:        mvp,
		store:      store,
		matcher:    matcher,
		model:      model,
		assigner:   assigner,
		comparator: comparator,
		ilManager:  ilManager,
		log:        logger.WithComponent("pipeline"),
	}
}

// Run executes one full pipeline pass for the given date and returns
// the report. The report is also persisted as the latest run; a persist
// failure is logged but does not fail the run.
func (p *Pipeline) Run(ctx context.Context, date time.Time) (*types.Report, error) {
	runID := uuid.New().String()
	log := p.log.WithField("run_id", runID)
	start := time.Now()
	log.WithField("date", date.Format("2006-01-02")).Info("Pipeline run starting")

	snap, alerts, err := p.gather(ctx, date, log)
	if err != nil {
		return nil, err
	}

	unmatchedRoster := p.attachRosterScores(snap)
	unmatchedFA := p.attachFreeAgentScores(snap)
	p.applyUntouchables(snap)
	p.applySchedule(snap)

	assignment := p.assigner.Build(snap.RosterPlayers)
	benchShape, shapeMet := lineup.BenchShape(assignment.Bench)
	swaps := p.comparator.FindUpgrades(dropCandidates(assignment), snap.FreeAgents, snap.GamesRemainingByTeam)
	ilFlags := p.ilManager.Evaluate(assignment)

	alerts = append(alerts, il.Summaries(ilFlags)...)
	alerts = append(alerts, assignmentAlerts(assignment, snap.TeamsPlayingToday != nil)...)
	if !shapeMet {
		alerts = append(alerts, fmt.Sprintf("bench shape off target: %s", benchShape))
	}

	unmatched := append(unmatchedRoster, unmatchedFA...)
	sort.Strings(unmatched)

	report := &types.Report{
		RunID:          runID,
		Date:           date.Format("2006-01-02"),
		Assignment:     assignment,
		Swaps:          swaps,
		BenchShapeDesc: benchShape,
		BenchShapeMet:  shapeMet,
		ILFlags:        ilFlags,
		Untouchables:   snap.UntouchableNames,
		Unmatched:      unmatched,
		Alerts:         alerts,
		GeneratedAt:    time.Now().UTC(),
	}

	if err := p.store.SetLatestReport(ctx, report); err != nil {
		log.WithError(err).Warn("Failed to persist latest report")
	}

	log.WithFields(logrus.Fields{
		"roster":    len(snap.RosterPlayers),
		"swaps":     len(swaps),
		"unmatched": len(unmatched),
		"alerts":    len(report.Alerts),
		"elapsed":   time.Since(start),
	}).Info("Pipeline run complete")

	return report, nil
}

// gather materializes the run snapshot. Everything except the roster is
// allowed to fail: a failed source yields an empty slice or map plus an
// alert, and the run continues with what it has.
func (p *Pipeline) gather(ctx context.Context, date time.Time, log *logrus.Entry) (*types.Snapshot, []string, error) {
	var alerts []string

	roster, err := p.platform.Roster(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("roster fetch failed, cannot run: %w", err)
	}

	// TeamsPlayingToday stays nil on lookup failure so the no-game alert
	// is suppressed rather than firing for the whole lineup.
	snap := &types.Snapshot{
		Date:                 date,
		RosterPlayers:        roster,
		ScoreRecords:         map[string]*types.ScoreRecord{},
		UntouchableNames:     map[string]float64{},
		GamesRemainingByTeam: map[string]int{},
	}

	if records, err := p.scores.Fetch(ctx); err != nil {
		log.WithError(err).Error("Score fetch failed, running without scores")
		alerts = append(alerts, "score source unavailable, lineup built on rank fallbacks only")
	} else {
		snap.ScoreRecords = records
	}

	if pool, err := p.platform.FreeAgents(ctx, p.cfg.FreeAgentCap); err != nil {
		log.WithError(err).Error("Free agent fetch failed, skipping waiver scan")
		alerts = append(alerts, "free agent pool unavailable, waiver scan skipped")
	} else {
		snap.FreeAgents = pool
	}

	if untouchables, err := p.store.GetUntouchables(ctx); err != nil {
		log.WithError(err).Error("Untouchables fetch failed, running without protections")
		alerts = append(alerts, "untouchable list unavailable")
	} else {
		snap.UntouchableNames = untouchables
	}

	if teams, err := p.schedule.TeamsPlaying(ctx, date); err != nil {
		log.WithError(err).Warn("Game-day lookup failed")
		alerts = append(alerts, "game-day schedule unavailable")
	} else if teams != nil {
		snap.TeamsPlayingToday = teams
	} else {
		snap.TeamsPlayingToday = map[string]bool{}
	}

	if remaining, err := p.schedule.GamesRemaining(ctx, date); err != nil {
		log.WithError(err).Warn("Games-remaining lookup failed")
		alerts = append(alerts, "weekly schedule unavailable, waiver deltas use zero games")
	} else {
		snap.GamesRemainingByTeam = remaining
	}

	return snap, alerts, nil
}

// attachRosterScores binds score records to roster players via the
// three-tier matcher and returns the roster names left without a score.
func (p *Pipeline) attachRosterScores(snap *types.Snapshot) []string {
	records, pool := scorePool(snap.ScoreRecords)
	names := make([]string, len(snap.RosterPlayers))
	for i := range snap.RosterPlayers {
		names[i] = snap.RosterPlayers[i].Identity.DisplayName
	}

	byName := make(map[string]*types.ScoreRecord)
	matched, unmatched := p.matcher.MatchAll(names, pool)
	for idx, name := range matched {
		byName[name] = records[idx]
	}
	for i := range snap.RosterPlayers {
		snap.RosterPlayers[i].Score = byName[snap.RosterPlayers[i].Identity.DisplayName]
	}
	return unmatched
}

// attachFreeAgentScores does the same for the free-agent pool. An FA
// without a score simply never qualifies for a swap.
func (p *Pipeline) attachFreeAgentScores(snap *types.Snapshot) []string {
	records, pool := scorePool(snap.ScoreRecords)
	names := make([]string, len(snap.FreeAgents))
	for i := range snap.FreeAgents {
		names[i] = snap.FreeAgents[i].Identity.DisplayName
	}

	byName := make(map[string]*types.ScoreRecord)
	matched, unmatched := p.matcher.MatchAll(names, pool)
	for idx, name := range matched {
		byName[name] = records[idx]
	}
	for i := range snap.FreeAgents {
		snap.FreeAgents[i].Score = byName[snap.FreeAgents[i].Identity.DisplayName]
	}
	return unmatched
}

// scorePool flattens the score map into a deterministic candidate pool.
func scorePool(records map[string]*types.ScoreRecord) ([]*types.ScoreRecord, []match.Candidate) {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flat := make([]*types.ScoreRecord, len(keys))
	names := make([]string, len(keys))
	for i, k := range keys {
		flat[i] = records[k]
		names[i] = records[k].Identity.DisplayName
	}
	return flat, match.BuildCandidates(names)
}

// applyUntouchables marks roster players on the protected list.
func (p *Pipeline) applyUntouchables(snap *types.Snapshot) {
	for i := range snap.RosterPlayers {
		_, ok := snap.UntouchableNames[snap.RosterPlayers[i].Identity.NormalizedKey]
		snap.RosterPlayers[i].IsUntouchable = ok
	}
}

// applySchedule fills per-player game-day and games-remaining fields
// from the team-level schedule maps.
func (p *Pipeline) applySchedule(snap *types.Snapshot) {
	for i := range snap.RosterPlayers {
		snap.RosterPlayers[i].HasGameToday = snap.TeamsPlayingToday[snap.RosterPlayers[i].Team]
	}
	for i := range snap.FreeAgents {
		snap.FreeAgents[i].GamesRemaining = snap.GamesRemainingByTeam[snap.FreeAgents[i].Team]
	}
}

// RefreshUntouchables rebuilds the protected-player list from the
// league MVP table: roster players appearing in the table become
// untouchable, keyed by normalized name with their MVP percentage as
// the stored weight.
func (p *Pipeline) RefreshUntouchables(ctx context.Context) (map[string]float64, error) {
	roster, err := p.platform.Roster(ctx)
	if err != nil {
		return nil, fmt.Errorf("roster fetch failed: %w", err)
	}
	entries, err := p.mvp.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("mvp table fetch failed: %w", err)
	}

	names := make([]string, len(roster))
	for i := range roster {
		names[i] = roster[i].Identity.DisplayName
	}
	pool := match.BuildCandidates(names)

	untouchables := make(map[string]float64)
	for _, entry := range entries {
		res := p.matcher.Match(entry.Name, pool)
		if !res.Matched() {
			continue
		}
		key := roster[res.Index].Identity.NormalizedKey
		if pct, ok := untouchables[key]; !ok || entry.MVPPercent > pct {
			untouchables[key] = entry.MVPPercent
		}
	}

	if err := p.store.SetUntouchables(ctx, untouchables); err != nil {
		return nil, fmt.Errorf("failed to persist untouchables: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"mvp_rows":     len(entries),
		"untouchables": len(untouchables),
	}).Info("Untouchable list refreshed")
	return untouchables, nil
}

// dropCandidates collects the players the waiver scan may offer as the
// drop side: the whole bench plus any active player holding a slot on
// weak signal.
func dropCandidates(a types.Assignment) []*types.RosterPlayer {
	out := make([]*types.RosterPlayer, 0, len(a.Bench))
	out = append(out, a.Bench...)
	for _, sa := range a.Active {
		if sa.Player != nil && sa.LowConfidence {
			out = append(out, sa.Player)
		}
	}
	return out
}

// assignmentAlerts surfaces lineup problems worth a human look: empty
// slots, injured or weak-signal players holding active slots, and active
// players with no game on the board today. The no-game check only runs
// when the game-day lookup actually produced data.
func assignmentAlerts(a types.Assignment, gameDayKnown bool) []string {
	var alerts []string
	for _, gap := range a.Gaps {
		alerts = append(alerts, fmt.Sprintf("no eligible player for %s slot", gap))
	}
	for _, sa := range a.Active {
		if sa.Player == nil {
			continue
		}
		if sa.FlagInjured {
			alerts = append(alerts, fmt.Sprintf("%s is %s but holds the %s slot",
				sa.Player.Identity.DisplayName, sa.Player.InjuryStatus, sa.Slot))
		}
		if sa.LowConfidence {
			detail := "no score data"
			if sa.Player.Score != nil && sa.Player.Score.Rank30 > 0 {
				detail = fmt.Sprintf("30-day rank %d", sa.Player.Score.Rank30)
			}
			alerts = append(alerts, fmt.Sprintf("%s holds the %s slot on weak signal (%s)",
				sa.Player.Identity.DisplayName, sa.Slot, detail))
		}
	}
	if gameDayKnown {
		var noGame []string
		for _, sa := range a.Active {
			if sa.Player == nil || sa.Player.HasGameToday || types.HardOutStatuses[sa.Player.InjuryStatus] {
				continue
			}
			noGame = append(noGame, sa.Player.Identity.DisplayName)
		}
		if len(noGame) > 0 {
			alerts = append(alerts, fmt.Sprintf("active players with no game today: %s", strings.Join(noGame, ", ")))
		}
	}
	return alerts
}
