package lineup

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/internal/value"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// Assigner maps a roster onto active slots in two greedy phases: the
// single-position slots fill first on long-window form, then the flex
// slots on short-window form. Within a phase, slots fill most-restrictive
// first so a permissive slot never steals a player a tighter slot needs.
type Assigner struct {
	slots            []SlotRule
	model            value.Model
	benchSlots       int
	lowRankThreshold int
	log              *logrus.Entry
}

// NewAssigner creates an assigner over the default slot shape.
// lowRankThreshold marks placements backed only by a rank fallback worse
// than the threshold as low confidence.
func NewAssigner(model value.Model, benchSlots, lowRankThreshold int) *Assigner {
	return &Assigner{
		slots:            DefaultSlots(),
		model:            model,
		benchSlots:       benchSlots,
		lowRankThreshold: lowRankThreshold,
		log:              logger.WithComponent("lineup"),
	}
}

// Build produces the full placement for one run. Empty slots are
// recorded as gaps rather than failing the run; leftover players land on
// the bench ordered by descending long-window value.
func (a *Assigner) Build(roster []types.RosterPlayer) types.Assignment {
	assignment := types.Assignment{}

	pool := make([]*types.RosterPlayer, 0, len(roster))
	for i := range roster {
		p := &roster[i]
		if p.OnIL() {
			assignment.IL = append(assignment.IL, p)
			continue
		}
		pool = append(pool, p)
	}

	for _, phase := range []value.Phase{value.PhaseStable, value.PhaseFlex} {
		for _, slot := range phaseSlots(a.slots, phase) {
			sa := types.SlotAssignment{Slot: slot.Label}
			if idx := a.pickBest(pool, slot); idx >= 0 {
				p := pool[idx]
				pool = append(pool[:idx], pool[idx+1:]...)
				sa.Player = p
				sa.LowConfidence = a.lowConfidence(p, slot.Phase)
				sa.FlagInjured = types.HardOutStatuses[p.InjuryStatus]
			} else {
				assignment.Gaps = append(assignment.Gaps, slot.Label)
				a.log.WithFields(logrus.Fields{
					"slot":  slot.Label,
					"phase": slot.Phase.String(),
				}).Warn("no eligible player left for slot")
			}
			assignment.Active = append(assignment.Active, sa)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		ci := a.model.Compute(value.RosterInputs(pool[i]), value.PhaseStable)
		cj := a.model.Compute(value.RosterInputs(pool[j]), value.PhaseStable)
		return ci.Better(cj)
	})
	assignment.Bench = pool

	if len(pool) > a.benchSlots {
		a.log.WithFields(logrus.Fields{
			"bench_players": len(pool),
			"bench_slots":   a.benchSlots,
		}).Warn("more leftover players than bench slots")
	}

	return assignment
}

// pickBest returns the index of the highest-valued pool player eligible
// for the slot, or -1 when none qualifies.
func (a *Assigner) pickBest(pool []*types.RosterPlayer, slot SlotRule) int {
	best := -1
	var bestC value.Comparable
	for i, p := range pool {
		if !p.Eligible(slot.Allowed) {
			continue
		}
		c := a.model.Compute(value.RosterInputs(p), slot.Phase)
		if best < 0 || c.Better(bestC) {
			best = i
			bestC = c
		}
	}
	return best
}

// lowConfidence reports whether the placement rests on weak signal: no
// data at all, or a rank fallback deeper than the configured threshold.
func (a *Assigner) lowConfidence(p *types.RosterPlayer, phase value.Phase) bool {
	c := a.model.Compute(value.RosterInputs(p), phase)
	switch c.Source {
	case value.SourceScore:
		return false
	case value.SourceNone:
		return true
	default:
		return c.Rank > a.lowRankThreshold
	}
}

// benchShapeTarget is the desired positional coverage among bench
// players, so any single-position slot opening mid-week can be covered.
var benchShapeTarget = []struct {
	label   string
	accepts []string
}{
	{types.PosG, []string{types.PosPG, types.PosSG, types.PosG}},
	{types.PosF, []string{types.PosSF, types.PosPF, types.PosF}},
	{types.PosC, []string{types.PosC}},
}

// BenchShape checks the bench against the one-guard one-forward
// one-center coverage target and renders a short summary line for the
// report. Players counting toward one bucket still count toward others
// they are eligible for.
func BenchShape(bench []*types.RosterPlayer) (string, bool) {
	met := true
	desc := ""
	for i, t := range benchShapeTarget {
		n := 0
		for _, p := range bench {
			if p.Eligible(t.accepts) {
				n++
			}
		}
		if n < 1 {
			met = false
		}
		if i > 0 {
			desc += " "
		}
		desc += fmt.Sprintf("%s:%d", t.label, n)
	}
	desc += " (target 1 each)"
	return desc, met
}
