// Package il produces injury-list recommendations: which hurt players to
// stash on IL, and which recovered IL occupants to activate, paired with
// a drop suggestion when the roster has no room.
package il

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/internal/value"
	"github.com/courtvision/lineup-service/pkg/logger"
)

const (
	ActionMoveToIL = "move_to_il"
	ActionActivate = "activate"
)

// Drop-pick ordering: a missing category score sorts below any real one,
// and sharing a position with the returning player nudges a candidate
// toward the drop so the right slot type frees up.
const (
	missingScoreSort = -999.0
	overlapNudge     = 0.5
)

// Manager evaluates IL moves against the platform's slot cap.
type Manager struct {
	model      value.Model
	maxILSlots int
	log        *logrus.Entry
}

// NewManager creates a manager honoring the league's IL slot cap.
func NewManager(model value.Model, maxILSlots int) *Manager {
	return &Manager{
		model:      model,
		maxILSlots: maxILSlots,
		log:        logger.WithComponent("il"),
	}
}

// Evaluate inspects one run's placement and returns both directions of
// IL bookkeeping. Moves to IL stop once the slot cap is reached;
// activations always surface, each with the cheapest droppable bench
// player attached so the move is actionable immediately.
func (m *Manager) Evaluate(a types.Assignment) types.ILFlags {
	flags := types.ILFlags{}

	occupied := len(a.IL)
	for _, p := range m.hardOutPlayers(a) {
		if occupied >= m.maxILSlots {
			m.log.WithFields(logrus.Fields{
				"player":   p.Identity.DisplayName,
				"il_slots": m.maxILSlots,
			}).Warn("injured player left off IL, no slots free")
			break
		}
		flags.MoveToIL = append(flags.MoveToIL, types.ILFlag{
			Name:         p.Identity.DisplayName,
			InjuryStatus: p.InjuryStatus,
			CurrentSlot:  p.CurrentSlot,
			Action:       ActionMoveToIL,
		})
		occupied++
	}

	for _, p := range a.IL {
		if types.HardOutStatuses[p.InjuryStatus] {
			continue
		}
		flags.ActivateFromIL = append(flags.ActivateFromIL, types.ILFlag{
			Name:          p.Identity.DisplayName,
			InjuryStatus:  p.InjuryStatus,
			CurrentSlot:   p.CurrentSlot,
			Action:        ActionActivate,
			DropCandidate: m.dropCandidate(p, a.Bench),
		})
	}

	return flags
}

// Summaries renders the flags as plain action lines for the report's
// alert list.
func Summaries(f types.ILFlags) []string {
	var out []string
	for _, fl := range f.MoveToIL {
		out = append(out, fmt.Sprintf("move %s (%s) to IL [status %s]", fl.Name, fl.CurrentSlot, fl.InjuryStatus))
	}
	for _, fl := range f.ActivateFromIL {
		line := fmt.Sprintf("activate %s from %s", fl.Name, fl.CurrentSlot)
		if fl.DropCandidate != nil {
			line += fmt.Sprintf(", consider dropping %s (%s)", fl.DropCandidate.Name, fl.DropCandidate.Reason)
		}
		out = append(out, line)
	}
	return out
}

// hardOutPlayers collects non-IL roster players who cannot play, bench
// first so active slots free up last, ordered worst value first within
// each group.
func (m *Manager) hardOutPlayers(a types.Assignment) []*types.RosterPlayer {
	var bench, active []*types.RosterPlayer
	for _, p := range a.Bench {
		if types.HardOutStatuses[p.InjuryStatus] {
			bench = append(bench, p)
		}
	}
	for _, sa := range a.Active {
		if sa.Player != nil && types.HardOutStatuses[sa.Player.InjuryStatus] {
			active = append(active, sa.Player)
		}
	}
	byValueAsc := func(ps []*types.RosterPlayer) {
		sort.SliceStable(ps, func(i, j int) bool {
			ci := m.model.Compute(value.RosterInputs(ps[i]), value.PhaseStable)
			cj := m.model.Compute(value.RosterInputs(ps[j]), value.PhaseStable)
			return cj.Better(ci)
		})
	}
	byValueAsc(bench)
	byValueAsc(active)
	return append(bench, active...)
}

// dropCandidate picks the most droppable bench player for an activation:
// lowest category score first (no score sorts worst), worse 14-day rank
// on ties, nudged toward players who share a position with the returning
// player. Untouchables are never offered; nil when every bench spot is
// protected.
func (m *Manager) dropCandidate(returning *types.RosterPlayer, bench []*types.RosterPlayer) *types.DropRec {
	returningPos := make(map[string]bool, len(returning.EligiblePositions))
	for _, pos := range returning.EligiblePositions {
		returningPos[pos] = true
	}

	var (
		worst        *types.RosterPlayer
		worstKey     float64
		worstRank14  int
		worstOverlap bool
	)
	for _, p := range bench {
		if p.IsUntouchable {
			continue
		}
		key := missingScoreSort
		if p.Score.HasScore() {
			key = *p.Score.CategoryScore
		}
		rank14 := 0
		if p.Score != nil {
			rank14 = p.Score.Rank14
		}
		overlap := false
		for _, pos := range p.EligiblePositions {
			if returningPos[pos] {
				overlap = true
				break
			}
		}
		if overlap {
			key -= overlapNudge
		}
		if worst == nil || key < worstKey || (key == worstKey && rank14 > worstRank14) {
			worst, worstKey, worstRank14, worstOverlap = p, key, rank14, overlap
		}
	}
	if worst == nil {
		return nil
	}

	parts := []string{"no score"}
	if worst.Score.HasScore() {
		parts[0] = fmt.Sprintf("score %.1f", *worst.Score.CategoryScore)
	}
	if worstRank14 > 0 {
		parts = append(parts, fmt.Sprintf("rank14 %d", worstRank14))
	}
	if worstOverlap {
		parts = append(parts, "position overlap")
	}
	return &types.DropRec{
		Name:      worst.Identity.DisplayName,
		Positions: worst.EligiblePositions,
		Reason:    strings.Join(parts, ", "),
	}
}
