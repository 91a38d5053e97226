package lineup

import (
	"sort"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/internal/value"
)

// SlotRule describes one active lineup slot as configuration data: its
// label, the player positions it accepts, and the optimizer phase that
// fills it.
type SlotRule struct {
	Label   string
	Allowed []string
	Phase   value.Phase
}

var anyPosition = []string{types.PosPG, types.PosSG, types.PosSF, types.PosPF, types.PosC, types.PosG, types.PosF}

// DefaultSlots returns the standard 10-slot head-to-head roster shape:
// five single-position slots filled on long-window form, and a second
// center plus the G/F/UTIL flex slots filled on short-window form.
func DefaultSlots() []SlotRule {
	return []SlotRule{
		{Label: types.PosC, Allowed: []string{types.PosC}, Phase: value.PhaseStable},
		{Label: types.PosPG, Allowed: []string{types.PosPG}, Phase: value.PhaseStable},
		{Label: types.PosSG, Allowed: []string{types.PosSG}, Phase: value.PhaseStable},
		{Label: types.PosSF, Allowed: []string{types.PosSF}, Phase: value.PhaseStable},
		{Label: types.PosPF, Allowed: []string{types.PosPF}, Phase: value.PhaseStable},
		{Label: types.PosC, Allowed: []string{types.PosC}, Phase: value.PhaseFlex},
		{Label: types.PosG, Allowed: []string{types.PosPG, types.PosSG}, Phase: value.PhaseFlex},
		{Label: types.PosF, Allowed: []string{types.PosSF, types.PosPF}, Phase: value.PhaseFlex},
		{Label: types.PosUTIL, Allowed: anyPosition, Phase: value.PhaseFlex},
		{Label: types.PosUTIL, Allowed: anyPosition, Phase: value.PhaseFlex},
	}
}

// phaseSlots returns the slots of one phase ordered most-restrictive
// first. A slot accepting fewer positions fills before a more permissive
// one, so flex slots can absorb whoever is left; the order is computed
// from the eligibility-set sizes rather than hardcoded, with the label
// as a deterministic tiebreak.
func phaseSlots(slots []SlotRule, phase value.Phase) []SlotRule {
	out := make([]SlotRule, 0, len(slots))
	for _, s := range slots {
		if s.Phase == phase {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Allowed) != len(out[j].Allowed) {
			return len(out[i].Allowed) < len(out[j].Allowed)
		}
		return out[i].Label < out[j].Label
	})
	return out
}
