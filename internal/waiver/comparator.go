// Package waiver scans the free-agent pool for strict weekly-value
// upgrades over droppable roster players. It only ever proposes swaps;
// executing them is left to the league manager.
package waiver

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/internal/value"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// Filters gate which free agents are worth comparing at all. A player
// outside these bounds is noise regardless of his score.
type Filters struct {
	MaxPlatformRank int
	MinMPG          float64
	MinGamesLast30  int
}

// disqualifyingStatuses are injury designations under which a free agent
// is never proposed, whatever his numbers say.
var disqualifyingStatuses = map[string]bool{
	types.StatusOut:          true,
	types.StatusInjured:      true,
	types.StatusNotAvailable: true,
	types.StatusSuspended:    true,
}

// Comparator pairs qualified free agents against droppable roster
// players and keeps the single best upgrade per free agent.
type Comparator struct {
	model   value.Model
	filters Filters
	log     *logrus.Entry
}

// NewComparator creates a comparator with the given qualification filters.
func NewComparator(model value.Model, filters Filters) *Comparator {
	return &Comparator{
		model:   model,
		filters: filters,
		log:     logger.WithComponent("waiver"),
	}
}

// qualifies applies the hard gates: platform rank within bounds, real
// minutes, enough recent games, no disqualifying status, games still to
// play this week, and a non-negative category score. The score guard
// means a negative-impact free agent is never proposed, even against a
// scoreless roster player.
func (c *Comparator) qualifies(fa *types.FreeAgentPlayer) bool {
	if fa.PlatformRank <= 0 || fa.PlatformRank > c.filters.MaxPlatformRank {
		return false
	}
	if fa.MinutesPerGame < c.filters.MinMPG {
		return false
	}
	if fa.GamesLast30 < c.filters.MinGamesLast30 {
		return false
	}
	if disqualifyingStatuses[fa.InjuryStatus] {
		return false
	}
	if fa.GamesRemaining <= 0 {
		return false
	}
	if !fa.Score.HasScore() || *fa.Score.CategoryScore < 0 {
		return false
	}
	return true
}

// droppable reports whether a roster player may be offered as the drop
// side of a swap. Untouchables and IL occupants never are.
func droppable(p *types.RosterPlayer) bool {
	return !p.IsUntouchable && !p.OnIL()
}

// sharesPosition reports whether the free agent covers at least one of
// the drop candidate's positions, so the swap cannot shrink the roster's
// positional coverage.
func sharesPosition(fa *types.FreeAgentPlayer, p *types.RosterPlayer) bool {
	return p.Eligible(fa.EligiblePositions)
}

// FindUpgrades returns the proposed swaps, best first. candidates are
// the roster players the pipeline considers expendable (typically the
// bench); gamesByTeam supplies each roster player's remaining schedule.
// A swap is proposed only when the free agent's weekly value strictly
// beats the drop candidate's; a scoreless candidate is beaten by any
// qualified free agent.
func (c *Comparator) FindUpgrades(candidates []*types.RosterPlayer, pool []types.FreeAgentPlayer, gamesByTeam map[string]int) []types.Swap {
	swaps := make([]types.Swap, 0)

	for i := range pool {
		fa := &pool[i]
		if !c.qualifies(fa) {
			continue
		}
		faWeekly, _ := c.model.Weekly(fa.Score, fa.GamesRemaining)

		var best *types.Swap
		for _, p := range candidates {
			if !droppable(p) || !sharesPosition(fa, p) {
				continue
			}
			dropWeekly, hasWeekly := c.model.Weekly(p.Score, gamesByTeam[p.Team])
			if hasWeekly && faWeekly <= dropWeekly {
				continue
			}
			s := types.Swap{
				FreeAgent:      *fa,
				ReplacesName:   p.Identity.DisplayName,
				ReplacesSlot:   p.CurrentSlot,
				ValueDelta:     faWeekly - dropWeekly,
				FAWeeklyValue:  faWeekly,
				ReplacesWeekly: dropWeekly,
			}
			if best == nil || s.ValueDelta > best.ValueDelta {
				cp := s
				best = &cp
			}
		}
		if best != nil {
			swaps = append(swaps, *best)
		}
	}

	sort.SliceStable(swaps, func(i, j int) bool {
		if swaps[i].ValueDelta != swaps[j].ValueDelta {
			return swaps[i].ValueDelta > swaps[j].ValueDelta
		}
		return swaps[i].FreeAgent.Identity.DisplayName < swaps[j].FreeAgent.Identity.DisplayName
	})

	c.log.WithFields(logrus.Fields{
		"pool_size":  len(pool),
		"candidates": len(candidates),
		"proposals":  len(swaps),
	}).Info("waiver scan complete")

	return swaps
}
