// Package value merges a player's external category score, time-windowed
// rank fallbacks and untouchable bonus into a single comparable value.
// One comparison direction holds system-wide: higher is always better,
// with rank-based fallbacks negated to fit that rule.
package value

import (
	"github.com/courtvision/lineup-service/internal/types"
)

// Phase selects which time-windowed rank backs the fallback tier:
// the stable phase uses 30-day form, the flex phase 14-day form.
type Phase int

const (
	PhaseStable Phase = iota
	PhaseFlex
)

func (p Phase) String() string {
	if p == PhaseFlex {
		return "flex"
	}
	return "stable"
}

// Source records which tier produced a comparable value, for diagnostics
// and low-confidence flagging.
type Source int

const (
	SourceScore Source = iota
	SourceRank30
	SourceRank14
	SourcePlatformRank
	SourceNone
)

func (s Source) String() string {
	switch s {
	case SourceScore:
		return "category_score"
	case SourceRank30:
		return "rank_30d"
	case SourceRank14:
		return "rank_14d"
	case SourcePlatformRank:
		return "platform_rank"
	default:
		return "none"
	}
}

// noDataValue sits below any plausible negated rank so that players with
// no signal at all sort last within their band.
const noDataValue = -750.0

// Comparable is the derived ordering tuple for one player. It is
// recomputed on demand and never cached across runs.
type Comparable struct {
	Value  float64
	Source Source
	Rank   int // the rank backing a fallback value, 0 when score-based
	Name   string
}

// Better reports whether c orders strictly ahead of o. Ties on value
// break to the lexicographically smaller display name for determinism.
func (c Comparable) Better(o Comparable) bool {
	if c.Value != o.Value {
		return c.Value > o.Value
	}
	return c.Name < o.Name
}

// Inputs are the per-player signals the model consumes.
type Inputs struct {
	DisplayName  string
	Score        *types.ScoreRecord
	PlatformRank int
	Untouchable  bool
}

// Model derives comparable values. UntouchableBonus is an additive
// constant large enough to dominate the natural score spread, so an
// untouchable player always outranks any non-untouchable one.
type Model struct {
	UntouchableBonus float64
}

// NewModel creates a value model with the given untouchable bonus.
func NewModel(untouchableBonus float64) Model {
	return Model{UntouchableBonus: untouchableBonus}
}

// Compute resolves the value tier chain for one player: category score,
// then the phase's time-windowed rank (negated), then the platform
// global rank (negated), then the no-data floor. Missing signals fall
// through; the function never fails.
func (m Model) Compute(in Inputs, phase Phase) Comparable {
	c := Comparable{Name: in.DisplayName, Source: SourceNone, Value: noDataValue}

	switch {
	case in.Score.HasScore():
		c.Value = *in.Score.CategoryScore
		c.Source = SourceScore
	case phase == PhaseStable && in.Score != nil && in.Score.Rank30 > 0:
		c.Value = -float64(in.Score.Rank30)
		c.Source = SourceRank30
		c.Rank = in.Score.Rank30
	case phase == PhaseFlex && in.Score != nil && in.Score.Rank14 > 0:
		c.Value = -float64(in.Score.Rank14)
		c.Source = SourceRank14
		c.Rank = in.Score.Rank14
	case in.PlatformRank > 0:
		c.Value = -float64(in.PlatformRank)
		c.Source = SourcePlatformRank
		c.Rank = in.PlatformRank
	}

	if in.Untouchable {
		c.Value += m.UntouchableBonus
	}

	return c
}

// Weekly returns the free-agent comparison value: category score scaled
// by remaining scheduled games this week. The second return is false
// when the player has no category score to scale.
func (m Model) Weekly(score *types.ScoreRecord, gamesRemaining int) (float64, bool) {
	if !score.HasScore() {
		return 0, false
	}
	return *score.CategoryScore * float64(gamesRemaining), true
}

// RosterInputs adapts a roster player to model inputs.
func RosterInputs(p *types.RosterPlayer) Inputs {
	return Inputs{
		DisplayName:  p.Identity.DisplayName,
		Score:        p.Score,
		PlatformRank: p.PlatformRank,
		Untouchable:  p.IsUntouchable,
	}
}

// FreeAgentInputs adapts a free agent to model inputs.
func FreeAgentInputs(p *types.FreeAgentPlayer) Inputs {
	return Inputs{
		DisplayName:  p.Identity.DisplayName,
		Score:        p.Score,
		PlatformRank: p.PlatformRank,
	}
}
