package value

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/courtvision/lineup-service/internal/types"
)

func score(v float64) *types.ScoreRecord {
	return &types.ScoreRecord{CategoryScore: &v}
}

func ranksOnly(r30, r14 int) *types.ScoreRecord {
	return &types.ScoreRecord{Rank30: r30, Rank14: r14}
}

func TestCompute_TierChain(t *testing.T) {
	m := NewModel(10000)

	tests := []struct {
		name       string
		in         Inputs
		phase      Phase
		wantValue  float64
		wantSource Source
	}{
		{
			name:       "category score wins",
			in:         Inputs{DisplayName: "A", Score: score(7.5), PlatformRank: 10},
			phase:      PhaseStable,
			wantValue:  7.5,
			wantSource: SourceScore,
		},
		{
			name:       "stable phase uses 30 day rank",
			in:         Inputs{DisplayName: "A", Score: ranksOnly(12, 40)},
			phase:      PhaseStable,
			wantValue:  -12,
			wantSource: SourceRank30,
		},
		{
			name:       "flex phase uses 14 day rank",
			in:         Inputs{DisplayName: "A", Score: ranksOnly(12, 40)},
			phase:      PhaseFlex,
			wantValue:  -40,
			wantSource: SourceRank14,
		},
		{
			name:       "platform rank last resort",
			in:         Inputs{DisplayName: "A", PlatformRank: 88},
			phase:      PhaseStable,
			wantValue:  -88,
			wantSource: SourcePlatformRank,
		},
		{
			name:       "no data floor",
			in:         Inputs{DisplayName: "A"},
			phase:      PhaseFlex,
			wantValue:  noDataValue,
			wantSource: SourceNone,
		},
		{
			name:       "missing phase rank falls to platform rank",
			in:         Inputs{DisplayName: "A", Score: ranksOnly(0, 40), PlatformRank: 55},
			phase:      PhaseStable,
			wantValue:  -55,
			wantSource: SourcePlatformRank,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Compute(tt.in, tt.phase)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func TestCompute_UntouchableDominance(t *testing.T) {
	m := NewModel(10000)

	star := m.Compute(Inputs{DisplayName: "Star", Score: score(100)}, PhaseStable)
	protected := m.Compute(Inputs{DisplayName: "Protected", Score: score(1), Untouchable: true}, PhaseStable)

	assert.True(t, protected.Better(star),
		"untouchable with score 1 must outrank non-untouchable with score 100")

	// Dominance has to survive total data failure on the untouchable side.
	noData := m.Compute(Inputs{DisplayName: "NoData", Untouchable: true}, PhaseStable)
	assert.True(t, noData.Better(star))
}

func TestComparable_NameTiebreak(t *testing.T) {
	m := NewModel(10000)

	a := m.Compute(Inputs{DisplayName: "Aaron", Score: score(5)}, PhaseStable)
	b := m.Compute(Inputs{DisplayName: "Zion", Score: score(5)}, PhaseStable)

	assert.True(t, a.Better(b))
	assert.False(t, b.Better(a))
}

func TestWeekly(t *testing.T) {
	m := NewModel(10000)

	v, ok := m.Weekly(score(2.5), 4)
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	_, ok = m.Weekly(ranksOnly(10, 10), 4)
	assert.False(t, ok, "weekly value is undefined without a category score")

	v, ok = m.Weekly(score(3.0), 0)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}
