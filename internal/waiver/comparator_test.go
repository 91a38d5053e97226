package waiver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/internal/value"
)

func testFilters() Filters {
	return Filters{MaxPlatformRank: 96, MinMPG: 28.0, MinGamesLast30: 5}
}

func scored(v float64) *types.ScoreRecord {
	return &types.ScoreRecord{CategoryScore: &v}
}

func freeAgent(name string, positions []string, score float64) types.FreeAgentPlayer {
	return types.FreeAgentPlayer{
		Identity:          types.PlayerIdentity{DisplayName: name},
		Team:              "FA",
		EligiblePositions: positions,
		PlatformRank:      50,
		GamesRemaining:    3,
		MinutesPerGame:    32.0,
		GamesLast30:       12,
		Score:             scored(score),
	}
}

func benchPlayer(name string, positions []string, score *types.ScoreRecord) *types.RosterPlayer {
	return &types.RosterPlayer{
		Identity:          types.PlayerIdentity{DisplayName: name},
		Team:              "DEN",
		EligiblePositions: positions,
		CurrentSlot:       types.PosBN,
		Score:             score,
	}
}

func TestQualificationFilters(t *testing.T) {
	c := NewComparator(value.NewModel(10000), testFilters())

	tests := []struct {
		name   string
		mutate func(*types.FreeAgentPlayer)
		want   bool
	}{
		{"baseline qualifies", func(fa *types.FreeAgentPlayer) {}, true},
		{"rank too deep", func(fa *types.FreeAgentPlayer) { fa.PlatformRank = 97 }, false},
		{"no rank", func(fa *types.FreeAgentPlayer) { fa.PlatformRank = 0 }, false},
		{"thin minutes", func(fa *types.FreeAgentPlayer) { fa.MinutesPerGame = 27.9 }, false},
		{"too few recent games", func(fa *types.FreeAgentPlayer) { fa.GamesLast30 = 4 }, false},
		{"ruled out", func(fa *types.FreeAgentPlayer) { fa.InjuryStatus = types.StatusOut }, false},
		{"suspended", func(fa *types.FreeAgentPlayer) { fa.InjuryStatus = types.StatusSuspended }, false},
		{"questionable still allowed", func(fa *types.FreeAgentPlayer) { fa.InjuryStatus = types.StatusQuestionable }, true},
		{"week already over", func(fa *types.FreeAgentPlayer) { fa.GamesRemaining = 0 }, false},
		{"no score", func(fa *types.FreeAgentPlayer) { fa.Score = nil }, false},
		{"negative score", func(fa *types.FreeAgentPlayer) { fa.Score = scored(-0.5) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := freeAgent("Naz Reid", []string{types.PosC}, 2.0)
			tt.mutate(&fa)
			assert.Equal(t, tt.want, c.qualifies(&fa))
		})
	}
}

func TestFindUpgradesStrictImprovement(t *testing.T) {
	c := NewComparator(value.NewModel(10000), testFilters())
	games := map[string]int{"DEN": 3}

	bench := []*types.RosterPlayer{benchPlayer("Collin Sexton", []string{types.PosPG}, scored(2.0))}

	// Weekly value 2.0*3 = 6.0 on both sides: equal is not an upgrade.
	equal := freeAgent("Tre Jones", []string{types.PosPG}, 2.0)
	assert.Empty(t, c.FindUpgrades(bench, []types.FreeAgentPlayer{equal}, games))

	better := freeAgent("Tre Jones", []string{types.PosPG}, 2.5)
	got := c.FindUpgrades(bench, []types.FreeAgentPlayer{better}, games)
	require.Len(t, got, 1)
	assert.Equal(t, "Collin Sexton", got[0].ReplacesName)
	assert.InDelta(t, 1.5, got[0].ValueDelta, 1e-9)
	assert.InDelta(t, 7.5, got[0].FAWeeklyValue, 1e-9)
}

func TestFindUpgradesNegativeScoreNeverProposed(t *testing.T) {
	c := NewComparator(value.NewModel(10000), testFilters())
	bench := []*types.RosterPlayer{benchPlayer("James Wiseman", []string{types.PosC}, nil)}

	// Even against a scoreless bench player, a negative-score free agent
	// stays off the list.
	fa := freeAgent("Bismack Biyombo", []string{types.PosC}, -5.0)
	assert.Empty(t, c.FindUpgrades(bench, []types.FreeAgentPlayer{fa}, nil))

	// A flat-zero score beats no signal at all.
	fa = freeAgent("Bismack Biyombo", []string{types.PosC}, 0.0)
	got := c.FindUpgrades(bench, []types.FreeAgentPlayer{fa}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "James Wiseman", got[0].ReplacesName)
}

func TestFindUpgradesRespectsPositionOverlap(t *testing.T) {
	c := NewComparator(value.NewModel(10000), testFilters())
	bench := []*types.RosterPlayer{benchPlayer("Collin Sexton", []string{types.PosPG}, scored(1.0))}

	fa := freeAgent("Naz Reid", []string{types.PosC}, 5.0)
	assert.Empty(t, c.FindUpgrades(bench, []types.FreeAgentPlayer{fa}, map[string]int{"DEN": 3}))
}

func TestFindUpgradesSkipsProtectedPlayers(t *testing.T) {
	c := NewComparator(value.NewModel(10000), testFilters())
	games := map[string]int{"DEN": 3}

	keeper := benchPlayer("Jamal Murray", []string{types.PosPG}, scored(1.0))
	keeper.IsUntouchable = true
	hurt := benchPlayer("Vlatko Cancar", []string{types.PosPG}, scored(0.5))
	hurt.CurrentSlot = types.PosIL

	fa := freeAgent("Tre Jones", []string{types.PosPG}, 5.0)
	assert.Empty(t, c.FindUpgrades([]*types.RosterPlayer{keeper, hurt}, []types.FreeAgentPlayer{fa}, games))
}

func TestFindUpgradesDedupesAndSorts(t *testing.T) {
	c := NewComparator(value.NewModel(10000), testFilters())
	games := map[string]int{"DEN": 3}

	bench := []*types.RosterPlayer{
		benchPlayer("Collin Sexton", []string{types.PosPG}, scored(2.0)),
		benchPlayer("Duncan Robinson", []string{types.PosSG}, scored(1.0)),
	}
	pool := []types.FreeAgentPlayer{
		freeAgent("Tre Jones", []string{types.PosPG, types.PosSG}, 3.0),
		freeAgent("Malik Monk", []string{types.PosSG}, 2.0),
	}
	got := c.FindUpgrades(bench, pool, games)
	require.Len(t, got, 2)

	// Jones's best pairing is Robinson (delta 9-3=6, not 9-6=3); only the
	// best pairing per free agent survives.
	assert.Equal(t, "Tre Jones", got[0].FreeAgent.Identity.DisplayName)
	assert.Equal(t, "Duncan Robinson", got[0].ReplacesName)
	assert.InDelta(t, 6.0, got[0].ValueDelta, 1e-9)

	assert.Equal(t, "Malik Monk", got[1].FreeAgent.Identity.DisplayName)
	assert.InDelta(t, 3.0, got[1].ValueDelta, 1e-9)
}
