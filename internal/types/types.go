package types

import (
	"time"
)

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Position labels as the fantasy platform reports them. Flex labels
// (G, F, UTIL) can appear in a player's eligibility list as well as in
// the slot configuration.
const (
	PosPG   = "PG"
	PosSG   = "SG"
	PosG    = "G"
	PosSF   = "SF"
	PosPF   = "PF"
	PosF    = "F"
	PosC    = "C"
	PosUTIL = "UTIL"
	PosBN   = "BN"
	PosIL   = "IL"
	PosILP  = "IL+"
)

// Injury status designations from the platform. Empty string means healthy.
const (
	StatusOut          = "O"
	StatusInjured      = "INJ"
	StatusNotAvailable = "NA"
	StatusSuspended    = "SUSP"
	StatusQuestionable = "Q"
	StatusDayToDay     = "DTD"
	StatusGameTime     = "GTD"
)

// HardOutStatuses are designations under which a player cannot play.
var HardOutStatuses = map[string]bool{
	StatusOut:          true,
	StatusInjured:      true,
	StatusNotAvailable: true,
}

// PlayerIdentity ties together the three forms of a player's name: the
// raw string as seen at the source, the canonical comparison key, and
// the display form. Identities are created at ingestion time and never
// mutated afterwards.
type PlayerIdentity struct {
	RawName       string `json:"raw_name"`
	NormalizedKey string `json:"normalized_key"`
	DisplayName   string `json:"display_name"`
}

// ScoreRecord is one player's row from the external per-category scoring
// source, refreshed once per run. CategoryScore is a signed 9-category
// value (higher is better); the time-windowed ranks are positive
// integers (lower is better) and zero when unavailable.
type ScoreRecord struct {
	Identity      PlayerIdentity     `json:"identity"`
	Team          string             `json:"team"`
	CategoryScore *float64           `json:"category_score,omitempty"`
	Rank30        int                `json:"rank_30d,omitempty"`
	Rank14        int                `json:"rank_14d,omitempty"`
	CatValues     map[string]float64 `json:"cat_values,omitempty"`
}

// HasScore reports whether the record carries a usable category score.
func (r *ScoreRecord) HasScore() bool {
	return r != nil && r.CategoryScore != nil
}

// RosterPlayer is one player on the managed fantasy roster, as fetched
// from the platform plus the attached external score (nil when the
// identity matcher found no unique match).
type RosterPlayer struct {
	Identity          PlayerIdentity `json:"identity"`
	Team              string         `json:"team"`
	EligiblePositions []string       `json:"eligible_positions"`
	CurrentSlot       string         `json:"current_slot"`
	InjuryStatus      string         `json:"injury_status,omitempty"`
	PlatformRank      int            `json:"platform_rank,omitempty"`
	HasGameToday      bool           `json:"has_game_today"`
	IsUntouchable     bool           `json:"is_untouchable"`
	Score             *ScoreRecord   `json:"score,omitempty"`
}

// OnIL reports whether the player currently occupies an injury slot.
func (p *RosterPlayer) OnIL() bool {
	return p.CurrentSlot == PosIL || p.CurrentSlot == PosILP
}

// Eligible reports whether any of the player's positions appears in the
// given accepted-position list.
func (p *RosterPlayer) Eligible(accepted []string) bool {
	for _, pos := range p.EligiblePositions {
		for _, a := range accepted {
			if pos == a {
				return true
			}
		}
	}
	return false
}

// FreeAgentPlayer is one claimable player from the waiver pool. The
// platform rank is the global average rank used as the last value
// fallback; GamesRemaining counts scheduled games left this scoring week.
type FreeAgentPlayer struct {
	Identity          PlayerIdentity `json:"identity"`
	Team              string         `json:"team"`
	EligiblePositions []string       `json:"eligible_positions"`
	InjuryStatus      string         `json:"injury_status,omitempty"`
	PlatformRank      int            `json:"platform_rank,omitempty"`
	GamesRemaining    int            `json:"games_remaining_this_week"`
	PercentOwned      float64        `json:"percent_owned,omitempty"`
	MinutesPerGame    float64        `json:"mpg,omitempty"`
	GamesLast30       int            `json:"games_last_30,omitempty"`
	Score             *ScoreRecord   `json:"score,omitempty"`
}

// Snapshot is the fully materialized per-run input consumed by the
// pipeline. All fields are treated as immutable once the run starts.
type Snapshot struct {
	Date                 time.Time          `json:"date"`
	RosterPlayers        []RosterPlayer     `json:"roster_players"`
	FreeAgents           []FreeAgentPlayer  `json:"free_agents"`
	ScoreRecords         map[string]*ScoreRecord `json:"score_records"`
	UntouchableNames     map[string]float64 `json:"untouchable_names"`
	GamesRemainingByTeam map[string]int     `json:"games_remaining_by_team"`
	TeamsPlayingToday    map[string]bool    `json:"teams_playing_today"`
}

// SlotAssignment is one filled (or empty) active slot in the final
// lineup. Player is nil when no eligible candidate remained.
type SlotAssignment struct {
	Slot          string        `json:"slot"`
	Player        *RosterPlayer `json:"player,omitempty"`
	LowConfidence bool          `json:"low_confidence,omitempty"`
	FlagInjured   bool          `json:"flag_injured,omitempty"`
}

// Assignment is the optimizer's output: the full mapping of roster
// players to active, bench and IL placement for one run. It is produced
// fresh each run and never persisted.
type Assignment struct {
	Active []SlotAssignment `json:"active"`
	Bench  []*RosterPlayer  `json:"bench"`
	IL     []*RosterPlayer  `json:"il"`
	Gaps   []string         `json:"gaps,omitempty"`
}

// Swap is one proposed waiver-wire upgrade: add the free agent, drop the
// named roster player. ValueDelta is the weekly-value improvement.
type Swap struct {
	FreeAgent      FreeAgentPlayer `json:"free_agent"`
	ReplacesName   string          `json:"replaces_name"`
	ReplacesSlot   string          `json:"replaces_slot"`
	ValueDelta     float64         `json:"value_delta"`
	FAWeeklyValue  float64         `json:"fa_weekly_value"`
	ReplacesWeekly float64         `json:"replaces_weekly_value"`
}

// ILFlag is one actionable injury-list recommendation.
type ILFlag struct {
	Name          string   `json:"name"`
	InjuryStatus  string   `json:"injury_status,omitempty"`
	CurrentSlot   string   `json:"current_slot"`
	Action        string   `json:"action"`
	DropCandidate *DropRec `json:"drop_candidate,omitempty"`
}

// DropRec names the bench player to let go when activating from IL.
type DropRec struct {
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
	Reason    string   `json:"reason"`
}

// ILFlags groups both directions of IL bookkeeping for a run.
type ILFlags struct {
	MoveToIL       []ILFlag `json:"should_move_to_il"`
	ActivateFromIL []ILFlag `json:"should_activate_from_il"`
}

// MVPEntry is one row of the league's weekly MVP table: a player name
// and the share of matchup wins he keyed.
type MVPEntry struct {
	Name       string  `json:"name"`
	MVPPercent float64 `json:"mvp_percent"`
}

// Report is the full output of one pipeline run, handed untouched to the
// reporting collaborator.
type Report struct {
	RunID          string             `json:"run_id"`
	Date           string             `json:"date"`
	Assignment     Assignment         `json:"assignment"`
	Swaps          []Swap             `json:"swaps"`
	BenchShapeDesc string             `json:"bench_shape_desc"`
	BenchShapeMet  bool               `json:"bench_shape_met"`
	ILFlags        ILFlags            `json:"il_flags"`
	Untouchables   map[string]float64 `json:"untouchables,omitempty"`
	Unmatched      []string           `json:"unmatched,omitempty"`
	Alerts         []string           `json:"alerts,omitempty"`
	GeneratedAt    time.Time          `json:"generated_at"`
}
