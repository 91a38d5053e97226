package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/courtvision/lineup-service/internal/types"
)

func sampleReport() *types.Report {
	score := 9.0
	jokic := &types.RosterPlayer{
		Identity:      types.PlayerIdentity{DisplayName: "Nikola Jokic"},
		Team:          "DEN",
		IsUntouchable: true,
		Score:         &types.ScoreRecord{CategoryScore: &score},
	}
	bench := &types.RosterPlayer{
		Identity: types.PlayerIdentity{DisplayName: "Collin Sexton"},
		Team:     "UTA",
	}
	return &types.Report{
		RunID: "run-123",
		Date:  "2026-01-15",
		Assignment: types.Assignment{
			Active: []types.SlotAssignment{
				{Slot: types.PosC, Player: jokic},
				{Slot: types.PosPG, LowConfidence: false},
			},
			Bench: []*types.RosterPlayer{bench},
		},
		Swaps: []types.Swap{{
			FreeAgent:    types.FreeAgentPlayer{Identity: types.PlayerIdentity{DisplayName: "Naz Reid"}, Team: "MIN"},
			ReplacesName: "Collin Sexton",
			ValueDelta:   4.5,
		}},
		BenchShapeDesc: "G:1 F:0 C:0 (target 1 each)",
		ILFlags: types.ILFlags{
			ActivateFromIL: []types.ILFlag{{
				Name:          "Joel Embiid",
				CurrentSlot:   types.PosIL,
				Action:        "activate",
				DropCandidate: &types.DropRec{Name: "Collin Sexton", Reason: "score 2.0, rank14 140"},
			}},
		},
		Untouchables: map[string]float64{"nikola jokic": 88.0},
		Unmatched:    []string{"Obscure Rookie"},
		Alerts:       []string{"no eligible player for PG slot"},
		GeneratedAt:  time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC),
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, html, "Lineup Report — 2026-01-15")
	assert.Contains(t, html, "Nikola Jokic")
	assert.Contains(t, html, "9.00")
	assert.Contains(t, html, "empty — no eligible player")
	assert.Contains(t, html, "Naz Reid")
	assert.Contains(t, html, "+4.50")
	assert.Contains(t, html, "Joel Embiid")
	assert.Contains(t, html, "score 2.0, rank14 140")
	assert.Contains(t, html, "MVP 88%")
	assert.Contains(t, html, "no eligible player for PG slot")
	assert.Contains(t, html, "Obscure Rookie")
	assert.Contains(t, html, "run-123")
}

func TestRenderHTMLEscapesPlayerNames(t *testing.T) {
	r := sampleReport()
	r.Alerts = []string{`<script>alert("x")</script>`}
	html, err := RenderHTML(r)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestSubject(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "Lineup Report 2026-01-15 — 1 waiver upgrade(s) — 1 alert(s)", Subject(r))

	r.Swaps = nil
	r.Alerts = nil
	assert.Equal(t, "Lineup Report 2026-01-15", Subject(r))
}

func TestMailerSend(t *testing.T) {
	var sent *gomail.Message
	m := NewMailer(MailConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "bot@example.com",
		To:   []string{"me@example.com"},
	})
	m.send = func(msg *gomail.Message) error {
		sent = msg
		return nil
	}

	require.NoError(t, m.Send(sampleReport()))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"me@example.com"}, sent.GetHeader("To"))
	assert.Contains(t, sent.GetHeader("Subject")[0], "Lineup Report 2026-01-15")
}

func TestMailerUnconfiguredIsNoop(t *testing.T) {
	m := NewMailer(MailConfig{})
	assert.NoError(t, m.Send(sampleReport()))
}
