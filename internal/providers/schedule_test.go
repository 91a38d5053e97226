package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreboardJSON(pairs ...[2]string) string {
	events := ""
	for i, p := range pairs {
		if i > 0 {
			events += ","
		}
		events += fmt.Sprintf(`{"competitions":[{"competitors":[{"team":{"abbreviation":"%s"}},{"team":{"abbreviation":"%s"}}]}]}`, p[0], p[1])
	}
	return `{"events":[` + events + `]}`
}

func TestTeamsPlaying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20260115", r.URL.Query().Get("dates"))
		fmt.Fprint(w, scoreboardJSON([2]string{"DEN", "GS"}, [2]string{"UTAH", "PHO"}))
	}))
	defer srv.Close()

	p := NewScheduleProvider(srv.URL, NewBreakers(3, time.Minute))
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	teams, err := p.TeamsPlaying(context.Background(), date)
	require.NoError(t, err)

	// Nonstandard codes come back normalized.
	assert.Equal(t, map[string]bool{"DEN": true, "GSW": true, "UTA": true, "PHX": true}, teams)
}

func TestGamesRemainingCountsThroughSunday(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, scoreboardJSON([2]string{"DEN", "LAL"}))
	}))
	defer srv.Close()

	p := NewScheduleProvider(srv.URL, NewBreakers(3, time.Minute))
	// Friday, so Friday + Saturday + Sunday.
	friday := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)

	counts, err := p.GamesRemaining(context.Background(), friday)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, map[string]int{"DEN": 3, "LAL": 3}, counts)
}

func TestGamesRemainingSkipsFailedDays(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, scoreboardJSON([2]string{"DEN", "LAL"}))
	}))
	defer srv.Close()

	p := NewScheduleProvider(srv.URL, NewBreakers(3, time.Minute))
	saturday := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)

	counts, err := p.GamesRemaining(context.Background(), saturday)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"DEN": 1, "LAL": 1}, counts)
}
