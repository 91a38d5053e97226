package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/pkg/logger"
)

// abbrFixes normalizes scoreboard team codes that differ from the
// official abbreviations, including a few legacy franchises.
var abbrFixes = map[string]string{
	"UTAH": "UTA",
	"WSH":  "WAS",
	"NO":   "NOP",
	"GS":   "GSW",
	"NY":   "NYK",
	"SA":   "SAS",
	"PHO":  "PHX",
	"NJN":  "BKN",
	"NOH":  "NOP",
	"SEA":  "OKC",
	"VAN":  "MEM",
}

// ScheduleProvider reads the public scoreboard API to answer two
// questions: who plays today, and how many games each team has left in
// the scoring week.
type ScheduleProvider struct {
	baseURL  string
	client   *http.Client
	breakers *Breakers
	log      *logrus.Entry
}

// NewScheduleProvider creates a provider over the given scoreboard URL.
func NewScheduleProvider(baseURL string, breakers *Breakers) *ScheduleProvider {
	return &ScheduleProvider{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		breakers: breakers,
		log:      logger.WithComponent("schedule_provider"),
	}
}

type scoreboardResponse struct {
	Events []struct {
		Competitions []struct {
			Competitors []struct {
				Team struct {
					Abbreviation string `json:"abbreviation"`
				} `json:"team"`
			} `json:"competitors"`
		} `json:"competitions"`
	} `json:"events"`
}

// TeamsPlaying returns the set of team abbreviations with a game on the
// given date.
func (p *ScheduleProvider) TeamsPlaying(ctx context.Context, date time.Time) (map[string]bool, error) {
	url := fmt.Sprintf("%s?dates=%s", p.baseURL, date.Format("20060102"))

	result, err := p.breakers.Execute(UpstreamSchedule, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("scoreboard returned status %d", resp.StatusCode)
		}

		var board scoreboardResponse
		if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
			return nil, fmt.Errorf("failed to decode scoreboard: %w", err)
		}
		return &board, nil
	})
	if err != nil {
		return nil, err
	}

	teams := make(map[string]bool)
	for _, event := range result.(*scoreboardResponse).Events {
		for _, comp := range event.Competitions {
			for _, c := range comp.Competitors {
				abbr := strings.ToUpper(c.Team.Abbreviation)
				if abbr == "" {
					continue
				}
				if fixed, ok := abbrFixes[abbr]; ok {
					abbr = fixed
				}
				teams[abbr] = true
			}
		}
	}

	p.log.WithFields(logrus.Fields{
		"date":  date.Format("2006-01-02"),
		"teams": len(teams),
	}).Debug("Scoreboard fetched")
	return teams, nil
}

// GamesRemaining counts each team's games from the given date through
// the end of the scoring week (Sunday inclusive). A day that fails to
// fetch is skipped so one bad scoreboard response undercounts instead of
// aborting.
func (p *ScheduleProvider) GamesRemaining(ctx context.Context, from time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	failures := 0

	for d := from; ; d = d.AddDate(0, 0, 1) {
		teams, err := p.TeamsPlaying(ctx, d)
		if err != nil {
			failures++
			p.log.WithError(err).WithField("date", d.Format("2006-01-02")).Warn("Skipping day in games-remaining count")
		} else {
			for abbr := range teams {
				counts[abbr]++
			}
		}
		if d.Weekday() == time.Sunday {
			break
		}
	}

	if failures > 0 && len(counts) == 0 {
		return nil, fmt.Errorf("games-remaining lookup failed for all %d days", failures)
	}
	return counts, nil
}
