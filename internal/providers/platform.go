package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/courtvision/lineup-service/internal/namekey"
	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// PlatformConfig carries the fantasy platform's OAuth2 credentials plus
// the league and team this service manages.
type PlatformConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	LeagueID     string
	TeamID       string
}

// PlatformProvider talks to the fantasy platform's REST API. Tokens are
// refreshed transparently by the oauth2 transport from the stored
// refresh token.
type PlatformProvider struct {
	cfg      PlatformConfig
	client   *http.Client
	breakers *Breakers
	log      *logrus.Entry
}

// NewPlatformProvider builds the OAuth2-backed HTTP client. The access
// token starts expired so the first call forces a refresh.
func NewPlatformProvider(ctx context.Context, cfg PlatformConfig, breakers *Breakers) *PlatformProvider {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
	}
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}
	client := oauthCfg.Client(ctx, token)
	client.Timeout = 30 * time.Second

	return &PlatformProvider{
		cfg:      cfg,
		client:   client,
		breakers: breakers,
		log:      logger.WithComponent("platform_provider"),
	}
}

// apiPlayer is the platform's wire representation of a player.
type apiPlayer struct {
	Name             string   `json:"name"`
	Team             string   `json:"team"`
	Positions        []string `json:"eligible_positions"`
	SelectedPosition string   `json:"selected_position"`
	Status           string   `json:"status"`
	AverageRank      int      `json:"average_rank"`
	PercentOwned     float64  `json:"percent_owned"`
	MinutesPerGame   float64  `json:"minutes_per_game"`
	GamesLast30      int      `json:"games_last_30"`
}

type playersResponse struct {
	Players []apiPlayer `json:"players"`
}

// Roster fetches the managed team's current roster. Players whose names
// cannot be normalized are dropped with a warning rather than failing
// the fetch.
func (p *PlatformProvider) Roster(ctx context.Context) ([]types.RosterPlayer, error) {
	url := fmt.Sprintf("%s/league/%s/team/%s/roster?format=json", p.cfg.BaseURL, p.cfg.LeagueID, p.cfg.TeamID)

	var resp playersResponse
	if err := p.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}

	roster := make([]types.RosterPlayer, 0, len(resp.Players))
	for _, ap := range resp.Players {
		key, err := namekey.Normalize(ap.Name)
		if err != nil {
			p.log.WithField("raw_name", ap.Name).Warn("Dropping roster player with unusable name")
			continue
		}
		roster = append(roster, types.RosterPlayer{
			Identity: types.PlayerIdentity{
				RawName:       ap.Name,
				NormalizedKey: key,
				DisplayName:   ap.Name,
			},
			Team:              ap.Team,
			EligiblePositions: ap.Positions,
			CurrentSlot:       ap.SelectedPosition,
			InjuryStatus:      ap.Status,
			PlatformRank:      ap.AverageRank,
		})
	}

	p.log.WithField("players", len(roster)).Info("Roster loaded")
	return roster, nil
}

// FreeAgents fetches the top available players ordered by the
// platform's global average rank, capped at limit.
func (p *PlatformProvider) FreeAgents(ctx context.Context, limit int) ([]types.FreeAgentPlayer, error) {
	url := fmt.Sprintf("%s/league/%s/players?status=A&sort=AR&count=%d&format=json", p.cfg.BaseURL, p.cfg.LeagueID, limit)

	var resp playersResponse
	if err := p.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch free agents: %w", err)
	}

	pool := make([]types.FreeAgentPlayer, 0, len(resp.Players))
	for _, ap := range resp.Players {
		key, err := namekey.Normalize(ap.Name)
		if err != nil {
			continue
		}
		pool = append(pool, types.FreeAgentPlayer{
			Identity: types.PlayerIdentity{
				RawName:       ap.Name,
				NormalizedKey: key,
				DisplayName:   ap.Name,
			},
			Team:              ap.Team,
			EligiblePositions: ap.Positions,
			InjuryStatus:      ap.Status,
			PlatformRank:      ap.AverageRank,
			PercentOwned:      ap.PercentOwned,
			MinutesPerGame:    ap.MinutesPerGame,
			GamesLast30:       ap.GamesLast30,
		})
	}

	p.log.WithField("players", len(pool)).Info("Free agent pool loaded")
	return pool, nil
}

func (p *PlatformProvider) getJSON(ctx context.Context, url string, out interface{}) error {
	result, err := p.breakers.Execute(UpstreamPlatform, func() (interface{}, error) {
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
			return nil, fmt.Errorf("platform returned status %d", resp.StatusCode)
		}

		var body json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode platform response: %w", err)
		}
		return body, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(result.(json.RawMessage), out)
}
