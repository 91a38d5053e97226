package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/cache"
	"github.com/courtvision/lineup-service/internal/namekey"
	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// Rankings views exposed by the scores site. The season view carries
// category values; the windowed views carry ordering only, which becomes
// the 30-day and 14-day ranks.
const (
	viewSeason = "season"
	view30Day  = "30"
	view14Day  = "14"
)

// catColumns maps the site's short value-column labels to internal
// category keys.
var catColumns = map[string]string{
	"pv":   "pts",
	"3v":   "3pm",
	"rv":   "reb",
	"av":   "ast",
	"sv":   "stl",
	"bv":   "blk",
	"fg%v": "fg_pct",
	"ft%v": "ft_pct",
	"tov":  "to",
}

// ScoresProvider scrapes the external per-category rankings site and
// caches the merged snapshot. When the site is unreachable it degrades
// to the last good snapshot rather than failing the run.
type ScoresProvider struct {
	baseURL  string
	client   *http.Client
	store    *cache.Store
	breakers *Breakers
	log      *logrus.Entry
}

// NewScoresProvider creates a provider over the given rankings URL.
func NewScoresProvider(baseURL string, store *cache.Store, breakers *Breakers) *ScoresProvider {
	return &ScoresProvider{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		store:    store,
		breakers: breakers,
		log:      logger.WithComponent("scores_provider"),
	}
}

// Fetch returns the score snapshot keyed by normalized name. Order of
// preference: fresh cache, live scrape, stale cache. Only when all three
// come up empty does it return an error.
func (p *ScoresProvider) Fetch(ctx context.Context) (map[string]*types.ScoreRecord, error) {
	cached, err := p.store.GetScores(ctx)
	if err == nil && len(cached) > 0 {
		p.log.WithField("players", len(cached)).Debug("Using fresh cached score snapshot")
		return cached, nil
	}

	records, scrapeErr := p.scrapeAll(ctx)
	if scrapeErr == nil && len(records) > 0 {
		if err := p.store.SetScores(ctx, records); err != nil {
			p.log.WithError(err).Warn("Failed to cache score snapshot")
		}
		return records, nil
	}
	p.log.WithError(scrapeErr).Warn("Score scrape failed, trying stale snapshot")

	stale, err := p.store.GetStaleScores(ctx)
	if err == nil && len(stale) > 0 {
		p.log.WithField("players", len(stale)).Warn("Using stale score snapshot")
		return stale, nil
	}

	return nil, fmt.Errorf("no score data available: %w", scrapeErr)
}

// scrapeAll fetches the season view for scores and the windowed views
// for ranks, merging them by normalized name. Rank view failures degrade
// to a snapshot without that window.
func (p *ScoresProvider) scrapeAll(ctx context.Context) (map[string]*types.ScoreRecord, error) {
	season, err := p.scrapeView(ctx, viewSeason)
	if err != nil {
		return nil, err
	}
	if len(season) == 0 {
		return nil, fmt.Errorf("season view produced no rows")
	}

	records := make(map[string]*types.ScoreRecord, len(season))
	for _, row := range season {
		key, err := namekey.Normalize(row.name)
		if err != nil {
			p.log.WithField("raw_name", row.name).Debug("Skipping unnormalizable row")
			continue
		}
		rec := &types.ScoreRecord{
			Identity: types.PlayerIdentity{
				RawName:       row.name,
				NormalizedKey: key,
				DisplayName:   row.name,
			},
			Team:      row.team,
			CatValues: row.catValues,
		}
		// A row without a parsed value stays scoreless so the rank
		// fallback chain can take over downstream.
		if row.hasValue {
			score := row.value
			rec.CategoryScore = &score
		}
		records[key] = rec
	}

	p.mergeRanks(ctx, records, view30Day)
	p.mergeRanks(ctx, records, view14Day)

	p.log.WithField("players", len(records)).Info("Scraped score snapshot")
	return records, nil
}

// mergeRanks attaches one windowed view's row order as that window's
// rank. A player present in the window but absent from the season view
// is added rank-only.
func (p *ScoresProvider) mergeRanks(ctx context.Context, records map[string]*types.ScoreRecord, view string) {
	rows, err := p.scrapeView(ctx, view)
	if err != nil {
		p.log.WithError(err).WithField("view", view).Warn("Rank view scrape failed, window omitted")
		return
	}
	for i, row := range rows {
		key, err := namekey.Normalize(row.name)
		if err != nil {
			continue
		}
		rank := i + 1
		r, ok := records[key]
		if !ok {
			r = &types.ScoreRecord{
				Identity: types.PlayerIdentity{
					RawName:       row.name,
					NormalizedKey: key,
					DisplayName:   row.name,
				},
				Team: row.team,
			}
			records[key] = r
		}
		switch view {
		case view30Day:
			r.Rank30 = rank
		case view14Day:
			r.Rank14 = rank
		}
	}
}

type scrapedRow struct {
	name      string
	team      string
	value     float64
	hasValue  bool
	catValues map[string]float64
}

func (p *ScoresProvider) scrapeView(ctx context.Context, view string) ([]scrapedRow, error) {
	url := fmt.Sprintf("%s?duration=%s", p.baseURL, view)

	result, err := p.breakers.Execute(UpstreamScores, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("rankings page returned status %d", resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rankings page: %w", err)
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	return parseRankingsTable(result.(*goquery.Document)), nil
}

// parseRankingsTable extracts player rows from the rankings grid. The
// grid is located by its GridView id, falling back to the largest table
// on the page; columns are located by header text so column reordering
// upstream does not break the parse.
func parseRankingsTable(doc *goquery.Document) []scrapedRow {
	table := doc.Find("table[id*='GridView']").First()
	if table.Length() == 0 {
		var most int
		doc.Find("table").Each(func(_ int, t *goquery.Selection) {
			if n := t.Find("tr").Length(); n > most {
				most = n
				table = t
			}
		})
	}
	if table.Length() == 0 {
		return nil
	}

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	nameCol, teamCol, valueCol := -1, -1, -1
	catCols := make(map[int]string)
	rows.First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		h := strings.ToLower(strings.TrimSpace(cell.Text()))
		switch h {
		case "player", "name":
			nameCol = i
		case "team":
			teamCol = i
		case "value":
			valueCol = i
		default:
			if key, ok := catColumns[h]; ok {
				catCols[i] = key
			}
		}
	})
	if nameCol < 0 {
		return nil
	}

	var out []scrapedRow
	rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() <= nameCol {
			return
		}
		name := strings.TrimSpace(cells.Eq(nameCol).Text())
		if name == "" || strings.EqualFold(name, "player") || strings.EqualFold(name, "name") {
			return
		}

		row := scrapedRow{name: name, catValues: make(map[string]float64)}
		if teamCol >= 0 && teamCol < cells.Length() {
			row.team = strings.ToUpper(strings.TrimSpace(cells.Eq(teamCol).Text()))
		}
		if valueCol >= 0 && valueCol < cells.Length() {
			if v, err := strconv.ParseFloat(strings.TrimSpace(cells.Eq(valueCol).Text()), 64); err == nil {
				row.value = v
				row.hasValue = true
			}
		}
		for idx, key := range catCols {
			if idx < cells.Length() {
				if v, err := strconv.ParseFloat(strings.TrimSpace(cells.Eq(idx).Text()), 64); err == nil {
					row.catValues[key] = v
				}
			}
		}
		out = append(out, row)
	})
	return out
}
