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

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// MVPProvider scrapes the league's weekly MVP page, the input to the
// untouchable list refresh.
type MVPProvider struct {
	url      string
	client   *http.Client
	breakers *Breakers
	log      *logrus.Entry
}

// NewMVPProvider creates a provider over the league MVP page URL.
func NewMVPProvider(url string, breakers *Breakers) *MVPProvider {
	return &MVPProvider{
		url:      url,
		client:   &http.Client{Timeout: 30 * time.Second},
		breakers: breakers,
		log:      logger.WithComponent("mvp_provider"),
	}
}

// Fetch returns the MVP table rows, highest percentage first as the
// page renders them.
func (p *MVPProvider) Fetch(ctx context.Context) ([]types.MVPEntry, error) {
	result, err := p.breakers.Execute(UpstreamPlatform, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("mvp page returned status %d", resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mvp page: %w", err)
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	entries := parseMVPTable(result.(*goquery.Document))
	p.log.WithField("players", len(entries)).Info("MVP table fetched")
	return entries, nil
}

// parseMVPTable extracts name/percent pairs from the MVP grid. A row
// qualifies when it has a player link or name cell followed by a cell
// parseable as a percentage.
func parseMVPTable(doc *goquery.Document) []types.MVPEntry {
	var entries []types.MVPEntry

	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}

		name := strings.TrimSpace(cells.First().Find("a").First().Text())
		if name == "" {
			name = strings.TrimSpace(cells.First().Text())
		}
		if name == "" || strings.EqualFold(name, "player") {
			return
		}

		for i := 1; i < cells.Length(); i++ {
			raw := strings.TrimSpace(cells.Eq(i).Text())
			raw = strings.TrimSuffix(raw, "%")
			pct, err := strconv.ParseFloat(raw, 64)
			if err != nil || pct < 0 || pct > 100 {
				continue
			}
			entries = append(entries, types.MVPEntry{Name: name, MVPPercent: pct})
			return
		}
	})

	return entries
}
