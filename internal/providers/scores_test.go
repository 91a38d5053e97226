package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rankingsHTML = `<html><body>
<table id="ContentPlaceHolder1_GridView1">
  <tr><th>Rank</th><th>Player</th><th>Team</th><th>Value</th><th>pV</th><th>rV</th></tr>
  <tr><td>1</td><td><a href="#">Nikola Jokic</a></td><td>den</td><td>15.21</td><td>1.80</td><td>2.90</td></tr>
  <tr><td>2</td><td>Luka Doncic</td><td>DAL</td><td>12.40</td><td>2.10</td><td>1.10</td></tr>
  <tr><td>3</td><td>Bad Row</td></tr>
</table>
</body></html>`

func TestParseRankingsTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rankingsHTML))
	require.NoError(t, err)

	rows := parseRankingsTable(doc)
	require.Len(t, rows, 3)

	assert.Equal(t, "Nikola Jokic", rows[0].name)
	assert.Equal(t, "DEN", rows[0].team)
	assert.True(t, rows[0].hasValue)
	assert.InDelta(t, 15.21, rows[0].value, 1e-9)
	assert.InDelta(t, 1.80, rows[0].catValues["pts"], 1e-9)
	assert.InDelta(t, 2.90, rows[0].catValues["reb"], 1e-9)

	assert.Equal(t, "Luka Doncic", rows[1].name)

	// Short rows keep the name but drop the missing columns.
	assert.Equal(t, "Bad Row", rows[2].name)
	assert.Empty(t, rows[2].team)
	assert.False(t, rows[2].hasValue)
}

func TestScrapeAllWithoutValueColumn(t *testing.T) {
	const rankOnlyHTML = `<html><body>
<table id="ContentPlaceHolder1_GridView1">
  <tr><th>Rank</th><th>Player</th><th>Team</th></tr>
  <tr><td>1</td><td>Nikola Jokic</td><td>DEN</td></tr>
  <tr><td>2</td><td>Luka Doncic</td><td>DAL</td></tr>
</table>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rankOnlyHTML)
	}))
	defer srv.Close()

	p := NewScoresProvider(srv.URL, nil, NewBreakers(3, time.Minute))
	records, err := p.scrapeAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// No parseable value column means no category score, so the rank
	// fallbacks stay in play.
	jokic := records["nikola jokic"]
	require.NotNil(t, jokic)
	assert.False(t, jokic.HasScore())
	assert.Equal(t, 1, jokic.Rank30)
	assert.Equal(t, 1, jokic.Rank14)
}

func TestParseRankingsTableFallsBackToLargestTable(t *testing.T) {
	html := `<html><body>
<table><tr><td>nav</td></tr></table>
<table>
  <tr><th>Name</th><th>Value</th></tr>
  <tr><td>Jamal Murray</td><td>4.20</td></tr>
  <tr><td>Devin Booker</td><td>5.10</td></tr>
</table>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	rows := parseRankingsTable(doc)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jamal Murray", rows[0].name)
	assert.InDelta(t, 5.10, rows[1].value, 1e-9)
}

func TestParseRankingsTableNoNameColumn(t *testing.T) {
	html := `<table><tr><th>Team</th></tr><tr><td>DEN</td></tr></table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	assert.Nil(t, parseRankingsTable(doc))
}
