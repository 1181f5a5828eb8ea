package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"data-hand/config"
)

const filmPageHTML = `<!DOCTYPE html>
<html>
<body>
<table class="wikitable">
  <tr><th>Rank</th><th>Peak</th><th>Title</th><th>Worldwide gross</th><th>Year</th></tr>
  <tr><td>1</td><td>1</td><td>Avatar</td><td>$2,923,710,708</td><td>2009</td></tr>
  <tr><td>2</td><td>1</td><td>Avengers: Endgame</td><td>$2,797,501,328</td><td>2019</td></tr>
</table>
<table class="wikitable">
  <tr><th>Country</th><th>Population</th></tr>
  <tr><td>China</td><td>1.4bn</td></tr>
</table>
<table>
  <tr><th>Rank</th><th>Film</th></tr>
  <tr><td>1</td><td>Not a wikitable</td></tr>
</table>
<table class="wikitable">
  <tr><th>Film</th><th>Gross (adjusted)</th></tr>
  <tr><td>Gone with the Wind</td><td>$4.1 billion</td></tr>
</table>
</body>
</html>`

func testFetcher(url string) *Fetcher {
	cfg := &config.Config{
		FilmsURL:     url,
		FetchTimeout: 5 * time.Second,
	}
	return NewFetcher(cfg, zap.NewNop())
}

func TestFetchTables(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(filmPageHTML))
	}))
	defer server.Close()

	fetcher := testFetcher(server.URL)
	tables, err := fetcher.FetchTables(context.Background(), server.URL)
	require.NoError(t, err)

	// Die Länder-Tabelle hat keine Film-Keywords, die dritte Tabelle trägt
	// keine wikitable-Klasse: beide werden übersprungen.
	require.Len(t, tables, 2)

	assert.Equal(t, []string{"Rank", "Peak", "Title", "Worldwide gross", "Year"}, tables[0].Headers)
	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, []string{"1", "1", "Avatar", "$2,923,710,708", "2009"}, tables[0].Rows[0])

	assert.Equal(t, []string{"Film", "Gross (adjusted)"}, tables[1].Headers)

	assert.Contains(t, gotUserAgent, "Mozilla/5.0")
}

func TestFetchTablesUsesConfiguredURLAsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(filmPageHTML))
	}))
	defer server.Close()

	fetcher := testFetcher(server.URL)
	tables, err := fetcher.FetchTables(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, tables)
}

func TestFetchTablesBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := testFetcher(server.URL)
	tables, err := fetcher.FetchTables(context.Background(), server.URL)
	require.Error(t, err)
	assert.Nil(t, tables)
	assert.Contains(t, err.Error(), "bad status")
}

func TestFetchTablesNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<table class="wikitable"><tr><th>City</th></tr><tr><td>Berlin</td></tr></table>`))
	}))
	defer server.Close()

	fetcher := testFetcher(server.URL)
	tables, err := fetcher.FetchTables(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestFetchTablesConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	fetcher := testFetcher(server.URL)
	_, err := fetcher.FetchTables(context.Background(), server.URL)
	assert.Error(t, err)
}
