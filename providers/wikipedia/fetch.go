package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"data-hand/config"
	"data-hand/models"
)

// candidateKeywords entscheiden, ob eine wikitable wie eine Film-Tabelle
// aussieht. Es reicht, wenn eines der Wörter in den Headern vorkommt.
var candidateKeywords = []string{"rank", "film", "worldwide", "gross"}

// userAgentTransport fügt jeder Anfrage einen Browser-User-Agent hinzu.
type userAgentTransport struct {
	Transport http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	return t.Transport.RoundTrip(req)
}

// Fetcher kapselt die Logik für das Scrapen von Wikipedia-Tabellen.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Wikipedia-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Provider-Namen zurück.
func (f *Fetcher) Name() string {
	return "wikipedia"
}

// FetchTables lädt die Seite und gibt jede wikitable zurück, deren Header
// nach einer Film-Tabelle aussehen, in Dokument-Reihenfolge. Der HTTP-Client
// wird pro Aufruf erstellt und lebt nicht über den Request hinaus.
func (f *Fetcher) FetchTables(ctx context.Context, url string) ([]models.RawTable, error) {
	if url == "" {
		url = f.Config.FilmsURL
	}
	log := f.Logger.With(zap.String("provider", f.Name()), zap.String("url", url))

	client := &http.Client{
		Timeout: f.Config.FetchTimeout,
		Transport: &userAgentTransport{
			Transport: http.DefaultTransport,
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var tables []models.RawTable
	doc.Find("table.wikitable").Each(func(_ int, table *goquery.Selection) {
		if !isCandidateTable(table) {
			return
		}
		tables = append(tables, parseTable(table))
	})

	log.Info("Wikipedia fetch completed", zap.Int("candidate_tables", len(tables)))
	return tables, nil
}

// isCandidateTable prüft die zusammengesetzten Header-Texte auf die
// Film-Keywords.
func isCandidateTable(table *goquery.Selection) bool {
	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(th.Text())))
	})
	joined := strings.Join(headers, " ")
	for _, kw := range candidateKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

// parseTable liest Kopfzeile und Datenzeilen als rohe Zelltexte aus.
func parseTable(table *goquery.Selection) models.RawTable {
	var raw models.RawTable

	rows := table.Find("tr")
	rows.Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if i == 0 {
			raw.Headers = cells
			return
		}
		raw.Rows = append(raw.Rows, cells)
	})

	return raw
}
