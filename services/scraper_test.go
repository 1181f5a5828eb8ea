package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"data-hand/config"
	"data-hand/models"
)

// stubProvider steht in Tests für die Wikipedia-Quelle.
type stubProvider struct {
	tables   []models.RawTable
	err      error
	panicMsg string
}

func (s *stubProvider) FetchTables(_ context.Context, _ string) ([]models.RawTable, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.tables, s.err
}

func (s *stubProvider) Name() string { return "stub" }

func testConfig() *config.Config {
	return &config.Config{
		FilmsURL:     "http://example.invalid/films",
		FetchTimeout: time.Second,
		MaxRecords:   50,
	}
}

func TestScrapeServiceFallback(t *testing.T) {
	t.Run("fetch failure serves the exact fallback set", func(t *testing.T) {
		svc := NewScrapeService(testConfig(), zap.NewNop(), &stubProvider{err: errors.New("connection refused")})

		records := svc.FetchFilms(context.Background(), "")
		assert.Equal(t, FallbackFilms(), records)
	})

	t.Run("empty scrape result serves fallback", func(t *testing.T) {
		svc := NewScrapeService(testConfig(), zap.NewNop(), &stubProvider{})

		records := svc.FetchFilms(context.Background(), "")
		require.Len(t, records, 10)
		title, _ := records[3].Get("title")
		assert.Equal(t, "Titanic", title.Str)
	})

	t.Run("tables that normalize to nothing serve fallback", func(t *testing.T) {
		provider := &stubProvider{tables: []models.RawTable{
			{Headers: []string{"Rank", "Title", "Year"}, Rows: [][]string{{"1", "", "2009"}}},
		}}
		svc := NewScrapeService(testConfig(), zap.NewNop(), provider)

		records := svc.FetchFilms(context.Background(), "")
		assert.Equal(t, FallbackFilms(), records)
	})
}

func TestScrapeServiceLiveData(t *testing.T) {
	t.Run("concatenates all candidate tables in order", func(t *testing.T) {
		provider := &stubProvider{tables: []models.RawTable{
			{
				Headers: []string{"Rank", "Title", "Worldwide gross"},
				Rows:    [][]string{{"1", "Avatar", "$2.9 billion"}},
			},
			{
				Headers: []string{"Rank", "Title", "Worldwide gross"},
				Rows:    [][]string{{"2", "Titanic", "$2.2 billion"}},
			},
		}}
		svc := NewScrapeService(testConfig(), zap.NewNop(), provider)

		records := svc.FetchFilms(context.Background(), "")
		require.Len(t, records, 2)
		first, _ := records[0].Get("title")
		second, _ := records[1].Get("title")
		assert.Equal(t, "Avatar", first.Str)
		assert.Equal(t, "Titanic", second.Str)
	})

	t.Run("truncates to MaxRecords", func(t *testing.T) {
		var rows [][]string
		for i := 0; i < 80; i++ {
			rows = append(rows, []string{fmt.Sprintf("%d", i+1), fmt.Sprintf("Film %d", i+1), "$1 billion"})
		}
		provider := &stubProvider{tables: []models.RawTable{
			{Headers: []string{"Rank", "Title", "Worldwide gross"}, Rows: rows},
		}}
		svc := NewScrapeService(testConfig(), zap.NewNop(), provider)

		records := svc.FetchFilms(context.Background(), "")
		assert.Len(t, records, 50)
	})
}

func TestFallbackFilms(t *testing.T) {
	records := FallbackFilms()
	require.Len(t, records, 10)

	// Jeder Fallback-Record ist vollständig befüllt.
	for _, rec := range records {
		for _, field := range []string{"rank", "title", "worldwide_gross", "year", "peak"} {
			v, ok := rec.Get(field)
			require.True(t, ok, "field %s", field)
			assert.False(t, v.IsAbsent())
		}
	}

	// Jeder Aufruf liefert frische Records, keine geteilte Mutation.
	other := FallbackFilms()
	other[0].Set("title", models.StringValue("mutated"))
	title, _ := records[0].Get("title")
	assert.Equal(t, "Avatar", title.Str)
}
