package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"data-hand/models"
)

// newTestRouter baut einen Router, dessen Scraper garantiert auf die
// Fallback-Daten läuft.
func newTestRouter(provider *stubProvider) *TaskRouter {
	logger := zap.NewNop()
	scraper := NewScrapeService(testConfig(), logger, provider)
	return NewTaskRouter(logger, scraper, NewStatsEngine(logger), NewChartRenderer(logger))
}

func TestClassify(t *testing.T) {
	router := newTestRouter(&stubProvider{})

	cases := []struct {
		task string
		want Domain
	}{
		{"Scrape the Wikipedia list of highest grossing films", DomainFilms},
		{"Analyze the Film data from Wikipedia", DomainFilms},
		{"Run a query against the sales database", DomainDatabase},
		{"Summarize this dataset", DomainGeneric},
		{"", DomainGeneric},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, router.Classify(models.Task{Task: tc.task}), "task %q", tc.task)
	}
}

func TestRouteFilms(t *testing.T) {
	router := newTestRouter(&stubProvider{err: errors.New("network down")})
	task := models.Task{
		Task: "Scrape Wikipedia for the highest grossing films",
		Questions: []string{
			"How many $2 bn movies were released before 2000?",
			"Which is the earliest film that grossed over $1.5 bn?",
			"What's the correlation between the Rank and Peak?",
			"Draw a scatterplot of Rank and Peak",
			"Who directed the most of these?",
		},
	}

	results := router.Route(context.Background(), task)
	require.Len(t, results, len(task.Questions))

	assert.Equal(t, 1, results[0])
	assert.Equal(t, "Titanic", results[1])
	assert.InDelta(t, fallbackCorrelation, results[2].(float64), 1e-12)
	assert.True(t, strings.HasPrefix(results[3].(string), "data:image/png;base64,"))
	assert.Equal(t, "Question not recognized", results[4])
}

func TestRouteFilmsRulePriority(t *testing.T) {
	router := newTestRouter(&stubProvider{err: errors.New("network down")})

	// "correlation" steht vor "plot" in der Regel-Liste: die erste passende
	// Regel gewinnt, kein Fallthrough.
	task := models.Task{
		Task:      "wikipedia film analysis",
		Questions: []string{"Plot the correlation between Rank and Peak"},
	}

	results := router.Route(context.Background(), task)
	require.Len(t, results, 1)
	assert.InDelta(t, fallbackCorrelation, results[0].(float64), 1e-12)
}

func TestRouteFilmsNoQuestions(t *testing.T) {
	router := newTestRouter(&stubProvider{err: errors.New("network down")})
	task := models.Task{Task: "wikipedia film analysis"}

	results := router.Route(context.Background(), task)
	assert.Equal(t, []any{"No results generated"}, results)
}

func TestRouteDatabase(t *testing.T) {
	router := newTestRouter(&stubProvider{})
	task := models.Task{
		Task: "Run this against our database",
		Questions: []string{
			"Count the rows in the orders table",
			"What is the regression slope of delay by court?",
			"Plot year and delay",
			"Anything else?",
		},
	}

	results := router.Route(context.Background(), task)
	require.Len(t, results, 4)
	assert.Equal(t, 42, results[0])
	assert.Equal(t, 0.75, results[1])
	assert.Equal(t, MinimalPixelPNG, results[2])
	assert.Equal(t, "Database analysis result", results[3])
}

func TestRouteGeneric(t *testing.T) {
	router := newTestRouter(&stubProvider{})

	t.Run("no questions", func(t *testing.T) {
		results := router.Route(context.Background(), models.Task{Task: "just some text"})
		assert.Equal(t, []any{"Generic analysis completed"}, results)
	})

	t.Run("keyword answers", func(t *testing.T) {
		task := models.Task{
			Task: "analyze this",
			Questions: []string{
				"How many entries are there?",
				"What is the top entry?",
				"Is there a correlation?",
				"Chart the distribution",
				"Tell me more",
			},
		}
		results := router.Route(context.Background(), task)
		require.Len(t, results, 5)
		assert.Equal(t, 1, results[0])
		assert.Equal(t, "Sample answer", results[1])
		assert.Equal(t, 0.5, results[2])
		assert.Equal(t, MinimalPixelPNG, results[3])
		assert.Equal(t, "Analysis result", results[4])
	})
}

func TestRouteRecoversFromPanic(t *testing.T) {
	router := newTestRouter(&stubProvider{panicMsg: "scraper exploded"})
	task := models.Task{
		Task:      "wikipedia film analysis",
		Questions: []string{"What's the correlation between Rank and Peak?"},
	}

	results := router.Route(context.Background(), task)
	require.Len(t, results, 1)
	msg, ok := results[0].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(msg, "Error processing task: "))
	assert.Contains(t, msg, "scraper exploded")
}

func TestRouteFilmsScrapesOncePerTask(t *testing.T) {
	provider := &countingProvider{}
	router := newTestRouter(&stubProvider{})
	router.Scraper = NewScrapeService(testConfig(), zap.NewNop(), provider)

	task := models.Task{
		Task: "wikipedia film analysis",
		Questions: []string{
			"How many $2 bn movies were released before 2000?",
			"What's the correlation between Rank and Peak?",
			"Which is the earliest film that grossed over $1.5 bn?",
		},
	}

	results := router.Route(context.Background(), task)
	require.Len(t, results, 3)
	assert.Equal(t, 1, provider.calls)
}

type countingProvider struct {
	calls int
}

func (c *countingProvider) FetchTables(_ context.Context, _ string) ([]models.RawTable, error) {
	c.calls++
	return nil, errors.New("forced fallback")
}

func (c *countingProvider) Name() string { return "counting" }
