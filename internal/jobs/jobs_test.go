package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/marketdata"
	"github.com/deallens/deallens/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func testCache() *cache.Manager {
	return cache.NewManager(nil, testLogger())
}

type stubQuoteStore struct {
	tickers []string
	quotes  map[string]float64
	points  []models.PricePoint
}

func (s *stubQuoteStore) ListActiveTickers(ctx context.Context) ([]string, error) {
	return s.tickers, nil
}

func (s *stubQuoteStore) UpdateQuote(ctx context.Context, ticker string, price float64) error {
	if s.quotes == nil {
		s.quotes = make(map[string]float64)
	}
	s.quotes[ticker] = price
	return nil
}

func (s *stubQuoteStore) UpsertPricePoint(ctx context.Context, p *models.PricePoint) error {
	s.points = append(s.points, *p)
	return nil
}

type stubProvider struct {
	quotes map[string]*marketdata.Quote
	errs   map[string]error
}

func (p *stubProvider) GetQuote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	if err, ok := p.errs[symbol]; ok {
		return nil, err
	}
	if q, ok := p.quotes[symbol]; ok {
		return q, nil
	}
	return nil, errors.New("unknown symbol")
}

func TestQuoteSyncUpdatesStore(t *testing.T) {
	store := &stubQuoteStore{tickers: []string{"AAPL", "MSFT"}}
	provider := &stubProvider{quotes: map[string]*marketdata.Quote{
		"AAPL": {Symbol: "AAPL", Price: 230.12, Open: 228.5, High: 231.1, Low: 227.9, Volume: 100, TradingDay: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)},
		"MSFT": {Symbol: "MSFT", Price: 512.40, TradingDay: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)},
	}}

	job := NewQuoteSyncJob(store, testCache(), provider, testLogger())
	require.NoError(t, job.Run(context.Background()))

	assert.InDelta(t, 230.12, store.quotes["AAPL"], 0.001)
	assert.InDelta(t, 512.40, store.quotes["MSFT"], 0.001)
	assert.Len(t, store.points, 2)
}

func TestQuoteSyncToleratesPartialFailure(t *testing.T) {
	store := &stubQuoteStore{tickers: []string{"AAPL", "BAD"}}
	provider := &stubProvider{
		quotes: map[string]*marketdata.Quote{"AAPL": {Symbol: "AAPL", Price: 230.12}},
		errs:   map[string]error{"BAD": errors.New("throttled")},
	}

	job := NewQuoteSyncJob(store, testCache(), provider, testLogger())
	require.NoError(t, job.Run(context.Background()))
	assert.Contains(t, store.quotes, "AAPL")
	assert.NotContains(t, store.quotes, "BAD")
}

func TestQuoteSyncFailsWhenEverythingFails(t *testing.T) {
	store := &stubQuoteStore{tickers: []string{"A", "B"}}
	provider := &stubProvider{errs: map[string]error{
		"A": errors.New("down"),
		"B": errors.New("down"),
	}}

	job := NewQuoteSyncJob(store, testCache(), provider, testLogger())
	assert.Error(t, job.Run(context.Background()))
}

type stubNewsStore struct {
	companies []db.TickerName
	items     []models.NewsItem
}

func (s *stubNewsStore) ListTickerNames(ctx context.Context) ([]db.TickerName, error) {
	return s.companies, nil
}

func (s *stubNewsStore) InsertNewsItems(ctx context.Context, items []models.NewsItem) (int, error) {
	s.items = append(s.items, items...)
	return len(items), nil
}

type stubNewsProvider struct {
	stories map[string][]marketdata.Story
	errs    map[string]error
}

func (p *stubNewsProvider) GetCompanyNews(ctx context.Context, ticker, name string, since time.Time) ([]marketdata.Story, error) {
	if err, ok := p.errs[ticker]; ok {
		return nil, err
	}
	return p.stories[ticker], nil
}

func TestNewsSyncStoresFetchedStories(t *testing.T) {
	published := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	store := &stubNewsStore{companies: []db.TickerName{
		{Ticker: "AAPL", Name: "Apple Inc."},
		{Ticker: "MSFT", Name: "Microsoft"},
	}}
	provider := &stubNewsProvider{stories: map[string][]marketdata.Story{
		"AAPL": {
			{Title: "Apple beats quarterly estimates", Source: "Reuters", URL: "https://example.com/a", PublishedAt: published},
			{Title: "Supplier faces lawsuit over parts", Source: "FT", URL: "https://example.com/b", PublishedAt: published},
		},
		"MSFT": {
			{Title: "Azure wins government contract", Source: "Bloomberg", URL: "https://example.com/c", PublishedAt: published},
		},
	}}

	job := NewNewsSyncJob(store, testCache(), provider, 7, testLogger())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, store.items, 3)
	assert.Equal(t, "AAPL", store.items[0].Ticker)
	assert.Equal(t, published, store.items[0].PublishedAt)

	// Headline keyword screen and name based relevance.
	assert.Equal(t, "positive", store.items[0].Sentiment)
	assert.InDelta(t, 1.0, store.items[0].Relevance, 0.001)
	assert.Equal(t, "negative", store.items[1].Sentiment)
	assert.InDelta(t, 0.5, store.items[1].Relevance, 0.001)
	assert.Equal(t, "neutral", store.items[2].Sentiment)

	for _, item := range store.items {
		assert.Regexp(t, `^news-[0-9a-f]{16}$`, item.ID)
	}
}

func TestNewsSyncIDsAreStableAcrossRuns(t *testing.T) {
	story := marketdata.Story{Title: "Apple beats quarterly estimates", URL: "https://example.com/a"}
	store := &stubNewsStore{companies: []db.TickerName{{Ticker: "AAPL", Name: "Apple Inc."}}}
	provider := &stubNewsProvider{stories: map[string][]marketdata.Story{"AAPL": {story}}}

	job := NewNewsSyncJob(store, testCache(), provider, 7, testLogger())
	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	// The same story maps to the same id, so the conflict clause skips it.
	require.Len(t, store.items, 2)
	assert.Equal(t, store.items[0].ID, store.items[1].ID)
}

func TestNewsSyncToleratesPartialFailure(t *testing.T) {
	store := &stubNewsStore{companies: []db.TickerName{
		{Ticker: "AAPL", Name: "Apple Inc."},
		{Ticker: "BAD", Name: "Bad Co"},
	}}
	provider := &stubNewsProvider{
		stories: map[string][]marketdata.Story{
			"AAPL": {{Title: "Apple supplier update", URL: "https://example.com/a"}},
		},
		errs: map[string]error{"BAD": errors.New("rate limited")},
	}

	job := NewNewsSyncJob(store, testCache(), provider, 7, testLogger())
	require.NoError(t, job.Run(context.Background()))
	require.Len(t, store.items, 1)
	assert.Equal(t, "AAPL", store.items[0].Ticker)
}

func TestNewsSyncFailsWhenEverythingFails(t *testing.T) {
	store := &stubNewsStore{companies: []db.TickerName{{Ticker: "A"}, {Ticker: "B"}}}
	provider := &stubNewsProvider{errs: map[string]error{
		"A": errors.New("down"),
		"B": errors.New("down"),
	}}

	job := NewNewsSyncJob(store, testCache(), provider, 7, testLogger())
	assert.Error(t, job.Run(context.Background()))
}

type stubAlertEvalStore struct {
	watches  []db.PriceWatch
	alerts   []models.Alert
	disabled []string
}

func (s *stubAlertEvalStore) ListPriceWatches(ctx context.Context) ([]db.PriceWatch, error) {
	return s.watches, nil
}

func (s *stubAlertEvalStore) CreateAlert(ctx context.Context, a *models.Alert) error {
	s.alerts = append(s.alerts, *a)
	return nil
}

func (s *stubAlertEvalStore) DisablePriceAlerts(ctx context.Context, userID, ticker string) error {
	s.disabled = append(s.disabled, userID+"/"+ticker)
	return nil
}

func TestAlertEvaluationFiresOnReachedTargets(t *testing.T) {
	store := &stubAlertEvalStore{watches: []db.PriceWatch{
		{UserID: "u1", Ticker: "AAPL", TargetPrice: 200, LastPrice: 230.12},
		{UserID: "u1", Ticker: "MSFT", TargetPrice: 600, LastPrice: 512.40},
		{UserID: "u2", Ticker: "NVDA", TargetPrice: 150, LastPrice: 150},
	}}

	job := NewAlertEvaluationJob(store, testLogger())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, store.alerts, 2)
	assert.Equal(t, "AAPL", store.alerts[0].Ticker)
	assert.Equal(t, "price_target", store.alerts[0].Type)
	assert.Contains(t, store.alerts[0].Body, "230.12")
	assert.Equal(t, []string{"u1/AAPL", "u2/NVDA"}, store.disabled)
}

func TestAlertEvaluationNoWatches(t *testing.T) {
	job := NewAlertEvaluationJob(&stubAlertEvalStore{}, testLogger())
	require.NoError(t, job.Run(context.Background()))
}

type stubCleanupStore struct {
	cutoff  time.Time
	deleted int64
}

func (s *stubCleanupStore) DeleteReadAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, nil
}

func TestAlertCleanupUsesRetentionWindow(t *testing.T) {
	store := &stubCleanupStore{deleted: 4}
	job := NewAlertCleanupJob(store, 30, testLogger())

	require.NoError(t, job.Run(context.Background()))

	wantCutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, wantCutoff, store.cutoff, time.Minute)
}

func TestSchedulerRunNow(t *testing.T) {
	s := New(testLogger())
	store := &stubAlertEvalStore{watches: []db.PriceWatch{
		{UserID: "u1", Ticker: "AAPL", TargetPrice: 100, LastPrice: 120},
	}}

	require.NoError(t, s.RunNow(context.Background(), NewAlertEvaluationJob(store, testLogger())))
	assert.Len(t, store.alerts, 1)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := New(testLogger())
	err := s.AddJob("not a schedule", NewAlertEvaluationJob(&stubAlertEvalStore{}, testLogger()))
	assert.Error(t, err)
}
