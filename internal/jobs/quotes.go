package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/marketdata"
	"github.com/deallens/deallens/internal/models"
)

type quoteStore interface {
	ListActiveTickers(ctx context.Context) ([]string, error)
	UpdateQuote(ctx context.Context, ticker string, price float64) error
	UpsertPricePoint(ctx context.Context, p *models.PricePoint) error
}

// QuoteSyncJob refreshes last prices and daily OHLCV rows for every tracked
// ticker, then invalidates the affected cached views.
type QuoteSyncJob struct {
	store    quoteStore
	cache    *cache.Manager
	provider marketdata.Provider
	log      zerolog.Logger
}

func NewQuoteSyncJob(store quoteStore, cacheManager *cache.Manager, provider marketdata.Provider, log zerolog.Logger) *QuoteSyncJob {
	return &QuoteSyncJob{
		store:    store,
		cache:    cacheManager,
		provider: provider,
		log:      log.With().Str("job", "quote_sync").Logger(),
	}
}

func (j *QuoteSyncJob) Name() string { return "quote_sync" }

func (j *QuoteSyncJob) Run(ctx context.Context) error {
	tickers, err := j.store.ListActiveTickers(ctx)
	if err != nil {
		return fmt.Errorf("list tickers: %w", err)
	}

	var failed int
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.syncOne(ctx, ticker); err != nil {
			failed++
			j.log.Warn().Err(err).Str("ticker", ticker).Msg("Quote sync failed")
		}
	}

	j.log.Info().Int("tickers", len(tickers)).Int("failed", failed).Msg("Quote sync finished")
	if failed == len(tickers) && len(tickers) > 0 {
		return fmt.Errorf("all %d quote fetches failed", failed)
	}
	return nil
}

func (j *QuoteSyncJob) syncOne(ctx context.Context, ticker string) error {
	quote, err := j.provider.GetQuote(ctx, ticker)
	if err != nil {
		return err
	}

	if err := j.store.UpdateQuote(ctx, ticker, quote.Price); err != nil {
		return fmt.Errorf("update quote: %w", err)
	}

	if !quote.TradingDay.IsZero() {
		point := &models.PricePoint{
			Ticker: ticker,
			Date:   quote.TradingDay,
			Open:   quote.Open,
			High:   quote.High,
			Low:    quote.Low,
			Close:  quote.Price,
			Volume: quote.Volume,
		}
		if err := j.store.UpsertPricePoint(ctx, point); err != nil {
			return fmt.Errorf("upsert price point: %w", err)
		}
	}

	j.cache.InvalidateCompany(ctx, ticker)
	return nil
}
