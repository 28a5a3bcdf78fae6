package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/marketdata"
	"github.com/deallens/deallens/internal/models"
)

type newsStore interface {
	ListTickerNames(ctx context.Context) ([]db.TickerName, error)
	InsertNewsItems(ctx context.Context, items []models.NewsItem) (int, error)
}

// NewsSyncJob pulls recent stories for every tracked company and stores the
// ones it has not seen yet. Story ids hash the title and URL, so the insert
// dedupes across runs without a separate existence check.
type NewsSyncJob struct {
	store        newsStore
	cache        *cache.Manager
	provider     marketdata.NewsProvider
	lookbackDays int
	log          zerolog.Logger
}

func NewNewsSyncJob(store newsStore, cacheManager *cache.Manager, provider marketdata.NewsProvider, lookbackDays int, log zerolog.Logger) *NewsSyncJob {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &NewsSyncJob{
		store:        store,
		cache:        cacheManager,
		provider:     provider,
		lookbackDays: lookbackDays,
		log:          log.With().Str("job", "news_sync").Logger(),
	}
}

func (j *NewsSyncJob) Name() string { return "news_sync" }

func (j *NewsSyncJob) Run(ctx context.Context) error {
	companies, err := j.store.ListTickerNames(ctx)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}

	since := time.Now().UTC().AddDate(0, 0, -j.lookbackDays)

	var failed, inserted int
	for _, c := range companies {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := j.syncOne(ctx, c, since)
		if err != nil {
			failed++
			j.log.Warn().Err(err).Str("ticker", c.Ticker).Msg("News sync failed")
			continue
		}
		inserted += n
	}

	j.log.Info().Int("companies", len(companies)).Int("inserted", inserted).
		Int("failed", failed).Msg("News sync finished")
	if failed == len(companies) && len(companies) > 0 {
		return fmt.Errorf("all %d news fetches failed", failed)
	}
	return nil
}

func (j *NewsSyncJob) syncOne(ctx context.Context, c db.TickerName, since time.Time) (int, error) {
	stories, err := j.provider.GetCompanyNews(ctx, c.Ticker, c.Name, since)
	if err != nil {
		return 0, err
	}
	if len(stories) == 0 {
		return 0, nil
	}

	items := make([]models.NewsItem, 0, len(stories))
	for _, s := range stories {
		items = append(items, models.NewsItem{
			ID:          storyID(s),
			Ticker:      c.Ticker,
			Title:       s.Title,
			Source:      s.Source,
			URL:         s.URL,
			Sentiment:   headlineSentiment(s.Title),
			Relevance:   headlineRelevance(s.Title, c),
			Summary:     s.Summary,
			PublishedAt: s.PublishedAt,
		})
	}

	inserted, err := j.store.InsertNewsItems(ctx, items)
	if err != nil {
		return inserted, fmt.Errorf("insert news: %w", err)
	}
	if inserted > 0 {
		j.cache.InvalidateCompany(ctx, c.Ticker)
	}
	return inserted, nil
}

func storyID(s marketdata.Story) string {
	sum := sha256.Sum256([]byte(s.Title + s.URL))
	return "news-" + hex.EncodeToString(sum[:])[:16]
}

var (
	positiveWords = []string{"beats", "surge", "record", "upgrade", "growth", "rally", "profit"}
	negativeWords = []string{"misses", "plunge", "lawsuit", "downgrade", "layoff", "fraud", "loss"}
)

// headlineSentiment is a coarse keyword screen. Richer scoring happens
// downstream of storage and is not this job's concern.
func headlineSentiment(title string) string {
	lower := strings.ToLower(title)
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			return "negative"
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			return "positive"
		}
	}
	return "neutral"
}

func headlineRelevance(title string, c db.TickerName) float64 {
	lower := strings.ToLower(title)
	if strings.Contains(lower, strings.ToLower(c.Ticker)) ||
		(c.Name != "" && strings.Contains(lower, strings.ToLower(c.Name))) {
		return 1.0
	}
	return 0.5
}
