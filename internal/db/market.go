package db

import (
	"context"

	"github.com/deallens/deallens/internal/models"
)

func (db *DB) ListTimeseries(ctx context.Context, ticker string, days int) ([]models.PricePoint, error) {
	if days <= 0 {
		days = 90
	}

	query := `
        SELECT ticker, date, open, high, low, close, volume
        FROM price_points
        WHERE ticker = $1 AND date >= CURRENT_DATE - $2::int
        ORDER BY date
    `

	rows, err := db.Pool.Query(ctx, query, ticker, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Ticker, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

func (db *DB) UpsertPricePoint(ctx context.Context, p *models.PricePoint) error {
	query := `
        INSERT INTO price_points (ticker, date, open, high, low, close, volume)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (ticker, date) DO UPDATE
        SET high = GREATEST(price_points.high, EXCLUDED.high),
            low = LEAST(price_points.low, EXCLUDED.low),
            close = EXCLUDED.close,
            volume = EXCLUDED.volume
    `

	_, err := db.Pool.Exec(ctx, query,
		p.Ticker, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume)
	return err
}

func (db *DB) ListNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT id, ticker, title, source, url, sentiment, relevance, summary, published_at
        FROM news_items
        WHERE ticker = $1
        ORDER BY published_at DESC
        LIMIT $2
    `

	rows, err := db.Pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var n models.NewsItem
		if err := rows.Scan(&n.ID, &n.Ticker, &n.Title, &n.Source, &n.URL,
			&n.Sentiment, &n.Relevance, &n.Summary, &n.PublishedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

// InsertNewsItems stores fetched stories, skipping ids already present.
// Item ids are content derived, so re-running a sync is a no-op for stories
// it has seen before. Returns how many rows were actually inserted.
func (db *DB) InsertNewsItems(ctx context.Context, items []models.NewsItem) (int, error) {
	query := `
        INSERT INTO news_items (id, ticker, title, source, url, sentiment, relevance, summary, published_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO NOTHING
    `

	var inserted int
	for _, n := range items {
		tag, err := db.Pool.Exec(ctx, query,
			n.ID, n.Ticker, n.Title, n.Source, n.URL,
			n.Sentiment, n.Relevance, n.Summary, n.PublishedAt)
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

func (db *DB) ListOwnership(ctx context.Context, ticker string) ([]models.OwnershipHolder, error) {
	query := `
        SELECT ticker, holder_name, holder_type, pct_held, shares
        FROM ownership_holders
        WHERE ticker = $1
        ORDER BY pct_held DESC
    `

	rows, err := db.Pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holders []models.OwnershipHolder
	for rows.Next() {
		var h models.OwnershipHolder
		if err := rows.Scan(&h.Ticker, &h.HolderName, &h.HolderType, &h.PctHeld, &h.Shares); err != nil {
			return nil, err
		}
		holders = append(holders, h)
	}

	return holders, rows.Err()
}
