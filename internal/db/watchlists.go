package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deallens/deallens/internal/models"
)

func (db *DB) ListWatchlist(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	query := `
        SELECT id, user_id, ticker, target_price, notes, price_alerts_enabled,
               news_alerts_enabled, created_at
        FROM watchlists
        WHERE user_id = $1
        ORDER BY created_at DESC
    `

	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.WatchlistEntry
	for rows.Next() {
		var e models.WatchlistEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Ticker, &e.TargetPrice, &e.Notes,
			&e.PriceAlertsEnabled, &e.NewsAlertsEnabled, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// AddWatchlistEntry inserts or replaces the user's entry for a ticker. The
// conflict branch carries the alert toggles too, so re-adding a ticker whose
// price alert already fired re-arms it. The stored row's id and created_at
// are written back into e.
func (db *DB) AddWatchlistEntry(ctx context.Context, e *models.WatchlistEntry) error {
	query := `
        INSERT INTO watchlists (id, user_id, ticker, target_price, notes,
                                price_alerts_enabled, news_alerts_enabled)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id, ticker) DO UPDATE
        SET target_price = EXCLUDED.target_price,
            notes = EXCLUDED.notes,
            price_alerts_enabled = EXCLUDED.price_alerts_enabled,
            news_alerts_enabled = EXCLUDED.news_alerts_enabled
        RETURNING id, created_at
    `

	return db.Pool.QueryRow(ctx, query,
		e.ID, e.UserID, e.Ticker, e.TargetPrice, e.Notes,
		e.PriceAlertsEnabled, e.NewsAlertsEnabled,
	).Scan(&e.ID, &e.CreatedAt)
}

func (db *DB) RemoveWatchlistEntry(ctx context.Context, userID, ticker string) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM watchlists WHERE user_id = $1 AND ticker = $2`, userID, ticker)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s is not on the watchlist: %w", ticker, pgx.ErrNoRows)
	}
	return nil
}

// PriceWatch joins watchlist entries with current prices for alert evaluation.
type PriceWatch struct {
	UserID      string
	Ticker      string
	TargetPrice float64
	LastPrice   float64
}

func (db *DB) ListPriceWatches(ctx context.Context) ([]PriceWatch, error) {
	query := `
        SELECT w.user_id, w.ticker, w.target_price, c.last_price
        FROM watchlists w
        JOIN companies c ON c.ticker = w.ticker
        WHERE w.price_alerts_enabled AND w.target_price > 0 AND c.last_price > 0
    `

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var watches []PriceWatch
	for rows.Next() {
		var w PriceWatch
		if err := rows.Scan(&w.UserID, &w.Ticker, &w.TargetPrice, &w.LastPrice); err != nil {
			return nil, err
		}
		watches = append(watches, w)
	}

	return watches, rows.Err()
}

// DisablePriceAlerts turns a fired watch off so the same target does not
// alert again every evaluation run.
func (db *DB) DisablePriceAlerts(ctx context.Context, userID, ticker string) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE watchlists SET price_alerts_enabled = FALSE WHERE user_id = $1 AND ticker = $2`,
		userID, ticker)
	return err
}
