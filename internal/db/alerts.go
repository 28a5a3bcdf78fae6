package db

import (
	"context"
	"fmt"
	"time"

	"github.com/deallens/deallens/internal/models"
)

type AlertFilter struct {
	Unread *bool
	Limit  int
	Offset int
}

func (db *DB) ListAlerts(ctx context.Context, f AlertFilter) ([]models.Alert, int, int, error) {
	where := "WHERE TRUE"
	args := []any{}

	if f.Unread != nil {
		args = append(args, !*f.Unread)
		where += " AND read = $1"
	}

	var total int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM alerts "+where, args...).Scan(&total); err != nil {
		return nil, 0, 0, err
	}

	var unreadCount int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM alerts WHERE NOT read").Scan(&unreadCount); err != nil {
		return nil, 0, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit, f.Offset)

	query := `
        SELECT id, title, body, ticker, severity, type, read, created_at
        FROM alerts ` + where + fmt.Sprintf(`
        ORDER BY created_at DESC
        LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.Ticker, &a.Severity,
			&a.Type, &a.Read, &a.CreatedAt); err != nil {
			return nil, 0, 0, err
		}
		alerts = append(alerts, a)
	}

	return alerts, total, unreadCount, rows.Err()
}

func (db *DB) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	query := `
        SELECT id, title, body, ticker, severity, type, read, created_at
        FROM alerts
        WHERE id = $1
    `

	var a models.Alert
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Title, &a.Body, &a.Ticker, &a.Severity, &a.Type, &a.Read, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (db *DB) CreateAlert(ctx context.Context, a *models.Alert) error {
	query := `
        INSERT INTO alerts (id, title, body, ticker, severity, type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `

	return db.Pool.QueryRow(ctx, query,
		a.ID, a.Title, a.Body, a.Ticker, a.Severity, a.Type,
	).Scan(&a.CreatedAt)
}

func (db *DB) MarkAlertRead(ctx context.Context, id string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `UPDATE alerts SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (db *DB) MarkAllAlertsRead(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `UPDATE alerts SET read = TRUE WHERE NOT read`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (db *DB) DeleteAlert(ctx context.Context, id string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (db *DB) ClearAlerts(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM alerts`)
	return err
}

func (db *DB) DeleteReadAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM alerts WHERE read AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
