package db

import (
	"context"
	"fmt"
	"time"

	"github.com/deallens/deallens/internal/models"
)

type DealFilter struct {
	Industry  string
	Status    string
	ValueMin  float64
	ValueMax  float64
	StartDate *time.Time
	EndDate   *time.Time
	Query     string
	Page      int
	PageSize  int
}

func (db *DB) ListDeals(ctx context.Context, f DealFilter) ([]models.Deal, int, error) {
	where := "WHERE TRUE"
	args := []any{}

	if f.Industry != "" {
		args = append(args, "%"+f.Industry+"%")
		where += fmt.Sprintf(" AND industry ILIKE $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.ValueMin > 0 {
		args = append(args, f.ValueMin)
		where += fmt.Sprintf(" AND value_usd >= $%d", len(args))
	}
	if f.ValueMax > 0 {
		args = append(args, f.ValueMax)
		where += fmt.Sprintf(" AND value_usd < $%d", len(args))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where += fmt.Sprintf(" AND announced_at >= $%d", len(args))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where += fmt.Sprintf(" AND announced_at <= $%d", len(args))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where += fmt.Sprintf(" AND (title ILIKE $%d OR acquirer ILIKE $%d OR target ILIKE $%d)",
			len(args), len(args), len(args))
	}

	var total int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM deals "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	query := `
        SELECT id, title, deal_type, status, acquirer, target, industry, value_usd,
               premium_pct, multiple_ev_ebitda, overview, rationale, announced_at,
               closed_at, created_at, updated_at
        FROM deals ` + where + fmt.Sprintf(`
        ORDER BY announced_at DESC
        LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		if err := rows.Scan(
			&d.ID, &d.Title, &d.DealType, &d.Status, &d.Acquirer, &d.Target,
			&d.Industry, &d.ValueUSD, &d.PremiumPct, &d.EVEBITDAMult,
			&d.Overview, &d.Rationale, &d.AnnouncedAt, &d.ClosedAt,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		deals = append(deals, d)
	}

	return deals, total, rows.Err()
}

func (db *DB) GetDealByID(ctx context.Context, id string) (*models.Deal, error) {
	query := `
        SELECT id, title, deal_type, status, acquirer, target, industry, value_usd,
               premium_pct, multiple_ev_ebitda, overview, rationale, announced_at,
               closed_at, created_at, updated_at
        FROM deals
        WHERE id = $1
    `

	var d models.Deal
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Title, &d.DealType, &d.Status, &d.Acquirer, &d.Target,
		&d.Industry, &d.ValueUSD, &d.PremiumPct, &d.EVEBITDAMult,
		&d.Overview, &d.Rationale, &d.AnnouncedAt, &d.ClosedAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (db *DB) RecentDeals(ctx context.Context, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
        SELECT id, title, deal_type, status, acquirer, target, industry, value_usd,
               premium_pct, multiple_ev_ebitda, overview, rationale, announced_at,
               closed_at, created_at, updated_at
        FROM deals
        ORDER BY announced_at DESC
        LIMIT $1
    `

	rows, err := db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		if err := rows.Scan(
			&d.ID, &d.Title, &d.DealType, &d.Status, &d.Acquirer, &d.Target,
			&d.Industry, &d.ValueUSD, &d.PremiumPct, &d.EVEBITDAMult,
			&d.Overview, &d.Rationale, &d.AnnouncedAt, &d.ClosedAt,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}

	return deals, rows.Err()
}

// SearchDeals is a lightweight lookup for the search endpoint.
func (db *DB) SearchDeals(ctx context.Context, q string, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 6
	}

	query := `
        SELECT id, title, deal_type, status, acquirer, target, industry, value_usd,
               premium_pct, multiple_ev_ebitda, overview, rationale, announced_at,
               closed_at, created_at, updated_at
        FROM deals
        WHERE acquirer ILIKE $1 OR target ILIKE $1 OR title ILIKE $1
        ORDER BY value_usd DESC
        LIMIT $2
    `

	rows, err := db.Pool.Query(ctx, query, "%"+q+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		if err := rows.Scan(
			&d.ID, &d.Title, &d.DealType, &d.Status, &d.Acquirer, &d.Target,
			&d.Industry, &d.ValueUSD, &d.PremiumPct, &d.EVEBITDAMult,
			&d.Overview, &d.Rationale, &d.AnnouncedAt, &d.ClosedAt,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}

	return deals, rows.Err()
}
