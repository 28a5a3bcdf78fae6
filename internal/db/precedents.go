package db

import (
	"context"
	"fmt"

	"github.com/deallens/deallens/internal/models"
)

type PrecedentFilter struct {
	Sector string
	Region string
	Status string
	Limit  int
}

func (db *DB) ListPrecedents(ctx context.Context, f PrecedentFilter) ([]models.PrecedentDeal, error) {
	where := "WHERE TRUE"
	args := []any{}

	if f.Sector != "" {
		args = append(args, f.Sector)
		where += fmt.Sprintf(" AND sector = $%d", len(args))
	}
	if f.Region != "" {
		args = append(args, f.Region)
		where += fmt.Sprintf(" AND region = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	query := `
        SELECT id, acquirer, target, sector, region, announced_at, ev, revenue,
               ebitda, ev_to_revenue, ev_to_ebitda, premium, status
        FROM precedent_deals ` + where + fmt.Sprintf(`
        ORDER BY announced_at DESC
        LIMIT $%d`, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var precedents []models.PrecedentDeal
	for rows.Next() {
		var p models.PrecedentDeal
		if err := rows.Scan(
			&p.ID, &p.Acquirer, &p.Target, &p.Sector, &p.Region, &p.AnnouncedAt,
			&p.EV, &p.Revenue, &p.EBITDA, &p.EVToRevenue, &p.EVToEBITDA,
			&p.Premium, &p.Status,
		); err != nil {
			return nil, err
		}
		precedents = append(precedents, p)
	}

	return precedents, rows.Err()
}

type PrecedentSummary struct {
	Count             int     `json:"count"`
	MedianEVToRevenue float64 `json:"median_ev_to_revenue"`
	MedianEVToEBITDA  float64 `json:"median_ev_to_ebitda"`
	MedianPremium     float64 `json:"median_premium"`
	AvgEV             float64 `json:"avg_ev"`
}

func (db *DB) GetPrecedentSummary(ctx context.Context, f PrecedentFilter) (*PrecedentSummary, error) {
	where := "WHERE ev_to_ebitda > 0"
	args := []any{}

	if f.Sector != "" {
		args = append(args, f.Sector)
		where += fmt.Sprintf(" AND sector = $%d", len(args))
	}
	if f.Region != "" {
		args = append(args, f.Region)
		where += fmt.Sprintf(" AND region = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query := `
        SELECT COUNT(*),
               COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY ev_to_revenue), 0),
               COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY ev_to_ebitda), 0),
               COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY premium), 0),
               COALESCE(AVG(ev), 0)
        FROM precedent_deals ` + where

	var s PrecedentSummary
	err := db.Pool.QueryRow(ctx, query, args...).Scan(
		&s.Count, &s.MedianEVToRevenue, &s.MedianEVToEBITDA, &s.MedianPremium, &s.AvgEV,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}
