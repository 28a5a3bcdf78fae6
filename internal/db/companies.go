package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deallens/deallens/internal/models"
)

type CompanyFilter struct {
	Sector       string
	MinMarketCap float64
	MaxMarketCap float64
	Query        string
	Page         int
	PageSize     int
}

func (db *DB) ListCompanies(ctx context.Context, f CompanyFilter) ([]models.Company, int, error) {
	where := "WHERE is_active AND ticker <> ''"
	args := []any{}

	if f.Sector != "" {
		args = append(args, "%"+f.Sector+"%")
		where += fmt.Sprintf(" AND sector ILIKE $%d", len(args))
	}
	if f.MinMarketCap > 0 {
		args = append(args, f.MinMarketCap)
		where += fmt.Sprintf(" AND market_cap >= $%d", len(args))
	}
	if f.MaxMarketCap > 0 {
		args = append(args, f.MaxMarketCap)
		where += fmt.Sprintf(" AND market_cap <= $%d", len(args))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR ticker ILIKE $%d OR sector ILIKE $%d)",
			len(args), len(args), len(args))
	}

	var total int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM companies "+where, args...).Scan(&total); err != nil {
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
        SELECT id, ticker, name, sector, industry, country, market_cap, last_price,
               pe_ratio, ev_ebitda, ev_revenue, employees, is_public, is_active,
               created_at, updated_at
        FROM companies ` + where + fmt.Sprintf(`
        ORDER BY market_cap DESC
        LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(
			&c.ID, &c.Ticker, &c.Name, &c.Sector, &c.Industry, &c.Country,
			&c.MarketCap, &c.LastPrice, &c.PERatio, &c.EVEBITDA, &c.EVRevenue,
			&c.Employees, &c.IsPublic, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}

	return companies, total, rows.Err()
}

func (db *DB) GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error) {
	query := `
        SELECT id, ticker, name, sector, industry, country, market_cap, last_price,
               pe_ratio, ev_ebitda, ev_revenue, employees, is_public, is_active,
               created_at, updated_at
        FROM companies
        WHERE ticker = $1
    `

	var c models.Company
	err := db.Pool.QueryRow(ctx, query, ticker).Scan(
		&c.ID, &c.Ticker, &c.Name, &c.Sector, &c.Industry, &c.Country,
		&c.MarketCap, &c.LastPrice, &c.PERatio, &c.EVEBITDA, &c.EVRevenue,
		&c.Employees, &c.IsPublic, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

type CompanyUpdates struct {
	Name      *string  `json:"name"`
	Sector    *string  `json:"sector"`
	Industry  *string  `json:"industry"`
	Country   *string  `json:"country"`
	MarketCap *float64 `json:"market_cap"`
	Employees *int     `json:"employees"`
}

func (db *DB) UpdateCompany(ctx context.Context, ticker string, u CompanyUpdates) error {
	query := `
        UPDATE companies
        SET name = COALESCE($2, name),
            sector = COALESCE($3, sector),
            industry = COALESCE($4, industry),
            country = COALESCE($5, country),
            market_cap = COALESCE($6, market_cap),
            employees = COALESCE($7, employees),
            updated_at = NOW()
        WHERE ticker = $1
    `

	tag, err := db.Pool.Exec(ctx, query, ticker,
		u.Name, u.Sector, u.Industry, u.Country, u.MarketCap, u.Employees)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", ticker, pgx.ErrNoRows)
	}
	return nil
}

func (db *DB) UpdateQuote(ctx context.Context, ticker string, price float64) error {
	query := `
        UPDATE companies
        SET last_price = $2, updated_at = NOW()
        WHERE ticker = $1
    `

	_, err := db.Pool.Exec(ctx, query, ticker, price)
	return err
}

func (db *DB) ListActiveTickers(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT ticker FROM companies WHERE is_active ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}

	return tickers, rows.Err()
}

// TickerName is the slim company shape the news sync needs to build queries.
type TickerName struct {
	Ticker string
	Name   string
}

func (db *DB) ListTickerNames(ctx context.Context) ([]TickerName, error) {
	rows, err := db.Pool.Query(ctx, `SELECT ticker, name FROM companies WHERE is_active ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []TickerName
	for rows.Next() {
		var tn TickerName
		if err := rows.Scan(&tn.Ticker, &tn.Name); err != nil {
			return nil, err
		}
		companies = append(companies, tn)
	}

	return companies, rows.Err()
}

// ListPeers returns active companies in the given sector other than base,
// ordered by market cap. Used by the comps endpoints.
func (db *DB) ListPeers(ctx context.Context, sector, excludeTicker string, limit int) ([]models.Company, error) {
	if limit <= 0 {
		limit = 15
	}

	query := `
        SELECT id, ticker, name, sector, industry, country, market_cap, last_price,
               pe_ratio, ev_ebitda, ev_revenue, employees, is_public, is_active,
               created_at, updated_at
        FROM companies
        WHERE is_active AND sector = $1 AND ticker <> $2 AND pe_ratio > 0
        ORDER BY market_cap DESC
        LIMIT $3
    `

	rows, err := db.Pool.Query(ctx, query, sector, excludeTicker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peers []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(
			&c.ID, &c.Ticker, &c.Name, &c.Sector, &c.Industry, &c.Country,
			&c.MarketCap, &c.LastPrice, &c.PERatio, &c.EVEBITDA, &c.EVRevenue,
			&c.Employees, &c.IsPublic, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		peers = append(peers, c)
	}

	return peers, rows.Err()
}
