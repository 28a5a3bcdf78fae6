package db

import (
	"context"
	"fmt"
	"strings"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    username TEXT UNIQUE NOT NULL,
    full_name TEXT NOT NULL DEFAULT '',
    hashed_password TEXT NOT NULL,
    organization TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS companies (
    id TEXT PRIMARY KEY,
    ticker TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    sector TEXT NOT NULL DEFAULT '',
    industry TEXT NOT NULL DEFAULT '',
    country TEXT NOT NULL DEFAULT '',
    market_cap NUMERIC(15,2) NOT NULL DEFAULT 0,
    last_price NUMERIC(15,4) NOT NULL DEFAULT 0,
    pe_ratio NUMERIC(8,2) NOT NULL DEFAULT 0,
    ev_ebitda NUMERIC(8,2) NOT NULL DEFAULT 0,
    ev_revenue NUMERIC(8,2) NOT NULL DEFAULT 0,
    employees INTEGER NOT NULL DEFAULT 0,
    is_public BOOLEAN NOT NULL DEFAULT TRUE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS ix_companies_sector ON companies (sector);
CREATE INDEX IF NOT EXISTS ix_companies_market_cap ON companies (market_cap);

CREATE TABLE IF NOT EXISTS deals (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    deal_type TEXT NOT NULL DEFAULT 'acquisition',
    status TEXT NOT NULL DEFAULT 'Announced',
    acquirer TEXT NOT NULL,
    target TEXT NOT NULL,
    industry TEXT NOT NULL DEFAULT '',
    value_usd NUMERIC(15,2) NOT NULL DEFAULT 0,
    premium_pct NUMERIC(8,2) NOT NULL DEFAULT 0,
    multiple_ev_ebitda NUMERIC(8,2) NOT NULL DEFAULT 0,
    overview TEXT NOT NULL DEFAULT '',
    rationale TEXT[] NOT NULL DEFAULT '{}',
    announced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    closed_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS ix_deals_status ON deals (status);
CREATE INDEX IF NOT EXISTS ix_deals_announced_at ON deals (announced_at);
CREATE INDEX IF NOT EXISTS ix_deals_value_usd ON deals (value_usd);

CREATE TABLE IF NOT EXISTS precedent_deals (
    id BIGSERIAL PRIMARY KEY,
    acquirer TEXT NOT NULL,
    target TEXT NOT NULL,
    sector TEXT NOT NULL DEFAULT '',
    region TEXT NOT NULL DEFAULT '',
    announced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    ev NUMERIC(15,2) NOT NULL DEFAULT 0,
    revenue NUMERIC(15,2) NOT NULL DEFAULT 0,
    ebitda NUMERIC(15,2) NOT NULL DEFAULT 0,
    ev_to_revenue NUMERIC(8,2) NOT NULL DEFAULT 0,
    ev_to_ebitda NUMERIC(8,2) NOT NULL DEFAULT 0,
    premium NUMERIC(8,2) NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'announced'
);
CREATE INDEX IF NOT EXISTS ix_precedent_deals_sector ON precedent_deals (sector);
CREATE INDEX IF NOT EXISTS ix_precedent_deals_region ON precedent_deals (region);

CREATE TABLE IF NOT EXISTS watchlists (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    ticker TEXT NOT NULL,
    target_price NUMERIC(15,4) NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    price_alerts_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    news_alerts_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, ticker)
);

CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    ticker TEXT NOT NULL DEFAULT '',
    severity TEXT NOT NULL DEFAULT 'low',
    type TEXT NOT NULL DEFAULT 'system',
    read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS ix_alerts_created_at ON alerts (created_at);

CREATE TABLE IF NOT EXISTS news_items (
    id TEXT PRIMARY KEY,
    ticker TEXT NOT NULL,
    title TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    sentiment TEXT NOT NULL DEFAULT 'neutral',
    relevance NUMERIC(4,2) NOT NULL DEFAULT 0,
    summary TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS ix_news_items_ticker ON news_items (ticker);

CREATE TABLE IF NOT EXISTS price_points (
    ticker TEXT NOT NULL,
    date DATE NOT NULL,
    open NUMERIC(15,4) NOT NULL,
    high NUMERIC(15,4) NOT NULL,
    low NUMERIC(15,4) NOT NULL,
    close NUMERIC(15,4) NOT NULL,
    volume BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (ticker, date)
);

CREATE TABLE IF NOT EXISTS ownership_holders (
    ticker TEXT NOT NULL,
    holder_name TEXT NOT NULL,
    holder_type TEXT NOT NULL DEFAULT 'institutional',
    pct_held NUMERIC(6,2) NOT NULL DEFAULT 0,
    shares BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (ticker, holder_name)
);
`

// EnsureSchema applies the embedded schema. Statements are idempotent so this
// runs on every startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		query := strings.TrimSpace(stmt)
		if query == "" {
			continue
		}
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
