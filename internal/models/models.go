package models

import "time"

type Company struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector"`
	Industry  string    `json:"industry"`
	Country   string    `json:"country"`
	MarketCap float64   `json:"market_cap"`
	LastPrice float64   `json:"last_price"`
	PERatio   float64   `json:"pe_ratio"`
	EVEBITDA  float64   `json:"ev_ebitda"`
	EVRevenue float64   `json:"ev_revenue"`
	Employees int       `json:"employees"`
	IsPublic  bool      `json:"is_public"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Deal struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	DealType     string     `json:"deal_type"`
	Status       string     `json:"status"`
	Acquirer     string     `json:"acquirer"`
	Target       string     `json:"target"`
	Industry     string     `json:"industry"`
	ValueUSD     float64    `json:"value_usd"`
	PremiumPct   float64    `json:"premium_pct"`
	EVEBITDAMult float64    `json:"multiple_ev_ebitda"`
	Overview     string     `json:"overview"`
	Rationale    []string   `json:"rationale"`
	AnnouncedAt  time.Time  `json:"announced_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type PrecedentDeal struct {
	ID          int64     `json:"id"`
	Acquirer    string    `json:"acquirer"`
	Target      string    `json:"target"`
	Sector      string    `json:"sector"`
	Region      string    `json:"region"`
	AnnouncedAt time.Time `json:"announced_at"`
	EV          float64   `json:"ev"`
	Revenue     float64   `json:"revenue"`
	EBITDA      float64   `json:"ebitda"`
	EVToRevenue float64   `json:"ev_to_revenue"`
	EVToEBITDA  float64   `json:"ev_to_ebitda"`
	Premium     float64   `json:"premium"`
	Status      string    `json:"status"`
}

type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	FullName       string     `json:"full_name"`
	HashedPassword string     `json:"-"`
	Organization   string     `json:"organization"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

type WatchlistEntry struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Ticker             string    `json:"ticker"`
	TargetPrice        float64   `json:"target_price"`
	Notes              string    `json:"notes"`
	PriceAlertsEnabled bool      `json:"price_alerts_enabled"`
	NewsAlertsEnabled  bool      `json:"news_alerts_enabled"`
	CreatedAt          time.Time `json:"created_at"`
}

type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Ticker    string    `json:"ticker,omitempty"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NewsItem struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Sentiment   string    `json:"sentiment"`
	Relevance   float64   `json:"relevance"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}

type PricePoint struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

type OwnershipHolder struct {
	Ticker     string  `json:"ticker"`
	HolderName string  `json:"holder_name"`
	HolderType string  `json:"holder_type"`
	PctHeld    float64 `json:"pct_held"`
	Shares     int64   `json:"shares"`
}
