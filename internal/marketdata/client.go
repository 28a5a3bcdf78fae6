// Package marketdata fetches live quotes from an Alpha Vantage compatible
// HTTP API. The worker runs against the real endpoint; everything else
// programs against the Provider interface.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Quote struct {
	Symbol        string
	Price         float64
	Open          float64
	High          float64
	Low           float64
	Volume        int64
	ChangePercent float64
	TradingDay    time.Time
}

type Provider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log.With().Str("client", "marketdata").Logger(),
	}
}

// globalQuoteResponse mirrors the GLOBAL_QUOTE payload. Field names carry the
// vendor's numeric prefixes.
type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	Note        string            `json:"Note"`
	ErrorMsg    string            `json:"Error Message"`
}

func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s: status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed globalQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("quote response for %s: %w", symbol, err)
	}
	if parsed.ErrorMsg != "" {
		return nil, fmt.Errorf("quote request for %s rejected: %s", symbol, parsed.ErrorMsg)
	}
	if parsed.Note != "" {
		// The vendor signals throttling through Note instead of a status code.
		return nil, fmt.Errorf("quote request for %s throttled: %s", symbol, parsed.Note)
	}
	if len(parsed.GlobalQuote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	quote := &Quote{
		Symbol: symbol,
		Price:  parseField(parsed.GlobalQuote, "05. price"),
		Open:   parseField(parsed.GlobalQuote, "02. open"),
		High:   parseField(parsed.GlobalQuote, "03. high"),
		Low:    parseField(parsed.GlobalQuote, "04. low"),
	}
	quote.Volume, _ = strconv.ParseInt(parsed.GlobalQuote["06. volume"], 10, 64)
	quote.ChangePercent = parseField(parsed.GlobalQuote, "10. change percent")
	if day, err := time.Parse("2006-01-02", parsed.GlobalQuote["07. latest trading day"]); err == nil {
		quote.TradingDay = day
	}

	if quote.Price <= 0 {
		return nil, fmt.Errorf("no usable price for %s", symbol)
	}
	return quote, nil
}

func parseField(fields map[string]string, key string) float64 {
	raw := strings.TrimSuffix(fields[key], "%")
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}
