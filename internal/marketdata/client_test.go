package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, payload string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "demo-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "demo-key", zerolog.New(nil).Level(zerolog.Disabled))
}

func TestGetQuoteParsesGlobalQuote(t *testing.T) {
	client := testServer(t, `{
		"Global Quote": {
			"01. symbol": "AAPL",
			"02. open": "228.50",
			"03. high": "231.10",
			"04. low": "227.90",
			"05. price": "230.12",
			"06. volume": "51234567",
			"07. latest trading day": "2026-08-28",
			"10. change percent": "1.25%"
		}
	}`)

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 230.12, quote.Price, 0.001)
	assert.InDelta(t, 228.50, quote.Open, 0.001)
	assert.Equal(t, int64(51234567), quote.Volume)
	assert.InDelta(t, 1.25, quote.ChangePercent, 0.001)
	assert.Equal(t, "2026-08-28", quote.TradingDay.Format("2006-01-02"))
}

func TestGetQuoteThrottleNote(t *testing.T) {
	client := testServer(t, `{"Note": "API call frequency is 5 calls per minute"}`)

	_, err := client.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestGetQuoteEmptyPayload(t *testing.T) {
	client := testServer(t, `{"Global Quote": {}}`)

	_, err := client.GetQuote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestGetQuoteVendorError(t *testing.T) {
	client := testServer(t, `{"Error Message": "Invalid API call"}`)

	_, err := client.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}
