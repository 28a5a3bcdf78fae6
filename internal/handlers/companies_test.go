package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/models"
)

type stubCompanyStore struct {
	companies   []models.Company
	listCalls   int
	getCalls    int
	updateCalls int
	lastFilter  db.CompanyFilter
	lastUpdate  db.CompanyUpdates
}

func (s *stubCompanyStore) ListCompanies(ctx context.Context, f db.CompanyFilter) ([]models.Company, int, error) {
	s.listCalls++
	s.lastFilter = f
	return s.companies, len(s.companies), nil
}

func (s *stubCompanyStore) GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error) {
	s.getCalls++
	for i := range s.companies {
		if s.companies[i].Ticker == ticker {
			return &s.companies[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubCompanyStore) UpdateCompany(ctx context.Context, ticker string, u db.CompanyUpdates) error {
	s.updateCalls++
	s.lastUpdate = u
	for _, c := range s.companies {
		if c.Ticker == ticker {
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (s *stubCompanyStore) ListTimeseries(ctx context.Context, ticker string, days int) ([]models.PricePoint, error) {
	return []models.PricePoint{{Ticker: ticker, Close: 101.5, Date: time.Now()}}, nil
}

func (s *stubCompanyStore) ListNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	return []models.NewsItem{{Ticker: ticker, Title: "Quarterly results"}}, nil
}

func (s *stubCompanyStore) ListOwnership(ctx context.Context, ticker string) ([]models.OwnershipHolder, error) {
	return []models.OwnershipHolder{{Ticker: ticker, HolderName: "Vanguard", PctHeld: 7.2}}, nil
}

func sampleCompanies() []models.Company {
	return []models.Company{
		{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology", MarketCap: 2900000, PERatio: 29, EVEBITDA: 22, EVRevenue: 7.1},
		{Ticker: "MSFT", Name: "Microsoft", Sector: "Technology", MarketCap: 3100000, PERatio: 34, EVEBITDA: 24, EVRevenue: 11.8},
	}
}

func TestListCompaniesCachesSecondRead(t *testing.T) {
	store := &stubCompanyStore{companies: sampleCompanies()}
	router := newTestRouter(NewCompaniesHandler(store, testCache(), testLogger()))

	first := doJSON(router, "GET", "/companies?sector=Technology", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache-Status"))

	second := doJSON(router, "GET", "/companies?sector=Technology", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache-Status"))
	assert.Equal(t, 1, store.listCalls)

	// Different filters miss independently.
	third := doJSON(router, "GET", "/companies?sector=Energy", "")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache-Status"))
	assert.Equal(t, 2, store.listCalls)
}

func TestGetCompanyNotFound(t *testing.T) {
	store := &stubCompanyStore{companies: sampleCompanies()}
	router := newTestRouter(NewCompaniesHandler(store, testCache(), testLogger()))

	rec := doJSON(router, "GET", "/companies/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCompanyUppercasesTicker(t *testing.T) {
	store := &stubCompanyStore{companies: sampleCompanies()}
	router := newTestRouter(NewCompaniesHandler(store, testCache(), testLogger()))

	rec := doJSON(router, "GET", "/companies/aapl", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "AAPL", got.Ticker)
}

func TestUpdateCompanyInvalidatesCachedDetail(t *testing.T) {
	store := &stubCompanyStore{companies: sampleCompanies()}
	cacheManager := testCache()
	router := newTestRouter(NewCompaniesHandler(store, cacheManager, testLogger()))

	// Warm detail and list caches.
	doJSON(router, "GET", "/companies/AAPL", "")
	doJSON(router, "GET", "/companies", "")

	rec := doJSON(router, "PUT", "/companies/AAPL", `{"name":"Apple Computer"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.lastUpdate.Name)
	assert.Equal(t, "Apple Computer", *store.lastUpdate.Name)

	// Both views were dropped, so the next reads go to the store again.
	detail := doJSON(router, "GET", "/companies/AAPL", "")
	assert.Equal(t, "MISS", detail.Header().Get("X-Cache-Status"))
	list := doJSON(router, "GET", "/companies", "")
	assert.Equal(t, "MISS", list.Header().Get("X-Cache-Status"))
}

func TestTimeseriesClampsDays(t *testing.T) {
	store := &stubCompanyStore{companies: sampleCompanies()}
	router := newTestRouter(NewCompaniesHandler(store, testCache(), testLogger()))

	rec := doJSON(router, "GET", "/companies/AAPL/timeseries?days=9999", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Days int `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 365, resp.Days)
}

func TestOwnershipAndNewsAreCached(t *testing.T) {
	store := &stubCompanyStore{companies: sampleCompanies()}
	router := newTestRouter(NewCompaniesHandler(store, testCache(), testLogger()))

	for _, target := range []string{"/companies/AAPL/ownership", "/companies/AAPL/news"} {
		first := doJSON(router, "GET", target, "")
		require.Equal(t, http.StatusOK, first.Code, target)
		assert.Equal(t, "MISS", first.Header().Get("X-Cache-Status"), target)

		second := doJSON(router, "GET", target, "")
		assert.Equal(t, "HIT", second.Header().Get("X-Cache-Status"), target)
	}
}
