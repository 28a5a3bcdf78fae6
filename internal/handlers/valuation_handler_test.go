package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deallens/deallens/internal/valuation"
)

func TestDCFEndpointUsesDefaultsForPartialBody(t *testing.T) {
	router := newTestRouter(NewValuationHandler(testLogger()))

	rec := doJSON(router, "POST", "/valuation/dcf", `{"wacc":0.12}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp valuation.DCFResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.12, resp.Inputs.WACC, 0.0001)
	// Untouched fields keep their defaults.
	assert.InDelta(t, 1000.0, resp.Inputs.RevenueBase, 0.01)
	assert.Len(t, resp.Projections.FreeCashFlows, 5)
}

func TestDCFEndpointRejectsImpossibleRates(t *testing.T) {
	router := newTestRouter(NewValuationHandler(testLogger()))

	rec := doJSON(router, "POST", "/valuation/dcf", `{"wacc":0.02,"ltg":0.03}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLBOEndpointComputesReturns(t *testing.T) {
	router := newTestRouter(NewValuationHandler(testLogger()))

	body := `{"ebitda_base":100,"entry_multiple":10,"exit_multiple":10,"leverage_ratio":5,"ebitda_growth":0,"hold_years":5}`
	rec := doJSON(router, "POST", "/valuation/lbo", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp valuation.LBOResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 1.75, resp.Returns.MoM, 0.001)
}

func TestValuationEndpointsRejectMalformedJSON(t *testing.T) {
	router := newTestRouter(NewValuationHandler(testLogger()))

	assert.Equal(t, http.StatusBadRequest, doJSON(router, "POST", "/valuation/dcf", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, "POST", "/valuation/lbo", `not json`).Code)
}
