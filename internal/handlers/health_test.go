package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthAllUp(t *testing.T) {
	router := newTestRouter(NewHealthHandler(&stubPinger{}, testCache()))

	rec := doJSON(router, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Cache    struct {
			Status string `json:"status"`
		} `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "healthy", resp.Database)
	assert.Equal(t, "healthy", resp.Cache.Status)
}

func TestHealthDatabaseDown(t *testing.T) {
	router := newTestRouter(NewHealthHandler(&stubPinger{err: errors.New("conn refused")}, testCache()))

	rec := doJSON(router, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
