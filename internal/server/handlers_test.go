package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/giftscan/internal/app"
	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
	"github.com/bobmcallan/giftscan/internal/services/runner"
)

// stubStore serves a fixed record set and records industry lookups.
type stubStore struct {
	records    []*models.SymbolRecord
	industries []string
	err        error
}

func (s *stubStore) Upsert(context.Context, []*models.SymbolRecord) error { return nil }

func (s *stubStore) List(context.Context) ([]*models.SymbolRecord, error) {
	return s.records, s.err
}

func (s *stubStore) ListByIndustry(_ context.Context, industry string) ([]*models.SymbolRecord, error) {
	s.industries = append(s.industries, industry)
	return s.records, s.err
}

func (s *stubStore) Close() error { return nil }

// noopAnalyzer satisfies StockAnalyzer for runs that never execute in tests.
type noopAnalyzer struct{}

func (noopAnalyzer) Analyze(context.Context, []*models.SymbolRecord) error { return nil }

// newTestServer builds a server over a stub store. The runner is not started,
// so scheduled runs sit in the queue instead of executing.
func newTestServer(store interfaces.SymbolStore, queueSize int) *Server {
	logger := common.NewSilentLogger()
	runService := runner.NewService(func(string, bool) interfaces.StockAnalyzer {
		return noopAnalyzer{}
	}, logger, queueSize)

	a := &app.App{
		Config:      common.NewDefaultConfig(),
		Logger:      logger,
		SymbolStore: store,
		Runner:      runService,
	}
	return NewServer(a)
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubStore{}, 4)

	rec := doRequest(t, srv, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(&stubStore{}, 4)

	rec := doRequest(t, srv, http.MethodGet, "/version")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.GetVersion(), body["version"])
	assert.Equal(t, common.GetBuild(), body["build"])
	assert.Equal(t, common.GetGitCommit(), body["commit"])
}

func TestTriggerEndpoints_Success(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"discounted stocks", "/discounted_stocks?telegram_chat_id=42"},
		{"all stocks status", "/all_stocks_status?telegram_chat_id=42"},
		{"industry", "/industry/Banking?telegram_chat_id=42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubStore{records: []*models.SymbolRecord{{Symbol: "AAA"}}}, 4)

			rec := doRequest(t, srv, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Job has been started successfully", body["message"])
		})
	}
}

func TestTriggerEndpoints_MissingChatID(t *testing.T) {
	srv := newTestServer(&stubStore{}, 4)

	rec := doRequest(t, srv, http.MethodGet, "/discounted_stocks")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "telegram_chat_id")
}

func TestTriggerEndpoints_StoreFailure(t *testing.T) {
	srv := newTestServer(&stubStore{err: errors.New("store unavailable")}, 4)

	rec := doRequest(t, srv, http.MethodGet, "/all_stocks_status?telegram_chat_id=42")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "store unavailable")
}

func TestTriggerEndpoints_QueueFull(t *testing.T) {
	srv := newTestServer(&stubStore{}, 1)

	rec := doRequest(t, srv, http.MethodGet, "/discounted_stocks?telegram_chat_id=42")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/discounted_stocks?telegram_chat_id=42")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "queue is full")
}

func TestHandleIndustry(t *testing.T) {
	store := &stubStore{records: []*models.SymbolRecord{{Symbol: "AAA", Industry: "Oil & Gas"}}}
	srv := newTestServer(store, 4)

	rec := doRequest(t, srv, http.MethodGet, "/industry/Oil%20%26%20Gas?telegram_chat_id=42")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, store.industries, 1)
	assert.Equal(t, "Oil & Gas", store.industries[0], "path segment is unescaped before lookup")
}

func TestHandleIndustry_MissingName(t *testing.T) {
	srv := newTestServer(&stubStore{}, 4)

	rec := doRequest(t, srv, http.MethodGet, "/industry/?telegram_chat_id=42")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIndustry_OnlyDiscountParam(t *testing.T) {
	srv := newTestServer(&stubStore{}, 4)

	rec := doRequest(t, srv, http.MethodGet, "/industry/Banking?telegram_chat_id=42&only_discount=false")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/industry/Banking?telegram_chat_id=42&only_discount=banana")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerEndpoints_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubStore{}, 4)

	rec := doRequest(t, srv, http.MethodPost, "/discounted_stocks?telegram_chat_id=42")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
}

func TestCorrelationIDHeader(t *testing.T) {
	srv := newTestServer(&stubStore{}, 4)

	rec := doRequest(t, srv, http.MethodGet, "/health")
	assert.Len(t, rec.Header().Get("X-Correlation-ID"), 8)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "my-request")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "my-request", rec.Header().Get("X-Correlation-ID"))
}
