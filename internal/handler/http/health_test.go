package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-gateway/pkg/cache"
	"credit-gateway/pkg/ratelimit"
)

type stubGateway struct {
	stats cache.Stats
	state string
}

func (g stubGateway) CacheStats() cache.Stats { return g.stats }
func (g stubGateway) BreakerState() string    { return g.state }

type failingStore struct{ ratelimit.Store }

func (failingStore) KeyCount(context.Context) (int, error) {
	return 0, errors.New("store unavailable")
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var response HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	return response
}

func TestHealthHandler_Database(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(sqlmock.Sqlmock)
		expectedStatus int
		expectHealthy  bool
	}{
		{
			name:           "healthy database",
			setupMock:      func(mock sqlmock.Sqlmock) { mock.ExpectPing() },
			expectedStatus: http.StatusOK,
			expectHealthy:  true,
		},
		{
			name: "database connection error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing().WillReturnError(errors.New("dial postgres://app:hunter2@db:5432 refused"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			db.SetMaxOpenConns(10)
			tt.setupMock(mock)

			rec := httptest.NewRecorder()
			(&HealthHandler{DB: db, Version: "test-version"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			response := decodeHealth(t, rec)
			if tt.expectHealthy {
				assert.Equal(t, StatusHealthy, response.Status)
				assert.Contains(t, response.Checks["database"].Details, "utilization_percent")
			} else {
				assert.Equal(t, StatusUnhealthy, response.Status)
				assert.NotContains(t, response.Checks["database"].Message, "hunter2")
			}
			assert.Equal(t, "test-version", response.Version)
			assert.NotEmpty(t, response.Timestamp)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_NoDatabaseConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	(&HealthHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	response := decodeHealth(t, rec)
	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, StatusNotConfigured, response.Checks["database"].Status)
}

func TestHealthHandler_MaxOpenConnectionsZero(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(0)
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	(&HealthHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	dbCheck := decodeHealth(t, rec).Checks["database"]
	assert.Equal(t, StatusDegraded, dbCheck.Status)
	assert.Equal(t, "connection pool max connections not configured", dbCheck.Message)
	_, hasUtilization := dbCheck.Details["utilization_percent"]
	assert.False(t, hasUtilization)
}

func TestHealthHandler_GatewayChecks(t *testing.T) {
	tests := []struct {
		name          string
		state         string
		wantBreaker   string
		wantHTTPCode  int
		wantTopStatus string
	}{
		{name: "closed", state: "closed", wantBreaker: StatusHealthy, wantHTTPCode: http.StatusOK, wantTopStatus: StatusHealthy},
		{name: "open", state: "open", wantBreaker: StatusDegraded, wantHTTPCode: http.StatusOK, wantTopStatus: StatusHealthy},
		{name: "half-open", state: "half-open", wantBreaker: StatusDegraded, wantHTTPCode: http.StatusOK, wantTopStatus: StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{Gateway: stubGateway{
				stats: cache.Stats{Keys: 4, Hits: 3, Misses: 1, HitRate: 0.75},
				state: tt.state,
			}}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantHTTPCode, rec.Code)
			response := decodeHealth(t, rec)
			assert.Equal(t, tt.wantTopStatus, response.Status)
			assert.Equal(t, tt.wantBreaker, response.Checks["circuit_breaker"].Status)
			assert.Equal(t, tt.state, response.Checks["circuit_breaker"].Details["state"])
			assert.Equal(t, float64(4), response.Checks["cache"].Details["keys"])
			assert.Equal(t, 0.75, response.Checks["cache"].Details["hit_rate"])
		})
	}
}

func TestHealthHandler_RateLimiters(t *testing.T) {
	store := ratelimit.NewInMemoryStore(ratelimit.InMemoryStoreConfig{})
	now := time.Now()
	_, _, _, _ = store.CheckAndAdd(context.Background(), "12345678", now, now.Add(-time.Minute), 10)

	h := &HealthHandler{RateLimitStores: map[string]ratelimit.Store{
		"dni":    store,
		"client": failingStore{},
	}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	details := decodeHealth(t, rec).Checks["rate_limiter"].Details
	assert.Equal(t, map[string]any{"active_keys": float64(1)}, details["dni"])
	assert.Equal(t, map[string]any{"error": "store unavailable"}, details["client"])
}

func TestHealthHandler_CacheControl(t *testing.T) {
	rec := httptest.NewRecorder()
	(&HealthHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadyHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(sqlmock.Sqlmock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "ready",
			setupMock:      func(mock sqlmock.Sqlmock) { mock.ExpectPing() },
			expectedStatus: http.StatusOK,
			expectedBody:   "ready",
		},
		{
			name: "database not ready",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing().WillReturnError(sql.ErrConnDone)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			rec := httptest.NewRecorder()
			(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, rec.Body.String())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReadyHandler_NoDatabaseConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestReadyHandler_Timeout(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectPing().WillDelayFor(3 * time.Second)

	rec := httptest.NewRecorder()
	(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler_ServeHTTP(t *testing.T) {
	rec := httptest.NewRecorder()
	(&LiveHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
