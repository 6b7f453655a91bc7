package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage/memstore"
)

const testOwner = "owner-1"

type testServer struct {
	srv   *Server
	store *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memstore.New()
	balance := services.NewBalanceService(store.Accounts)
	validator := services.NewValidationService(store.Accounts)
	lifecycle := services.NewTransactionService(store.Transactions, validator, balance, nil)
	budget := services.NewBudgetService(store.Accounts, store.Transactions, store.Monthly, store.Savings, store.Planned)

	logger := log.New(log.Config{Level: slog.LevelError, Component: log.ComponentHTTP})

	srv := NewServer(Options{Addr: ":0", CacheSize: 16, CacheTTL: time.Minute},
		lifecycle, budget, Stores{
			Accounts:     store.Accounts,
			Transactions: store.Transactions,
			Monthly:      store.Monthly,
			Savings:      store.Savings,
			Planned:      store.Planned,
			Categories:   store.Categories,
		}, logger)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testServer{srv: srv, store: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, owner string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if owner != "" {
		req.Header.Set(ownerHeader, owner)
	}
	rec := httptest.NewRecorder()
	ts.srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", nil, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestReadyz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/readyz", nil, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMissingOwnerHeader(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{
		"/api/transactions",
		"/api/budget/projectedBalance",
		"/api/dashboard",
		"/api/accounts",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, path, nil, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestInvalidMonthParam(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/budget/projectedBalance?year=2025&month=13", nil, testOwner)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
