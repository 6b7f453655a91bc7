// Package http exposes the JSON API: transaction lifecycle, budget views,
// dashboard and the entity CRUD surface. Every request is scoped to the
// owner named by the X-Owner-ID header.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/services"
)

// Stores groups the entity stores the API serves directly.
type Stores struct {
	Accounts     services.AccountStore
	Transactions services.TransactionStore
	Monthly      services.MonthlyTransactionStore
	Savings      services.SavingStore
	Planned      services.PlannedExpenseStore
	Categories   services.CategoryStore
}

// Options configures the server address and the budget view cache.
type Options struct {
	Addr      string
	CacheSize int
	CacheTTL  time.Duration
}

type Server struct {
	http.Server

	lifecycle *services.TransactionService
	budget    *services.BudgetService
	stores    Stores
	logger    *log.Logger

	// Budget views are cached per owner generation; any write under an
	// owner bumps the generation and strands the old entries, which age
	// out through the LRU.
	projectionCache *cache.LRU[core.BalanceProjection]
	dashboardCache  *cache.LRU[core.Dashboard]
	cacheManager    *cache.Manager

	genMu       sync.Mutex
	generations map[string]uint64

	shutdownOnce sync.Once
}

// NewServer wires routes, caches and middleware, returning a ready-to-run
// server.
func NewServer(opts Options, lifecycle *services.TransactionService, budget *services.BudgetService, stores Stores, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           trace.Middleware(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		lifecycle:       lifecycle,
		budget:          budget,
		stores:          stores,
		logger:          logger,
		projectionCache: cache.NewLRU[core.BalanceProjection](opts.CacheSize, opts.CacheTTL),
		dashboardCache:  cache.NewLRU[core.Dashboard](opts.CacheSize, opts.CacheTTL),
		cacheManager:    cache.NewManager(),
		generations:     make(map[string]uint64),
	}

	s.cacheManager.Register(s.projectionCache)
	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budget/projectedBalance", s.handleProjectedBalance)
	mux.HandleFunc("GET /api/budget/incomeAfterFixedExpenses", s.handleIncomeAfterFixedExpenses)
	mux.HandleFunc("GET /api/budget/plannedExpenses", s.handlePlannedExpenses)
	mux.HandleFunc("GET /api/budget/otherExpenses", s.handleOtherExpenses)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/accounts/groups", s.handleAccountGroups)

	s.mountEntityRoutes(mux)

	return s
}

// Shutdown stops the cache cleanup routine and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"storage": "ok"}

	// A cheap read proves the store is reachable.
	if _, err := s.stores.Categories.ListAll(ctx, "readyz-probe"); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// cacheKey builds a generation-scoped cache key for an owner's view.
func (s *Server) cacheKey(ownerID, view string) string {
	s.genMu.Lock()
	gen := s.generations[ownerID]
	s.genMu.Unlock()
	return ownerID + "|" + strconv.FormatUint(gen, 10) + "|" + view
}

// invalidateOwner bumps the owner's cache generation after any write.
func (s *Server) invalidateOwner(ownerID string) {
	s.genMu.Lock()
	s.generations[ownerID]++
	s.genMu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
