package http

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"finbook/internal/cache"
	"finbook/internal/ledger"
	applog "finbook/internal/log"
)

const requestsPerMinute = 120

type Server struct {
	http.Server

	ledger     *ledger.Service
	aggregator *ledger.Aggregator
	dashboard  *ledger.DashboardComposer

	rateLimiter *rateLimiter

	// views memoizes dashboard and summary reads per user; every mutation
	// by a user drops all of that user's entries. genMu orders view reads
	// against invalidations: a view computed before an invalidation must
	// never be cached after it, so Set is gated on the generation captured
	// before the read.
	views     *cache.LRU[any]
	genMu     sync.Mutex
	gens      map[int64]uint64
	globalGen uint64
}

func NewServer(addr string, svc *ledger.Service, aggregator *ledger.Aggregator, dashboard *ledger.DashboardComposer, logger *applog.Logger, cacheSize int, cacheTTL time.Duration) *Server {
	s := &Server{
		ledger:      svc,
		aggregator:  aggregator,
		dashboard:   dashboard,
		rateLimiter: newRateLimiter(requestsPerMinute),
		views:       cache.NewLRU[any](cacheSize, cacheTTL),
		gens:        make(map[int64]uint64),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/accounts", s.withUser(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts", s.withUser(s.handleListAccounts))
	mux.HandleFunc("GET /api/accounts/balance", s.withUser(s.handleTotalBalance))
	mux.HandleFunc("GET /api/accounts/{id}", s.withUser(s.handleGetAccount))
	mux.HandleFunc("PATCH /api/accounts/{id}", s.withUser(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.withUser(s.handleDeleteAccount))
	mux.HandleFunc("POST /api/accounts/{id}/restore", s.withUser(s.handleRestoreAccount))

	mux.HandleFunc("POST /api/transactions", s.withUser(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withUser(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.withUser(s.handleGetTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.withUser(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withUser(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/categories", s.withUser(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories", s.withUser(s.handleListCategories))
	mux.HandleFunc("GET /api/categories/{id}", s.withUser(s.handleGetCategory))
	mux.HandleFunc("PATCH /api/categories/{id}", s.withUser(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withUser(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/dashboard", s.withUser(s.handleDashboard))
	mux.HandleFunc("GET /api/summary/monthly", s.withUser(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/summary/yearly", s.withUser(s.handleYearlyOverview))
	mux.HandleFunc("GET /api/summary/categories", s.withUser(s.handleCategoryBreakdown))

	var handler http.Handler = mux
	handler = s.rateLimiter.middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Addr = addr
	s.Handler = handler
	return s
}

// withUser resolves the authenticated user before the handler runs.
type userHandler func(w http.ResponseWriter, r *http.Request, uid int64)

func (s *Server) withUser(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		h(w, r, uid)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// generation captures the user's invalidation state before a view is
// computed; setView refuses the result if it changed in the meantime.
func (s *Server) generation(uid int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[uid] + s.globalGen
}

// setView caches a computed view unless the user's ledger was mutated since
// gen was captured, in which case the view is already stale and is dropped.
func (s *Server) setView(key string, uid int64, gen uint64, v any) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gens[uid]+s.globalGen != gen {
		return
	}
	s.views.Set(key, v)
}

// invalidate drops every cached view of the user.
func (s *Server) invalidate(uid int64) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gens[uid]++
	s.views.DeletePrefix(viewKeyPrefix(uid))
}

// invalidateAll drops every cached view of every user. Used when a global
// entity (a category) changes.
func (s *Server) invalidateAll() {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.globalGen++
	s.views.DeletePrefix("u")
}

func viewKeyPrefix(uid int64) string {
	return fmt.Sprintf("u%d:", uid)
}

func viewKey(uid int64, parts string) string {
	return viewKeyPrefix(uid) + parts
}

// Stop releases background resources owned by the server.
func (s *Server) Stop() {
	s.rateLimiter.stop()
}
