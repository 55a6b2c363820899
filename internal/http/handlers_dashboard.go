package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finbook/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, uid int64) {
	now := time.Now()
	key := viewKey(uid, fmt.Sprintf("dashboard:%d-%d", now.Year(), now.Month()))
	if cached, ok := s.views.Get(key); ok {
		writeJSON(w, r, http.StatusOK, cached)
		return
	}

	gen := s.generation(uid)
	dashboard, err := s.dashboard.CurrentDashboard(r.Context(), uid, now)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.setView(key, uid, gen, dashboard)
	writeJSON(w, r, http.StatusOK, dashboard)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request, uid int64) {
	year, month := parseYearMonth(r)

	summary, err := s.aggregator.MonthlySummary(r.Context(), uid, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleYearlyOverview(w http.ResponseWriter, r *http.Request, uid int64) {
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: bad year %q", core.ErrInvalidArgument, v))
			return
		}
		year = y
	}

	key := viewKey(uid, fmt.Sprintf("yearly:%d", year))
	if cached, ok := s.views.Get(key); ok {
		writeJSON(w, r, http.StatusOK, cached)
		return
	}

	gen := s.generation(uid)
	overview, err := s.aggregator.YearlyOverview(r.Context(), uid, year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.setView(key, uid, gen, overview)
	writeJSON(w, r, http.StatusOK, overview)
}

// handleCategoryBreakdown reports expense totals per category over a range,
// defaulting to the current calendar month.
func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request, uid int64) {
	now := time.Now()
	start, end := core.MonthRange(now.Year(), int(now.Month()))

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		start = d
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		end = d
	}

	breakdown, err := s.aggregator.CategoryBreakdown(r.Context(), uid, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if breakdown == nil {
		breakdown = []core.CategoryTotal{}
	}
	writeJSON(w, r, http.StatusOK, breakdown)
}
