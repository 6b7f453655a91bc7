package http

import (
	"net/http"
	"strings"

	"bilancio/internal/core"
)

func (s *Server) handleProjectedBalance(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	year, month, err := monthParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	key := s.cacheKey(owner, core.YearMonth(year, month))
	if view, hit := s.projectionCache.Get(key); hit {
		writeJSON(w, http.StatusOK, view)
		return
	}

	view, err := s.budget.ProjectedBalance(r.Context(), owner, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.projectionCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleIncomeAfterFixedExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	year, month, err := monthParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	view, err := s.budget.IncomeAfterFixedExpenses(r.Context(), owner, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePlannedExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	year, month, err := monthParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	plannedExpenseID := strings.TrimSpace(r.URL.Query().Get("plannedExpenseId"))

	view, err := s.budget.PlannedExpenses(r.Context(), owner, year, month, plannedExpenseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleOtherExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	year, month, err := monthParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	view, err := s.budget.OtherExpenses(r.Context(), owner, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	key := s.cacheKey(owner, "dashboard")
	if view, hit := s.dashboardCache.Get(key); hit {
		writeJSON(w, http.StatusOK, view)
		return
	}

	view, err := s.budget.Dashboard(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.dashboardCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAccountGroups(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	groups, err := s.budget.AccountGroups(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []core.AccountGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}
