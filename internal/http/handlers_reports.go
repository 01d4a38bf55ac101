package http

import (
	"errors"
	"net/http"
	"time"

	"fintrack/internal/charts"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	ref, err := parseMonthQuery(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().JSON(s.transactions.Summary(r.Context(), ref)).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	NewJSONResponse().JSON(core.Categories).Write(w)
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	ref, err := parseMonthQuery(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	summary := s.transactions.Summary(r.Context(), ref)
	s.writeChart(w, r, func() ([]byte, error) { return charts.MonthlyChart(summary.Monthly) })
}

// handleCategoryChart draws the all-time expense breakdown, so it takes no month.
func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	summary := s.transactions.Summary(r.Context(), time.Time{})
	s.writeChart(w, r, func() ([]byte, error) { return charts.CategoryChart(summary.ByCategory) })
}

func (s *Server) handleBudgetChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	items := s.budgets.Comparison(r.Context())
	s.writeChart(w, r, func() ([]byte, error) { return charts.BudgetChart(items) })
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, render func() ([]byte, error)) {
	png, err := render()
	if errors.Is(err, charts.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.sl.LogError(r.Context(), "Chart rendering failed", err, log.ComponentHTTP, log.OpRender, nil)
		InternalServerError("failed to render chart").Write(w)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
