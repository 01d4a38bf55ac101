package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		budgets := s.budgets.List(r.Context())
		if budgets == nil {
			budgets = []core.Budget{}
		}
		NewJSONResponse().JSON(budgets).Write(w)
	case http.MethodPost:
		var req budgetRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		b, err := req.toBudget()
		if err != nil {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		added, err := s.budgets.Add(r.Context(), b)
		if err != nil {
			s.writeServiceError(w, r, err, log.OpCreate)
			return
		}
		NewJSONResponse().Status(http.StatusCreated).JSON(added).Write(w)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		MethodNotAllowedError("DELETE").Write(w)
		return
	}
	category := strings.ToLower(strings.TrimSpace(r.PathValue("category")))
	removed, err := s.budgets.Remove(r.Context(), category)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().JSON(map[string]int{"removed": removed}).Write(w)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	insights := s.budgets.Insights(r.Context())
	if insights == nil {
		insights = []core.SpendingInsight{}
	}
	NewJSONResponse().JSON(insights).Write(w)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	items := s.budgets.Comparison(r.Context())
	if items == nil {
		items = []core.BudgetComparison{}
	}
	NewJSONResponse().JSON(items).Write(w)
}
