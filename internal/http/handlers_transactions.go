package http

import (
	"errors"
	"net/http"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		tx, err := s.transactions.Get(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err, log.OpRead)
			return
		}
		NewJSONResponse().JSON(tx).Write(w)
	case http.MethodPut:
		in, ok := s.decodeTransaction(w, r)
		if !ok {
			return
		}
		tx, err := s.transactions.Update(r.Context(), id, in)
		if err != nil {
			s.writeServiceError(w, r, err, log.OpUpdate)
			return
		}
		NewJSONResponse().JSON(tx).Write(w)
	case http.MethodDelete:
		if err := s.transactions.Delete(r.Context(), id); err != nil {
			s.writeServiceError(w, r, err, log.OpDelete)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)
	default:
		MethodNotAllowedError("GET, PUT, DELETE").Write(w)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	list := aggregate.Filter(s.transactions.List(r.Context()), params.Query)
	list = aggregate.Sort(list, params.Field, params.Order)
	if list == nil {
		list = []core.Transaction{}
	}
	NewJSONResponse().JSON(list).Write(w)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeTransaction(w, r)
	if !ok {
		return
	}
	tx, err := s.transactions.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		JSON(tx).
		Write(w)
}

// decodeTransaction writes the error response itself and reports whether to continue.
func (s *Server) decodeTransaction(w http.ResponseWriter, r *http.Request) (core.TransactionInput, bool) {
	var req transactionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return core.TransactionInput{}, false
	}
	in, err := req.toInput()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return core.TransactionInput{}, false
	}
	return in, true
}

// writeServiceError maps service errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		NotFoundError(err.Error()).Write(w)
	case isValidationError(err):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		s.sl.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
		InternalServerError("internal error").Write(w)
	}
}
