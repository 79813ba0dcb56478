package handler

import (
	"errors"
	"net/http"

	financedomain "alianca-go/internal/domain/finance"
	"alianca-go/internal/transport/httpserver/middleware"
	"alianca-go/pkg/calendar"
	"github.com/go-chi/chi/v5"
)

type addTransactionRequest struct {
	Title    string        `json:"title"`
	Amount   float64       `json:"amount"`
	Type     string        `json:"type"`
	Category *string       `json:"category"`
	Date     calendar.Date `json:"date"`
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Finance.GetTransactions(r.Context(), user.ID)
	if err != nil {
		h.writeFinanceError(w, "transactions.list", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Finance.AddTransaction(r.Context(), user.ID, financedomain.AddInput{
		Title:    req.Title,
		Amount:   req.Amount,
		Type:     req.Type,
		Category: req.Category,
		Date:     req.Date,
	})
	if err != nil {
		h.writeFinanceError(w, "transactions.add", err, user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) TransactionSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Finance.GetSummary(r.Context(), user.ID)
	if err != nil {
		h.writeFinanceError(w, "transactions.summary", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Finance.DeleteTransaction(r.Context(), user.ID, id); err != nil {
		h.writeFinanceError(w, "transactions.delete", err, user.ID, "transaction_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeFinanceError(w http.ResponseWriter, op string, err error, userID string, args ...any) {
	switch {
	case errors.Is(err, financedomain.ErrTransactionNotFound):
		h.log.BusinessError(op+": transaction not found", err, append([]any{"user_id", userID}, args...)...)
		writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
	case errors.Is(err, financedomain.ErrInvalidTransaction):
		h.log.BusinessError(op+": invalid transaction", err, append([]any{"user_id", userID}, args...)...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.writeGroupError(w, op, err, userID, args...)
	}
}
