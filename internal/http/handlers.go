package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"budget/internal/core"
)

type expenseRequest struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

type subExpenseRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type incomeRequest struct {
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
}

type salaryRequest struct {
	Amount float64 `json:"amount"`
	// Net makes Amount the desired take-home pay; the gross is solved for.
	Net bool `json:"net"`
}

type settingsRequest struct {
	TaxEnabled *bool  `json:"taxEnabled"`
	AgeBracket string `json:"ageBracket"`
}

// GET /api/ledger
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Snapshot())
}

// POST /api/expenses
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	added, err := s.svc.AddExpense(r.Context(), core.Expense{
		Name:     strings.TrimSpace(req.Name),
		Amount:   req.Amount,
		Category: category,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// DELETE /api/expenses/{id}
func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/expenses/{id}/sub-expenses
func (s *Server) handleAddSubExpense(w http.ResponseWriter, r *http.Request) {
	var req subExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	added, err := s.svc.AddSubExpense(r.Context(), chi.URLParam(r, "id"), core.SubExpense{
		Name:   strings.TrimSpace(req.Name),
		Amount: req.Amount,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// DELETE /api/expenses/{id}/sub-expenses/{subID}
func (s *Server) handleRemoveSubExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveSubExpense(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "subID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/incomes
func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	added, err := s.svc.AddIncome(r.Context(), core.Income{
		Source: strings.TrimSpace(req.Source),
		Amount: req.Amount,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// DELETE /api/incomes/{id}
func (s *Server) handleRemoveIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveIncome(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/salary
func (s *Server) handleUpdateSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	b, err := s.svc.UpdateSalary(r.Context(), req.Amount, req.Net)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// PUT /api/settings
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	var bracket core.AgeBracket
	if req.AgeBracket != "" {
		b, err := core.ParseAgeBracket(req.AgeBracket)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		bracket = b
	}
	if err := s.svc.SetTaxMode(r.Context(), req.TaxEnabled, bracket); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Snapshot())
}
