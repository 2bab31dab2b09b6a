package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"budget/internal/core"
)

type groceriesRequest struct {
	Items []groceryItem `json:"items"`
}

type groceryItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// GET /api/groceries
func (s *Server) handleListGroceries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Groceries())
}

// POST /api/groceries
//
// Adds every item or none; responds with the whole list.
func (s *Server) handleAddGroceries(w http.ResponseWriter, r *http.Request) {
	var req groceriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no items")
		return
	}

	items := make([]core.Grocery, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, core.Grocery{Name: strings.TrimSpace(it.Name), Quantity: it.Quantity})
	}
	list, err := s.svc.AddGroceries(r.Context(), items...)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// DELETE /api/groceries/{index}
//
// index is zero-based, matching the order of GET /api/groceries.
func (s *Server) handleRemoveGrocery(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	if err := s.svc.RemoveGrocery(r.Context(), index); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
