package http

import (
	"net/http"
	"strings"

	"budget/internal/core"
	"budget/internal/tax"
)

// GET /api/tax/net?gross=&ageBracket=&pension=&travel=&annual=
//
// Computes a breakdown without touching the ledger.
func (s *Server) handleTaxNet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	gross, err := core.ParseSalary(q.Get("gross"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	bracket := core.Under65
	if v := strings.TrimSpace(q.Get("ageBracket")); v != "" {
		if bracket, err = core.ParseAgeBracket(v); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	var opts []tax.Option
	if v := q.Get("pension"); v != "" {
		pension, err := core.ParseSalary(v)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		opts = append(opts, tax.WithPension(pension))
	}
	if v := q.Get("travel"); v != "" {
		travel, err := core.ParseSalary(v)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		opts = append(opts, tax.WithTravelAllowance(travel))
	}
	if q.Get("annual") == "true" {
		opts = append(opts, tax.Annual())
	}

	writeJSON(w, http.StatusOK, s.svc.NetSalary(gross, bracket, opts...))
}

// GET /api/tax/table
func (s *Server) handleTaxTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.taxTable)
}
