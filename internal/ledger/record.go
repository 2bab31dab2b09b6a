package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"budget/internal/core"
	"budget/internal/storage"
)

// record is the persisted shape. Fields added after the first schema are
// optional and default when absent.
type record struct {
	Expenses          []core.Expense  `json:"expenses"`
	AdditionalIncomes []core.Income   `json:"additionalIncomes"`
	Salary            float64         `json:"salary"`
	NetSalary         float64         `json:"netSalary"`
	TaxEnabled        *bool           `json:"taxEnabled,omitempty"`
	AgeBracket        core.AgeBracket `json:"ageBracket,omitempty"`
	Groceries         json.RawMessage `json:"groceries,omitempty"`
}

// Save writes the whole ledger, groceries included, under the ledger key.
func (l *Ledger) Save(ctx context.Context) error {
	data, err := l.encode()
	if err != nil {
		return err
	}
	if err := l.store.Put(ctx, l.key, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

func (l *Ledger) encode() ([]byte, error) {
	expenses := make([]core.Expense, len(l.expenses))
	for i, e := range l.expenses {
		e = e.Clone()
		e.Amount = core.SafeAmount(e.Amount)
		for j := range e.SubExpenses {
			e.SubExpenses[j].Amount = core.SafeAmount(e.SubExpenses[j].Amount)
		}
		expenses[i] = e
	}
	incomes := make([]core.Income, len(l.incomes))
	for i, in := range l.incomes {
		in.Amount = core.SafeAmount(in.Amount)
		incomes[i] = in
	}

	taxEnabled := l.taxEnabled
	rec := record{
		Expenses:          expenses,
		AdditionalIncomes: incomes,
		Salary:            core.SafeAmount(l.salary.GrossSalary),
		NetSalary:         core.SafeAmount(l.salary.NetSalary),
		TaxEnabled:        &taxEnabled,
		AgeBracket:        l.salary.AgeBracket,
	}

	if l.groceriesRaw != nil {
		rec.Groceries = l.groceriesRaw
	} else {
		groceries, err := json.Marshal(l.groceryList())
		if err != nil {
			return nil, fmt.Errorf("encode groceries: %w", err)
		}
		rec.Groceries = groceries
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

// Load replaces the in-memory state with the stored record. An absent record
// leaves the ledger empty; an unreadable one is logged and also leaves it
// empty. Load never fails.
func (l *Ledger) Load(ctx context.Context) {
	l.reset()
	l.groceries = nil
	l.groceriesRaw = nil

	data, err := l.store.Get(ctx, l.key)
	if errors.Is(err, storage.ErrNotFound) {
		l.logger.DebugContext(ctx, "No stored ledger, starting empty", "key", l.key)
		return
	}
	if err != nil {
		l.logger.WarnContext(ctx, "Failed to read stored ledger, starting empty", "key", l.key, "error", err)
		return
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		l.logger.WarnContext(ctx, "Stored ledger is malformed, starting empty", "key", l.key, "error", err)
		return
	}

	l.apply(rec)
	l.loadGroceries(ctx, rec.Groceries)

	l.logger.InfoContext(ctx, "Ledger loaded",
		"key", l.key,
		"expenses", len(l.expenses),
		"incomes", len(l.incomes),
		"groceries", len(l.groceries))
}

func (l *Ledger) apply(rec record) {
	for _, e := range rec.Expenses {
		if e.ID == "" {
			e.ID = l.newID()
		}
		e.Category = core.NormalizeCategory(string(e.Category))
		subs := make([]core.SubExpense, 0, len(e.SubExpenses))
		for _, s := range e.SubExpenses {
			if s.ID == "" {
				s.ID = l.newID()
			}
			subs = append(subs, s)
		}
		e.SubExpenses = subs
		l.expenses = append(l.expenses, e)
	}
	for _, in := range rec.AdditionalIncomes {
		if in.ID == "" {
			in.ID = l.newID()
		}
		l.incomes = append(l.incomes, in)
	}

	if rec.TaxEnabled != nil {
		l.taxEnabled = *rec.TaxEnabled
	}
	if rec.AgeBracket.IsValid() {
		l.salary.AgeBracket = rec.AgeBracket
	}
	// The stored net salary is informational; it is always derived again.
	l.salary.GrossSalary = clampSalary(rec.Salary)
	l.recomputeSalary()
}
