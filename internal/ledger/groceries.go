package ledger

import (
	"context"
	"encoding/json"

	"budget/internal/core"
)

// Groceries returns a copy of the shopping list stored next to the ledger.
func (l *Ledger) Groceries() []core.Grocery {
	return l.groceryList()
}

func (l *Ledger) groceryList() []core.Grocery {
	return append([]core.Grocery{}, l.groceries...)
}

// AddGroceries appends items, assigning each an ID, and returns the new list.
func (l *Ledger) AddGroceries(ctx context.Context, items ...core.Grocery) []core.Grocery {
	for _, g := range items {
		g.ID = l.newID()
		l.groceries = append(l.groceries, g)
	}
	l.groceriesRaw = nil
	l.persist(ctx)
	return l.groceryList()
}

// RemoveGrocery deletes the item at index. Out-of-range indexes are ignored.
func (l *Ledger) RemoveGrocery(ctx context.Context, index int) bool {
	if index < 0 || index >= len(l.groceries) {
		return false
	}
	l.groceries = append(l.groceries[:index], l.groceries[index+1:]...)
	l.groceriesRaw = nil
	l.persist(ctx)
	return true
}

// loadGroceries decodes the grocery list on its own so that a malformed list
// never affects the ledger fields decoded from the same record.
func (l *Ledger) loadGroceries(ctx context.Context, raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	var items []core.Grocery
	if err := json.Unmarshal(raw, &items); err != nil {
		l.logger.WarnContext(ctx, "Stored grocery list is malformed, keeping it untouched", "key", l.key, "error", err)
		l.groceriesRaw = append([]byte(nil), raw...)
		return
	}
	for _, g := range items {
		if g.ID == "" {
			g.ID = l.newID()
		}
		l.groceries = append(l.groceries, g)
	}
}
