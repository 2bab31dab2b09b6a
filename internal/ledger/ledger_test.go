package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"budget/internal/core"
	"budget/internal/storage"
	"budget/internal/tax"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLedger(t *testing.T, store storage.RecordStore, opts ...Option) *Ledger {
	t.Helper()
	opts = append([]Option{withIDGenerator(sequentialIDs()), WithLogger(quietLogger())}, opts...)
	return New(tax.Default(), store, opts...)
}

// failingStore rejects every write and reports every key as missing.
type failingStore struct{ puts int }

func (s *failingStore) Get(context.Context, string) ([]byte, error) { return nil, storage.ErrNotFound }
func (s *failingStore) Put(context.Context, string, []byte) error {
	s.puts++
	return errors.New("disk full")
}
func (s *failingStore) Close() error { return nil }

func TestTotalExpensesIncludesSubExpenses(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)

	l.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 100, Category: core.Housing})
	if _, ok := l.AddSubExpense(ctx, 0, core.SubExpense{Name: "Levy", Amount: 50}); !ok {
		t.Fatal("AddSubExpense(0) reported out of range")
	}

	if got := l.TotalExpenses(); got != 150 {
		t.Errorf("TotalExpenses() = %v, want 150", got)
	}
}

func TestAddExpenseResetsSubExpensesAndAssignsID(t *testing.T) {
	l := newTestLedger(t, nil)
	got := l.AddExpense(context.Background(), core.Expense{
		ID:          "caller-id",
		Name:        "Car",
		Amount:      10,
		Category:    "spaceships",
		SubExpenses: []core.SubExpense{{Name: "x", Amount: 1}},
	})
	if got.ID != "id-1" {
		t.Errorf("ID = %q, want generated id-1", got.ID)
	}
	if got.Category != core.Other {
		t.Errorf("Category = %q, want other", got.Category)
	}
	if len(got.SubExpenses) != 0 || got.SubExpenses == nil {
		t.Errorf("SubExpenses = %#v, want empty non-nil", got.SubExpenses)
	}
}

func TestOutOfRangeOperationsAreNoOps(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	l.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 100, Category: core.Housing})
	l.AddSubExpense(ctx, 0, core.SubExpense{Name: "Levy", Amount: 50})
	l.AddIncome(ctx, core.Income{Source: "Gift", Amount: 10})
	before := l.Snapshot()

	checks := []struct {
		name string
		op   func() bool
	}{
		{"remove expense past end", func() bool { return l.RemoveExpense(ctx, 1) }},
		{"remove expense negative", func() bool { return l.RemoveExpense(ctx, -1) }},
		{"remove sub of missing parent", func() bool { return l.RemoveSubExpense(ctx, 5, 0) }},
		{"remove missing sub", func() bool { return l.RemoveSubExpense(ctx, 0, 3) }},
		{"remove income past end", func() bool { return l.RemoveIncome(ctx, 1) }},
		{"add sub to missing parent", func() bool { _, ok := l.AddSubExpense(ctx, 2, core.SubExpense{Name: "x", Amount: 1}); return ok }},
		{"remove unknown expense id", func() bool { return l.RemoveExpenseByID(ctx, "nope") }},
		{"remove unknown sub id", func() bool { return l.RemoveSubExpenseByID(ctx, "id-1", "nope") }},
		{"remove unknown income id", func() bool { return l.RemoveIncomeByID(ctx, "nope") }},
		{"remove grocery past end", func() bool { return l.RemoveGrocery(ctx, 0) }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if c.op() {
				t.Error("operation reported success")
			}
			if after := l.Snapshot(); !reflect.DeepEqual(before, after) {
				t.Errorf("state changed:\nbefore %+v\nafter  %+v", before, after)
			}
		})
	}
}

func TestRemoveByIDAfterIndexShift(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	a := l.AddExpense(ctx, core.Expense{Name: "A", Amount: 1, Category: core.Food})
	b := l.AddExpense(ctx, core.Expense{Name: "B", Amount: 2, Category: core.Food})
	c := l.AddExpense(ctx, core.Expense{Name: "C", Amount: 3, Category: core.Food})

	if !l.RemoveExpenseByID(ctx, a.ID) {
		t.Fatal("RemoveExpenseByID(a) failed")
	}
	sub, ok := l.AddSubExpenseTo(ctx, c.ID, core.SubExpense{Name: "c1", Amount: 4})
	if !ok {
		t.Fatal("AddSubExpenseTo(c) failed")
	}
	if !l.RemoveExpenseByID(ctx, b.ID) {
		t.Fatal("RemoveExpenseByID(b) failed")
	}

	got := l.Expenses()
	if len(got) != 1 || got[0].ID != c.ID || len(got[0].SubExpenses) != 1 {
		t.Fatalf("Expenses() = %+v, want only C with one sub-expense", got)
	}
	if !l.RemoveSubExpenseByID(ctx, c.ID, sub.ID) {
		t.Error("RemoveSubExpenseByID failed")
	}
	if l.TotalExpenses() != 3 {
		t.Errorf("TotalExpenses() = %v, want 3", l.TotalExpenses())
	}
}

func TestBalanceIdentity(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	l.UpdateSalary(ctx, 25000)

	ops := []func(){
		func() { l.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 8000, Category: core.Housing}) },
		func() { l.AddIncome(ctx, core.Income{Source: "Side", Amount: 1200}) },
		func() { l.AddSubExpense(ctx, 0, core.SubExpense{Name: "Water", Amount: 300}) },
		func() { l.AddExpense(ctx, core.Expense{Name: "Movies", Amount: 900, Category: core.Entertainment}) },
		func() { l.RemoveIncome(ctx, 0) },
		func() { l.RemoveSubExpense(ctx, 0, 0) },
		func() { l.SetTaxMode(ctx, false, "") },
		func() { l.RemoveExpense(ctx, 0) },
		func() { l.AddIncome(ctx, core.Income{Source: "Bonus", Amount: 5000}) },
	}
	for i, op := range ops {
		op()
		if got, want := l.Balance(), l.TotalIncome()-l.TotalExpenses(); got != want {
			t.Fatalf("after op %d: Balance() = %v, want %v", i, got, want)
		}
	}
}

func TestTotalIncomeFollowsTaxMode(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	l.AddIncome(ctx, core.Income{Source: "Rental", Amount: 1000})

	b := l.UpdateSalaryDetails(ctx, 20000)
	if math.Abs(b.NetSalary-17639.82) > 0.005 {
		t.Fatalf("NetSalary = %v, want ~17639.82", b.NetSalary)
	}
	if got := l.TotalIncome(); got != b.NetSalary+1000 {
		t.Errorf("TotalIncome() with tax = %v, want %v", got, b.NetSalary+1000)
	}

	if err := l.SetTaxMode(ctx, false, ""); err != nil {
		t.Fatal(err)
	}
	if got := l.TotalIncome(); got != 21000 {
		t.Errorf("TotalIncome() without tax = %v, want 21000", got)
	}
}

func TestSetTaxModeChangesBracket(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	l.UpdateSalary(ctx, 20000)
	under65 := l.Salary().Tax

	if err := l.SetTaxMode(ctx, true, core.From75); err != nil {
		t.Fatal(err)
	}
	if l.Salary().AgeBracket != core.From75 {
		t.Errorf("AgeBracket = %q", l.Salary().AgeBracket)
	}
	if l.Salary().Tax >= under65 {
		t.Errorf("tax for 75+ (%v) should be below under-65 tax (%v)", l.Salary().Tax, under65)
	}

	if err := l.SetTaxMode(ctx, true, "teen"); !errors.Is(err, core.ErrInvalidAgeBracket) {
		t.Errorf("SetTaxMode(invalid) error = %v", err)
	}
	if l.Salary().AgeBracket != core.From75 {
		t.Error("invalid bracket changed state")
	}
}

func TestUpdateSalaryClampsInvalid(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	for _, v := range []float64{-5, math.NaN(), math.Inf(1)} {
		l.UpdateSalary(ctx, 1000)
		l.UpdateSalary(ctx, v)
		if s := l.Salary(); s.GrossSalary != 0 || s.NetSalary != 0 || s.Tax != 0 || s.UIF != 0 {
			t.Errorf("UpdateSalary(%v) = %+v, want zero salary", v, s)
		}
	}
}

func TestUpdateNetSalary(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	b := l.UpdateNetSalary(ctx, 17639.82)
	if math.Abs(b.GrossSalary-20000) > 0.01 {
		t.Errorf("GrossSalary = %v, want ~20000", b.GrossSalary)
	}
	if math.Abs(l.Salary().NetSalary-17639.82) > 1e-3 {
		t.Errorf("NetSalary = %v", l.Salary().NetSalary)
	}
}

func TestNaNAmountsCountAsZero(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil, WithTaxEnabled(false))
	l.AddExpense(ctx, core.Expense{Name: "Bad", Amount: math.NaN(), Category: core.Food})
	l.AddSubExpense(ctx, 0, core.SubExpense{Name: "Worse", Amount: math.Inf(1)})
	l.AddIncome(ctx, core.Income{Source: "Odd", Amount: math.NaN()})

	if l.TotalExpenses() != 0 || l.TotalIncome() != 0 || l.Balance() != 0 {
		t.Errorf("totals = %v/%v/%v, want zeros", l.TotalIncome(), l.TotalExpenses(), l.Balance())
	}
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	l.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 100, Category: core.Housing})
	l.AddSubExpense(ctx, 0, core.SubExpense{Name: "Levy", Amount: 50})
	l.AddIncome(ctx, core.Income{Source: "Gift", Amount: 10})

	snap := l.Snapshot()
	snap.Expenses[0].Amount = 9999
	snap.Expenses[0].SubExpenses[0].Amount = 9999
	snap.Incomes[0].Amount = 9999

	if l.TotalExpenses() != 150 {
		t.Errorf("TotalExpenses() = %v after mutating snapshot", l.TotalExpenses())
	}
	if got := l.Incomes()[0].Amount; got != 10 {
		t.Errorf("income amount = %v after mutating snapshot", got)
	}
}

func TestCategoryTotals(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)
	l.AddExpense(ctx, core.Expense{Name: "Fun", Amount: 50, Category: core.Entertainment})
	l.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 100, Category: core.Housing})
	l.AddSubExpense(ctx, 1, core.SubExpense{Name: "Levy", Amount: 25})
	l.AddExpense(ctx, core.Expense{Name: "Flat", Amount: 10, Category: core.Housing})

	want := []core.CategoryAmount{
		{Category: core.Housing, Amount: 135},
		{Category: core.Entertainment, Amount: 50},
	}
	if got := l.CategoryTotals(); !reflect.DeepEqual(got, want) {
		t.Errorf("CategoryTotals() = %+v, want %+v", got, want)
	}
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	store := &failingStore{}
	l := newTestLedger(t, store)
	l.AddExpense(context.Background(), core.Expense{Name: "Rent", Amount: 100, Category: core.Housing})

	if store.puts != 1 {
		t.Errorf("Put called %d times, want 1", store.puts)
	}
	if l.TotalExpenses() != 100 {
		t.Errorf("TotalExpenses() = %v, mutation was lost", l.TotalExpenses())
	}
}

func TestAnalyzeMessagesUseOneDecimal(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil, WithTaxEnabled(false))
	l.UpdateSalary(ctx, 3000)
	l.AddExpense(ctx, core.Expense{Name: "Dinner", Amount: 1000, Category: core.Food})

	got := l.Analyze()
	var found bool
	for _, msg := range got {
		if strings.Contains(msg, "food expenses (33.3% of income)") {
			found = true
		}
	}
	if !found {
		t.Errorf("Analyze() = %q, want food message with 33.3%%", got)
	}
}
