package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/storage"
	"budget/internal/tax"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []*amqp.LedgerChanged
	err      error
	closed   bool
}

func (p *fakePublisher) PublishLedgerChanged(_ context.Context, msg *amqp.LedgerChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func (p *fakePublisher) operations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := make([]string, len(p.messages))
	for i, m := range p.messages {
		ops[i] = m.Operation
	}
	return ops
}

type closeTrackingStore struct {
	storage.RecordStore
	closed bool
}

func (s *closeTrackingStore) Close() error {
	s.closed = true
	return nil
}

func newTestService(t *testing.T, pub EventPublisher) (*LedgerService, storage.RecordStore) {
	t.Helper()
	logger := log.Discard()
	store := storage.NewMemoryStore()
	calc := tax.Default()
	l := ledger.New(calc, store, ledger.WithLogger(logger.Logger))
	return NewLedgerService(l, calc, store, pub, logger), store
}

func TestLedgerService_RejectsInvalidInput(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)
	ctx := context.Background()
	before := svc.Snapshot()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"zero amount expense", func() error {
			_, err := svc.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 0, Category: core.Housing})
			return err
		}, core.ErrInvalidAmount},
		{"unnamed expense", func() error {
			_, err := svc.AddExpense(ctx, core.Expense{Name: " ", Amount: 10, Category: core.Housing})
			return err
		}, core.ErrEmptyName},
		{"unknown category", func() error {
			_, err := svc.AddExpense(ctx, core.Expense{Name: "Boat", Amount: 10, Category: "yachts"})
			return err
		}, core.ErrInvalidCategory},
		{"income without source", func() error {
			_, err := svc.AddIncome(ctx, core.Income{Amount: 10})
			return err
		}, core.ErrEmptySource},
		{"negative salary", func() error {
			_, err := svc.UpdateSalary(ctx, -1, false)
			return err
		}, core.ErrInvalidAmount},
		{"NaN salary", func() error {
			_, err := svc.UpdateSalary(ctx, math.NaN(), false)
			return err
		}, core.ErrInvalidAmount},
		{"bad age bracket", func() error {
			return svc.SetTaxMode(ctx, nil, "teen")
		}, core.ErrInvalidAgeBracket},
		{"grocery without quantity", func() error {
			_, err := svc.AddGroceries(ctx, core.Grocery{Name: "Milk", Quantity: 1}, core.Grocery{Name: "Eggs"})
			return err
		}, core.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	after := svc.Snapshot()
	if len(after.Expenses) != len(before.Expenses) || after.Salary != before.Salary || len(svc.Groceries()) != 0 {
		t.Errorf("rejected input mutated state: %+v", after)
	}
	if len(pub.operations()) != 0 {
		t.Errorf("rejected input published events: %v", pub.operations())
	}
}

func TestLedgerService_PublishesAfterMutations(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)
	ctx := context.Background()

	e, err := svc.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 8000, Category: core.Housing})
	if err != nil {
		t.Fatal(err)
	}
	sub, err := svc.AddSubExpense(ctx, e.ID, core.SubExpense{Name: "Levy", Amount: 500})
	if err != nil {
		t.Fatal(err)
	}
	in, err := svc.AddIncome(ctx, core.Income{Source: "Tutoring", Amount: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateSalary(ctx, 20000, false); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveSubExpense(ctx, e.ID, sub.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveIncome(ctx, in.ID); err != nil {
		t.Fatal(err)
	}

	want := []string{log.OpAddExpense, log.OpAddSubExpense, log.OpAddIncome, log.OpUpdateSalary, log.OpRemoveSubExpense, log.OpRemoveIncome}
	got := pub.operations()
	if len(got) != len(want) {
		t.Fatalf("operations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("operation %d = %s, want %s", i, got[i], want[i])
		}
	}

	last := pub.messages[len(pub.messages)-1]
	snap := svc.Snapshot()
	if last.Balance != snap.Balance || last.TotalIncome != snap.TotalIncome || last.TotalExpenses != snap.TotalExpenses {
		t.Errorf("event totals %+v do not match snapshot %+v", last, snap)
	}
}

func TestLedgerService_NotFound(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	checks := map[string]error{
		"remove expense":    svc.RemoveExpense(ctx, "missing"),
		"remove expense at": svc.RemoveExpenseAt(ctx, 3),
		"remove sub":        svc.RemoveSubExpense(ctx, "missing", "x"),
		"remove sub at":     svc.RemoveSubExpenseAt(ctx, 0, 0),
		"remove income":     svc.RemoveIncome(ctx, "missing"),
		"remove income at":  svc.RemoveIncomeAt(ctx, 0),
		"remove grocery":    svc.RemoveGrocery(ctx, 0),
	}
	_, err := svc.AddSubExpense(ctx, "missing", core.SubExpense{Name: "x", Amount: 1})
	checks["add sub"] = err
	_, err = svc.AddSubExpenseAt(ctx, 4, core.SubExpense{Name: "x", Amount: 1})
	checks["add sub at"] = err

	for name, err := range checks {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestLedgerService_PublishFailureIsBestEffort(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, store := newTestService(t, pub)
	ctx := context.Background()

	if _, err := svc.AddIncome(ctx, core.Income{Source: "Gift", Amount: 50}); err != nil {
		t.Fatalf("AddIncome() error = %v, want publish failure swallowed", err)
	}
	if _, err := store.Get(ctx, storage.DefaultKey); err != nil {
		t.Errorf("record not persisted: %v", err)
	}
}

func TestLedgerService_SalaryModes(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	gross, err := svc.UpdateSalary(ctx, 20000, false)
	if err != nil {
		t.Fatal(err)
	}
	net, err := svc.UpdateSalary(ctx, gross.NetSalary, true)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(net.GrossSalary-20000) > 1e-3 {
		t.Errorf("gross from net = %v, want 20000", net.GrossSalary)
	}

	off := false
	if err := svc.SetTaxMode(ctx, &off, core.From65To74); err != nil {
		t.Fatal(err)
	}
	snap := svc.Snapshot()
	if snap.TaxEnabled || snap.Salary.AgeBracket != core.From65To74 {
		t.Errorf("snapshot = %+v", snap)
	}

	if err := svc.SetTaxMode(ctx, nil, core.From75); err != nil {
		t.Fatal(err)
	}
	if snap := svc.Snapshot(); snap.TaxEnabled || snap.Salary.AgeBracket != core.From75 {
		t.Errorf("bracket-only change: taxEnabled=%v bracket=%q, want false/%q", snap.TaxEnabled, snap.Salary.AgeBracket, core.From75)
	}

	preview := svc.NetSalary(20000, core.Under65)
	if preview.NetSalary != gross.NetSalary {
		t.Errorf("NetSalary preview = %v, want %v", preview.NetSalary, gross.NetSalary)
	}
}

func TestLedgerService_ConcurrentCallers(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.AddExpense(ctx, core.Expense{Name: "Coffee", Amount: 5, Category: core.Food})
			svc.Snapshot()
		}()
	}
	wg.Wait()

	if got := svc.Snapshot().TotalExpenses; got != 100 {
		t.Errorf("TotalExpenses = %v, want 100", got)
	}
}

func TestLedgerService_LoadAndClose(t *testing.T) {
	pub := &fakePublisher{}
	svc, store := newTestService(t, pub)
	ctx := context.Background()
	svc.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 100, Category: core.Housing})

	calc := tax.Default()
	l := ledger.New(calc, store, ledger.WithLogger(log.Discard().Logger))
	reloaded := NewLedgerService(l, calc, store, nil, log.Discard())
	if snap := reloaded.Load(ctx); snap.TotalExpenses != 100 {
		t.Errorf("Load() TotalExpenses = %v, want 100", snap.TotalExpenses)
	}
	if err := reloaded.Ready(ctx); err != nil {
		t.Errorf("Ready() error = %v", err)
	}

	if err := svc.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !pub.closed {
		t.Error("Close() did not close the publisher")
	}
}

func TestLedgerService_CloseLeavesStoreToOwner(t *testing.T) {
	store := &closeTrackingStore{RecordStore: storage.NewMemoryStore()}
	calc := tax.Default()
	l := ledger.New(calc, store, ledger.WithLogger(log.Discard().Logger))
	svc := NewLedgerService(l, calc, store, nil, log.Discard())

	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if store.closed {
		t.Error("Close() closed a store it does not own")
	}
}

func TestLedgerService_BracketChangesKeepConcurrentToggle(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	brackets := []core.AgeBracket{core.Under65, core.From65To74, core.From75}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(b core.AgeBracket) {
			defer wg.Done()
			if err := svc.SetTaxMode(ctx, nil, b); err != nil {
				t.Error(err)
			}
		}(brackets[i%len(brackets)])
	}
	off := false
	if err := svc.SetTaxMode(ctx, &off, ""); err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	if svc.Snapshot().TaxEnabled {
		t.Error("a bracket-only change re-enabled tax")
	}
}
