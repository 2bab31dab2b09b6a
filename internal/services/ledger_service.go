// Package services coordinates the ledger with its side effects: change
// events, metrics and logging. LedgerService is the one object the CLI and
// HTTP surfaces share.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/metrics"
	"budget/internal/storage"
	"budget/internal/tax"
)

// ErrNotFound is returned when an ID does not match any entity.
var ErrNotFound = errors.New("not found")

// EventPublisher delivers ledger change events. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChanged) error
}

// LedgerService serializes access to a ledger. Inputs are validated before
// they reach the ledger, so a rejected call never mutates state.
type LedgerService struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	calc      ledger.Calculator
	store     storage.RecordStore
	publisher EventPublisher
	logger    *log.Logger
}

// NewLedgerService wraps l. publisher may be nil to disable events. store
// is only pinged by Ready; the caller owns its lifecycle.
func NewLedgerService(l *ledger.Ledger, calc ledger.Calculator, store storage.RecordStore, publisher EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerService{
		ledger:    l,
		calc:      calc,
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Load restores the ledger from its store.
func (s *LedgerService) Load(ctx context.Context) core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Load(ctx)
	snap := s.ledger.Snapshot()
	metrics.RecordTotals(snap.TotalIncome, snap.TotalExpenses, snap.Balance)
	return snap
}

func (s *LedgerService) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}

func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		s.rejected(ctx, log.OpAddExpense, err)
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added := s.ledger.AddExpense(ctx, e)
	s.changed(ctx, log.OpAddExpense, log.NewFields().WithExpense(added.ID, added.Name, added.Amount, string(added.Category)))
	return added, nil
}

func (s *LedgerService) RemoveExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.RemoveExpenseByID(ctx, id) {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	s.changed(ctx, log.OpRemoveExpense, log.LogFields{log.FieldEntityID: id})
	return nil
}

// RemoveExpenseAt removes by position, as shown by the CLI listing.
func (s *LedgerService) RemoveExpenseAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.RemoveExpense(ctx, index) {
		return fmt.Errorf("expense #%d: %w", index+1, ErrNotFound)
	}
	s.changed(ctx, log.OpRemoveExpense, log.LogFields{"index": index})
	return nil
}

func (s *LedgerService) AddSubExpense(ctx context.Context, expenseID string, se core.SubExpense) (core.SubExpense, error) {
	if err := se.Validate(); err != nil {
		s.rejected(ctx, log.OpAddSubExpense, err)
		return core.SubExpense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added, ok := s.ledger.AddSubExpenseTo(ctx, expenseID, se)
	if !ok {
		return core.SubExpense{}, fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
	}
	s.changed(ctx, log.OpAddSubExpense, log.LogFields{log.FieldEntityID: added.ID, "expense_id": expenseID})
	return added, nil
}

// AddSubExpenseAt attaches se to the expense at index.
func (s *LedgerService) AddSubExpenseAt(ctx context.Context, index int, se core.SubExpense) (core.SubExpense, error) {
	if err := se.Validate(); err != nil {
		s.rejected(ctx, log.OpAddSubExpense, err)
		return core.SubExpense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added, ok := s.ledger.AddSubExpense(ctx, index, se)
	if !ok {
		return core.SubExpense{}, fmt.Errorf("expense #%d: %w", index+1, ErrNotFound)
	}
	s.changed(ctx, log.OpAddSubExpense, log.LogFields{log.FieldEntityID: added.ID, "index": index})
	return added, nil
}

func (s *LedgerService) RemoveSubExpense(ctx context.Context, expenseID, subID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.RemoveSubExpenseByID(ctx, expenseID, subID) {
		return fmt.Errorf("sub-expense %s of %s: %w", subID, expenseID, ErrNotFound)
	}
	s.changed(ctx, log.OpRemoveSubExpense, log.LogFields{log.FieldEntityID: subID, "expense_id": expenseID})
	return nil
}

func (s *LedgerService) RemoveSubExpenseAt(ctx context.Context, index, subIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.RemoveSubExpense(ctx, index, subIndex) {
		return fmt.Errorf("sub-expense #%d.%d: %w", index+1, subIndex+1, ErrNotFound)
	}
	s.changed(ctx, log.OpRemoveSubExpense, log.LogFields{"index": index, "sub_index": subIndex})
	return nil
}

func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		s.rejected(ctx, log.OpAddIncome, err)
		return core.Income{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added := s.ledger.AddIncome(ctx, in)
	s.changed(ctx, log.OpAddIncome, log.LogFields{log.FieldEntityID: added.ID, log.FieldAmount: added.Amount})
	return added, nil
}

func (s *LedgerService) RemoveIncome(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.RemoveIncomeByID(ctx, id) {
		return fmt.Errorf("income %s: %w", id, ErrNotFound)
	}
	s.changed(ctx, log.OpRemoveIncome, log.LogFields{log.FieldEntityID: id})
	return nil
}

func (s *LedgerService) RemoveIncomeAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.RemoveIncome(ctx, index) {
		return fmt.Errorf("income #%d: %w", index+1, ErrNotFound)
	}
	s.changed(ctx, log.OpRemoveIncome, log.LogFields{"index": index})
	return nil
}

// UpdateSalary sets the gross salary, or the net salary when net is true,
// and returns the resulting breakdown.
func (s *LedgerService) UpdateSalary(ctx context.Context, amount float64, net bool) (tax.Breakdown, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		s.rejected(ctx, log.OpUpdateSalary, core.ErrInvalidAmount)
		return tax.Breakdown{}, core.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var b tax.Breakdown
	if net {
		b = s.ledger.UpdateNetSalary(ctx, amount)
	} else {
		b = s.ledger.UpdateSalaryDetails(ctx, amount)
	}
	s.changed(ctx, log.OpUpdateSalary, log.LogFields{"gross": b.GrossSalary, "net": b.NetSalary})
	return b, nil
}

// SetTaxMode changes the tax toggle when enabled is not nil and the age
// bracket when bracket is not empty. Omitted settings keep the value they
// have when the lock is taken.
func (s *LedgerService) SetTaxMode(ctx context.Context, enabled *bool, bracket core.AgeBracket) error {
	if bracket != "" && !bracket.IsValid() {
		s.rejected(ctx, log.OpSetTaxMode, core.ErrInvalidAgeBracket)
		return core.ErrInvalidAgeBracket
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	on := s.ledger.TaxEnabled()
	if enabled != nil {
		on = *enabled
	}
	if err := s.ledger.SetTaxMode(ctx, on, bracket); err != nil {
		return err
	}
	s.changed(ctx, log.OpSetTaxMode, log.LogFields{"tax_enabled": on, "age_bracket": string(s.ledger.Salary().AgeBracket)})
	return nil
}

// NetSalary computes a breakdown without touching the ledger.
func (s *LedgerService) NetSalary(gross float64, bracket core.AgeBracket, opts ...tax.Option) tax.Breakdown {
	return s.calc.CalculateNetSalary(gross, bracket.RepresentativeAge(), opts...)
}

func (s *LedgerService) Groceries() []core.Grocery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Groceries()
}

// AddGroceries validates every item first; one bad item rejects the batch.
func (s *LedgerService) AddGroceries(ctx context.Context, items ...core.Grocery) ([]core.Grocery, error) {
	for _, g := range items {
		if err := g.Validate(); err != nil {
			s.rejected(ctx, log.OpAddGroceries, err)
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.ledger.AddGroceries(ctx, items...)
	s.logger.InfoContext(ctx, "Groceries added", log.FieldOperation, log.OpAddGroceries, "count", len(items))
	metrics.LedgerMutations.WithLabelValues(log.OpAddGroceries, "ok").Inc()
	return list, nil
}

func (s *LedgerService) RemoveGrocery(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.RemoveGrocery(ctx, index) {
		return fmt.Errorf("grocery #%d: %w", index+1, ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Grocery removed", log.FieldOperation, log.OpRemoveGrocery, "index", index)
	metrics.LedgerMutations.WithLabelValues(log.OpRemoveGrocery, "ok").Inc()
	return nil
}

// Ready reports whether the store answers, for readiness probes.
func (s *LedgerService) Ready(ctx context.Context) error {
	if p, ok := s.store.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// changed runs after a successful mutation, with the lock held, so the
// event reflects exactly the state the mutation produced.
func (s *LedgerService) changed(ctx context.Context, op string, fields log.LogFields) {
	income := s.ledger.TotalIncome()
	expenses := s.ledger.TotalExpenses()
	balance := s.ledger.Balance()

	metrics.LedgerMutations.WithLabelValues(op, "ok").Inc()
	metrics.RecordTotals(income, expenses, balance)

	fields = fields.WithOperation(op)
	fields[log.FieldBalance] = balance
	s.logger.InfoContext(ctx, "Ledger updated", fields.ToSlice()...)

	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChanged(op, income, expenses, balance)
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "Failed to publish ledger event", log.FieldOperation, op, log.FieldError, err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

func (s *LedgerService) rejected(ctx context.Context, op string, err error) {
	metrics.LedgerMutations.WithLabelValues(op, "rejected").Inc()
	s.logger.WarnContext(ctx, "Rejected ledger input", log.NewFields().WithOperation(op).WithError(err).ToSlice()...)
}

// Close releases the publisher when it supports it.
func (s *LedgerService) Close() error {
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close amqp publisher: %w", err)
		}
	}
	return nil
}
