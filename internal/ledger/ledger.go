// Package ledger holds the budget state: expenses with their sub-expenses,
// additional incomes, the salary and the figures derived from it. Every
// mutation is written through to a storage.RecordStore as one record.
//
// A Ledger is not safe for concurrent use; callers that share one must
// serialize access.
package ledger

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/storage"
	"budget/internal/tax"
)

// Calculator derives net salary figures. *tax.Engine and *tax.Cached satisfy it.
type Calculator interface {
	CalculateNetSalary(gross float64, age int, opts ...tax.Option) tax.Breakdown
	GrossForNet(net float64, age int, opts ...tax.Option) float64
}

type Ledger struct {
	calc   Calculator
	store  storage.RecordStore
	key    string
	logger *slog.Logger
	newID  func() string

	defaultTaxEnabled bool
	defaultBracket    core.AgeBracket

	expenses   []core.Expense
	incomes    []core.Income
	salary     core.SalaryState
	taxEnabled bool

	groceries []core.Grocery
	// groceriesRaw keeps an undecodable stored grocery list untouched until
	// the list is modified.
	groceriesRaw []byte
}

type Option func(*Ledger)

// WithKey overrides the record key (default storage.DefaultKey).
func WithKey(key string) Option {
	return func(l *Ledger) {
		if key != "" {
			l.key = key
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTaxEnabled sets the initial tax mode, used until a record says otherwise.
func WithTaxEnabled(enabled bool) Option {
	return func(l *Ledger) { l.defaultTaxEnabled = enabled }
}

// WithAgeBracket sets the initial age bracket. Invalid brackets are ignored.
func WithAgeBracket(b core.AgeBracket) Option {
	return func(l *Ledger) {
		if b.IsValid() {
			l.defaultBracket = b
		}
	}
}

// withIDGenerator replaces the UUID generator.
func withIDGenerator(gen func() string) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

// New returns an empty ledger. Call Load to restore persisted state.
// A nil store keeps the record in memory only.
func New(calc Calculator, store storage.RecordStore, opts ...Option) *Ledger {
	if calc == nil {
		calc = tax.Default()
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	l := &Ledger{
		calc:              calc,
		store:             store,
		key:               storage.DefaultKey,
		logger:            slog.Default(),
		newID:             uuid.NewString,
		defaultTaxEnabled: true,
		defaultBracket:    core.Under65,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.reset()
	return l
}

func (l *Ledger) reset() {
	l.expenses = []core.Expense{}
	l.incomes = []core.Income{}
	l.taxEnabled = l.defaultTaxEnabled
	l.salary = core.SalaryState{AgeBracket: l.defaultBracket}
	l.recomputeSalary()
}

// AddExpense appends e with an empty sub-expense list and a fresh ID.
func (l *Ledger) AddExpense(ctx context.Context, e core.Expense) core.Expense {
	e.ID = l.newID()
	e.Category = core.NormalizeCategory(string(e.Category))
	e.SubExpenses = []core.SubExpense{}
	l.expenses = append(l.expenses, e)
	l.persist(ctx)
	return e.Clone()
}

// AddSubExpense attaches se to the expense at parentIndex. It reports false
// and changes nothing when the index is out of range.
func (l *Ledger) AddSubExpense(ctx context.Context, parentIndex int, se core.SubExpense) (core.SubExpense, bool) {
	if parentIndex < 0 || parentIndex >= len(l.expenses) {
		return core.SubExpense{}, false
	}
	se.ID = l.newID()
	parent := &l.expenses[parentIndex]
	parent.SubExpenses = append(parent.SubExpenses, se)
	l.persist(ctx)
	return se, true
}

// AddSubExpenseTo attaches se to the expense with the given ID.
func (l *Ledger) AddSubExpenseTo(ctx context.Context, expenseID string, se core.SubExpense) (core.SubExpense, bool) {
	return l.AddSubExpense(ctx, l.expenseIndex(expenseID), se)
}

// RemoveExpense deletes the expense at index together with its sub-expenses.
func (l *Ledger) RemoveExpense(ctx context.Context, index int) bool {
	if index < 0 || index >= len(l.expenses) {
		return false
	}
	l.expenses = append(l.expenses[:index], l.expenses[index+1:]...)
	l.persist(ctx)
	return true
}

func (l *Ledger) RemoveExpenseByID(ctx context.Context, id string) bool {
	return l.RemoveExpense(ctx, l.expenseIndex(id))
}

func (l *Ledger) RemoveSubExpense(ctx context.Context, parentIndex, subIndex int) bool {
	if parentIndex < 0 || parentIndex >= len(l.expenses) {
		return false
	}
	parent := &l.expenses[parentIndex]
	if subIndex < 0 || subIndex >= len(parent.SubExpenses) {
		return false
	}
	parent.SubExpenses = append(parent.SubExpenses[:subIndex], parent.SubExpenses[subIndex+1:]...)
	l.persist(ctx)
	return true
}

func (l *Ledger) RemoveSubExpenseByID(ctx context.Context, expenseID, subID string) bool {
	parentIndex := l.expenseIndex(expenseID)
	if parentIndex < 0 {
		return false
	}
	subIndex := -1
	for i, s := range l.expenses[parentIndex].SubExpenses {
		if s.ID == subID {
			subIndex = i
			break
		}
	}
	return l.RemoveSubExpense(ctx, parentIndex, subIndex)
}

func (l *Ledger) AddIncome(ctx context.Context, i core.Income) core.Income {
	i.ID = l.newID()
	l.incomes = append(l.incomes, i)
	l.persist(ctx)
	return i
}

func (l *Ledger) RemoveIncome(ctx context.Context, index int) bool {
	if index < 0 || index >= len(l.incomes) {
		return false
	}
	l.incomes = append(l.incomes[:index], l.incomes[index+1:]...)
	l.persist(ctx)
	return true
}

func (l *Ledger) RemoveIncomeByID(ctx context.Context, id string) bool {
	for i, in := range l.incomes {
		if in.ID == id {
			return l.RemoveIncome(ctx, i)
		}
	}
	return false
}

func (l *Ledger) expenseIndex(id string) int {
	for i, e := range l.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// UpdateSalary sets the gross salary. Negative or non-finite amounts become
// zero. Derived net salary, tax and UIF are recomputed.
func (l *Ledger) UpdateSalary(ctx context.Context, gross float64) {
	l.salary.GrossSalary = clampSalary(gross)
	l.recomputeSalary()
	l.persist(ctx)
}

// UpdateSalaryDetails sets the gross salary and returns the resulting breakdown.
func (l *Ledger) UpdateSalaryDetails(ctx context.Context, gross float64) tax.Breakdown {
	l.UpdateSalary(ctx, gross)
	return l.breakdown()
}

// UpdateNetSalary sets the gross salary whose net equals net for the current
// age bracket, and returns the resulting breakdown.
func (l *Ledger) UpdateNetSalary(ctx context.Context, net float64) tax.Breakdown {
	gross := l.calc.GrossForNet(clampSalary(net), l.salary.AgeBracket.RepresentativeAge())
	return l.UpdateSalaryDetails(ctx, gross)
}

// SetTaxMode switches between net and gross salary in the income total and
// changes the age bracket. An empty bracket keeps the current one.
func (l *Ledger) SetTaxMode(ctx context.Context, enabled bool, bracket core.AgeBracket) error {
	if bracket == "" {
		bracket = l.salary.AgeBracket
	}
	if !bracket.IsValid() {
		return core.ErrInvalidAgeBracket
	}
	l.taxEnabled = enabled
	l.salary.AgeBracket = bracket
	l.recomputeSalary()
	l.persist(ctx)
	return nil
}

func (l *Ledger) recomputeSalary() {
	b := l.calc.CalculateNetSalary(l.salary.GrossSalary, l.salary.AgeBracket.RepresentativeAge())
	l.salary.NetSalary = b.NetSalary
	l.salary.Tax = b.Tax
	l.salary.UIF = b.UIF
}

func (l *Ledger) breakdown() tax.Breakdown {
	if l.salary.GrossSalary <= 0 {
		return tax.Breakdown{}
	}
	return tax.Breakdown{
		GrossSalary: l.salary.GrossSalary,
		Tax:         l.salary.Tax,
		UIF:         l.salary.UIF,
		NetSalary:   l.salary.NetSalary,
	}
}

func clampSalary(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func (l *Ledger) Salary() core.SalaryState { return l.salary }

func (l *Ledger) TaxEnabled() bool { return l.taxEnabled }

// TotalIncome is the net salary (gross when tax is disabled) plus all
// additional incomes.
func (l *Ledger) TotalIncome() float64 {
	total := core.SafeAmount(l.salary.GrossSalary)
	if l.taxEnabled {
		total = core.SafeAmount(l.salary.NetSalary)
	}
	for _, in := range l.incomes {
		total += core.SafeAmount(in.Amount)
	}
	return total
}

// TotalExpenses sums every expense and sub-expense.
func (l *Ledger) TotalExpenses() float64 {
	var total float64
	for _, e := range l.expenses {
		total += e.Total()
	}
	return total
}

func (l *Ledger) Balance() float64 {
	return l.TotalIncome() - l.TotalExpenses()
}

// Expenses returns a deep copy of the expenses.
func (l *Ledger) Expenses() []core.Expense {
	out := make([]core.Expense, len(l.expenses))
	for i, e := range l.expenses {
		out[i] = e.Clone()
	}
	return out
}

func (l *Ledger) Incomes() []core.Income {
	return append([]core.Income{}, l.incomes...)
}

// CategoryTotals returns the total per category in category order, omitting
// categories without expenses.
func (l *Ledger) CategoryTotals() []core.CategoryAmount {
	sums := make(map[core.Category]float64)
	seen := make(map[core.Category]bool)
	for _, e := range l.expenses {
		c := core.NormalizeCategory(string(e.Category))
		sums[c] += e.Total()
		seen[c] = true
	}

	out := []core.CategoryAmount{}
	for _, c := range core.Categories() {
		if seen[c] {
			out = append(out, core.CategoryAmount{Category: c, Amount: sums[c]})
		}
	}
	return out
}

// Snapshot assembles the read model. It shares no memory with the ledger.
func (l *Ledger) Snapshot() core.Snapshot {
	return core.Snapshot{
		Expenses:      l.Expenses(),
		Incomes:       l.Incomes(),
		Salary:        l.salary,
		TaxEnabled:    l.taxEnabled,
		TotalIncome:   l.TotalIncome(),
		TotalExpenses: l.TotalExpenses(),
		Balance:       l.Balance(),
		Analysis:      l.Analyze(),
		ByCategory:    l.CategoryTotals(),
	}
}

func (l *Ledger) persist(ctx context.Context) {
	if err := l.Save(ctx); err != nil {
		l.logger.ErrorContext(ctx, "Failed to persist ledger", "key", l.key, "error", err)
	}
}
