package tax

import "math"

// Breakdown is the monthly result of a net salary computation.
type Breakdown struct {
	GrossSalary float64 `json:"grossSalary"`
	Tax         float64 `json:"tax"`
	UIF         float64 `json:"uif"`
	NetSalary   float64 `json:"netSalary"`
}

// Deductions are the optional inputs of CalculateNetSalary.
type Deductions struct {
	Pension         float64
	TravelAllowance float64
	Annual          bool
}

type Option func(*Deductions)

// WithPension sets the pension contribution, in the same period as the salary.
func WithPension(amount float64) Option {
	return func(d *Deductions) { d.Pension = amount }
}

// WithTravelAllowance sets the travel allowance, in the same period as the salary.
func WithTravelAllowance(amount float64) Option {
	return func(d *Deductions) { d.TravelAllowance = amount }
}

// Annual marks the salary figure as annual instead of monthly.
func Annual() Option {
	return func(d *Deductions) { d.Annual = true }
}

// ResolveOptions applies opts to the zero Deductions.
func ResolveOptions(opts ...Option) Deductions {
	var d Deductions
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Engine is a pure calculator over a fixed Table. It is safe for concurrent use.
type Engine struct {
	table Table
}

func NewEngine(t Table) *Engine {
	return &Engine{table: t}
}

// Default returns an engine over the built-in table.
func Default() *Engine {
	return NewEngine(DefaultTable())
}

// Table returns a copy of the engine's table.
func (e *Engine) Table() Table {
	t := e.table
	t.Brackets = append([]Bracket(nil), e.table.Brackets...)
	return t
}

// BracketFor returns the bracket applied to an annual income: the lowest one
// whose max is not below it. Incomes in the one-unit gap before a bracket's
// min therefore pay exactly that bracket's base, and incomes at or below zero
// use the lowest bracket.
func (e *Engine) BracketFor(income float64) Bracket {
	for _, b := range e.table.Brackets {
		if b.Unbounded() || income <= b.Max {
			return b
		}
	}
	return e.table.Brackets[len(e.table.Brackets)-1]
}

// Rebate returns the total annual rebate for the given age.
func (e *Engine) Rebate(age int) float64 {
	rebate := e.table.PrimaryRebate
	if age >= 65 && age < 75 {
		rebate += e.table.SecondaryRebate
	} else if age >= 75 {
		rebate += e.table.SecondaryRebate + e.table.TertiaryRebate
	}
	return rebate
}

// CalculateAnnualTax returns the annual tax after rebates. Never negative.
func (e *Engine) CalculateAnnualTax(annualTaxableIncome float64, age int) float64 {
	if math.IsNaN(annualTaxableIncome) {
		return 0
	}
	tax := e.BracketFor(annualTaxableIncome).Tax(annualTaxableIncome)
	return math.Max(0, tax-e.Rebate(age))
}

// CalculateNetSalary derives monthly tax, UIF and net salary from a gross
// salary. A non-positive gross yields the zero Breakdown.
func (e *Engine) CalculateNetSalary(gross float64, age int, opts ...Option) Breakdown {
	return e.calculate(gross, age, ResolveOptions(opts...))
}

func (e *Engine) calculate(gross float64, age int, d Deductions) Breakdown {
	if math.IsNaN(gross) || math.IsInf(gross, 0) || gross <= 0 {
		return Breakdown{}
	}

	periods := 12.0
	if d.Annual {
		periods = 1
	}

	annualGross := gross * periods
	annualPension := d.Pension * periods
	annualTravel := d.TravelAllowance * e.table.TravelTaxable * periods
	taxable := annualGross - annualPension - annualTravel

	monthlyTax := e.CalculateAnnualTax(taxable, age) / 12
	uif := math.Min(gross*e.table.UIFRate, e.table.UIFCap)

	return Breakdown{
		GrossSalary: gross,
		Tax:         monthlyTax,
		UIF:         uif,
		NetSalary:   gross - monthlyTax - uif - d.Pension,
	}
}

const (
	inverseTolerance  = 1e-6
	inverseIterations = 200
)

// GrossForNet returns the gross salary whose net salary equals net, with the
// same deductions applied. It inverts CalculateNetSalary numerically.
func (e *Engine) GrossForNet(net float64, age int, opts ...Option) float64 {
	if math.IsNaN(net) || math.IsInf(net, 0) || net <= 0 {
		return 0
	}
	d := ResolveOptions(opts...)
	netOf := func(gross float64) float64 { return e.calculate(gross, age, d).NetSalary }

	lo, hi := 0.0, net+d.Pension
	for i := 0; netOf(hi) < net && i < 64; i++ {
		lo = hi
		hi *= 2
	}
	for i := 0; i < inverseIterations && hi-lo > inverseTolerance; i++ {
		mid := (lo + hi) / 2
		if netOf(mid) < net {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
