package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   float64  `json:"amount"`
}

// SalaryState holds the gross salary and the figures derived from it.
type SalaryState struct {
	GrossSalary float64    `json:"grossSalary"`
	AgeBracket  AgeBracket `json:"ageBracket"`
	NetSalary   float64    `json:"netSalary"`
	Tax         float64    `json:"tax"`
	UIF         float64    `json:"uif"`
}

// Snapshot is the read model handed to callers. It never aliases ledger state.
type Snapshot struct {
	Expenses      []Expense        `json:"expenses"`
	Incomes       []Income         `json:"additionalIncomes"`
	Salary        SalaryState      `json:"salary"`
	TaxEnabled    bool             `json:"taxEnabled"`
	TotalIncome   float64          `json:"totalIncome"`
	TotalExpenses float64          `json:"totalExpenses"`
	Balance       float64          `json:"balance"`
	Analysis      []string         `json:"analysis"`
	ByCategory    []CategoryAmount `json:"byCategory"`
}
