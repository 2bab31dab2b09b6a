package ledger

import (
	"fmt"

	"budget/internal/core"
)

const (
	healthySavingsRate   = 20.0
	excellentSavingsRate = 30.0
)

// categoryLimit is the share of total income above which a category is flagged.
type categoryLimit struct {
	category core.Category
	percent  float64
	message  string
}

var categoryLimits = []categoryLimit{
	{core.Housing, 30, "⚠️ Housing expenses (%s) exceed recommended 30%% of income."},
	{core.Food, 15, "💡 Consider reducing food expenses (%s of income)."},
	{core.Entertainment, 10, "💡 Entertainment spending (%s) could be reduced."},
}

// Analyze returns the budget observations in a fixed order: income against
// expenses, then the savings-rate tier, then per-category checks.
func (l *Ledger) Analyze() []string {
	return analyze(l.TotalIncome(), l.TotalExpenses(), l.CategoryTotals())
}

func analyze(totalIncome, totalExpenses float64, byCategory []core.CategoryAmount) []string {
	analysis := []string{}

	if totalExpenses > totalIncome {
		analysis = append(analysis,
			"⚠️ Your expenses exceed your income. This is unsustainable long-term.",
			"💡 Consider reducing non-essential expenses or finding additional income sources.")
	}

	switch rate := SavingsRate(totalIncome, totalExpenses); {
	case rate < 0:
		analysis = append(analysis, "🚨 You're in a deficit spending situation.")
	case rate < healthySavingsRate:
		analysis = append(analysis,
			"⚠️ Your savings rate is below recommended levels (20%).",
			"💡 Try to increase your savings by reducing discretionary spending.")
	case rate < excellentSavingsRate:
		analysis = append(analysis, "👍 Good job! You're saving at a healthy rate.")
	default:
		analysis = append(analysis, "🌟 Excellent savings rate! Consider investing your surplus.")
	}

	if totalIncome <= 0 {
		return analysis
	}

	totals := make(map[core.Category]float64, len(byCategory))
	for _, c := range byCategory {
		totals[c.Category] = c.Amount
	}
	for _, limit := range categoryLimits {
		amount, ok := totals[limit.category]
		if !ok {
			continue
		}
		pct := amount / totalIncome * 100
		if pct > limit.percent {
			analysis = append(analysis, fmt.Sprintf(limit.message, core.FormatPercent(pct)))
		}
	}
	return analysis
}

// SavingsRate is the balance as a percentage of income, or 0 without income.
func SavingsRate(totalIncome, totalExpenses float64) float64 {
	if totalIncome <= 0 {
		return 0
	}
	return (totalIncome - totalExpenses) / totalIncome * 100
}
