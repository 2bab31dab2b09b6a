package ledger

import (
	"reflect"
	"testing"

	"budget/internal/core"
)

func TestAnalyze(t *testing.T) {
	const (
		overspend     = "⚠️ Your expenses exceed your income. This is unsustainable long-term."
		overspendHint = "💡 Consider reducing non-essential expenses or finding additional income sources."
		deficit       = "🚨 You're in a deficit spending situation."
		belowTarget   = "⚠️ Your savings rate is below recommended levels (20%)."
		belowHint     = "💡 Try to increase your savings by reducing discretionary spending."
		healthy       = "👍 Good job! You're saving at a healthy rate."
		excellent     = "🌟 Excellent savings rate! Consider investing your surplus."
	)

	tests := []struct {
		name       string
		income     float64
		expenses   float64
		byCategory []core.CategoryAmount
		want       []string
	}{
		{
			name: "no income no expenses",
			want: []string{belowTarget, belowHint},
		},
		{
			name:     "overspending",
			income:   1000,
			expenses: 1500,
			want:     []string{overspend, overspendHint, deficit},
		},
		{
			name:     "expenses without income skip category checks",
			expenses: 500,
			byCategory: []core.CategoryAmount{
				{Category: core.Housing, Amount: 500},
			},
			want: []string{overspend, overspendHint, belowTarget, belowHint},
		},
		{
			name:     "exactly twenty percent saved",
			income:   10000,
			expenses: 8000,
			want:     []string{healthy},
		},
		{
			name:     "exactly thirty percent saved",
			income:   10000,
			expenses: 7000,
			want:     []string{excellent},
		},
		{
			name:     "housing at exactly thirty percent is not flagged",
			income:   10000,
			expenses: 3000,
			byCategory: []core.CategoryAmount{
				{Category: core.Housing, Amount: 3000},
			},
			want: []string{excellent},
		},
		{
			name:     "category checks in fixed order",
			income:   10000,
			expenses: 9000,
			byCategory: []core.CategoryAmount{
				{Category: core.Housing, Amount: 3500},
				{Category: core.Food, Amount: 2000},
				{Category: core.Utilities, Amount: 2000},
				{Category: core.Entertainment, Amount: 1500},
			},
			want: []string{
				belowTarget,
				belowHint,
				"⚠️ Housing expenses (35.0%) exceed recommended 30% of income.",
				"💡 Consider reducing food expenses (20.0% of income).",
				"💡 Entertainment spending (15.0%) could be reduced.",
			},
		},
		{
			name:     "entertainment at exactly ten percent",
			income:   10000,
			expenses: 1000,
			byCategory: []core.CategoryAmount{
				{Category: core.Entertainment, Amount: 1000},
			},
			want: []string{excellent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyze(tt.income, tt.expenses, tt.byCategory)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("analyze() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestSavingsRate(t *testing.T) {
	if got := SavingsRate(0, 100); got != 0 {
		t.Errorf("SavingsRate(0, 100) = %v, want 0", got)
	}
	if got := SavingsRate(1000, 750); got != 25 {
		t.Errorf("SavingsRate(1000, 750) = %v, want 25", got)
	}
}
