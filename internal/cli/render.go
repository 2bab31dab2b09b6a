package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"budget/internal/core"
	"budget/internal/tax"
)

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	dimStyle    = lipgloss.NewStyle().Foreground(colorBorder)
	goodStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	badStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// Table is a bordered text table. The first column is left-aligned and the
// rest right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(48).
		Align(lipgloss.Center).
		Render(titleStyle.Render(title))
}

func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < numCols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right) + "\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i == 0 {
				b.WriteString(style.Render(" " + cell + pad + " "))
			} else {
				b.WriteString(style.Render(" " + pad + cell + " "))
			}
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│") + "\n")
	}

	rule("╭", "┬", "╮")
	line(t.Headers, headerStyle)
	rule("├", "┼", "┤")
	for _, row := range t.Rows {
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// RenderSnapshot renders the whole ledger. Expenses and incomes are numbered
// from 1 so the numbers can be passed back to the rm commands.
func RenderSnapshot(s core.Snapshot) string {
	var b strings.Builder
	b.WriteString(RenderTitle("BUDGET") + "\n\n")

	mode := "net (tax on)"
	if !s.TaxEnabled {
		mode = "gross (tax off)"
	}
	b.WriteString(RenderTable(Table{
		Title:   "Salary",
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Gross", core.FormatRand(s.Salary.GrossSalary)},
			{"Tax", core.FormatRand(s.Salary.Tax)},
			{"UIF", core.FormatRand(s.Salary.UIF)},
			{"Net", core.FormatRand(s.Salary.NetSalary)},
			{"Age bracket", string(s.Salary.AgeBracket)},
			{"Counts as", mode},
		},
	}))

	if len(s.Expenses) == 0 {
		b.WriteString("\n  " + mutedStyle.Render("No expenses.") + "\n")
	} else {
		rows := make([][]string, 0, len(s.Expenses))
		for i, e := range s.Expenses {
			rows = append(rows, []string{strconv.Itoa(i + 1), e.Name, string(e.Category), core.FormatRand(e.Amount), core.FormatRand(e.Total())})
			for j, se := range e.SubExpenses {
				rows = append(rows, []string{fmt.Sprintf("%d.%d", i+1, j+1), "  " + se.Name, "", core.FormatRand(se.Amount), ""})
			}
		}
		b.WriteString("\n" + RenderTable(Table{
			Title:   "Expenses",
			Headers: []string{"#", "Name", "Category", "Amount", "Total"},
			Rows:    rows,
		}))
	}

	if len(s.Incomes) > 0 {
		rows := make([][]string, 0, len(s.Incomes))
		for i, in := range s.Incomes {
			rows = append(rows, []string{strconv.Itoa(i + 1), in.Source, core.FormatRand(in.Amount)})
		}
		b.WriteString("\n" + RenderTable(Table{
			Title:   "Additional income",
			Headers: []string{"#", "Source", "Amount"},
			Rows:    rows,
		}))
	}

	if len(s.ByCategory) > 0 {
		rows := make([][]string, 0, len(s.ByCategory))
		for _, c := range s.ByCategory {
			rows = append(rows, []string{string(c.Category), core.FormatRand(c.Amount)})
		}
		b.WriteString("\n" + RenderTable(Table{
			Title:   "By category",
			Headers: []string{"Category", "Total"},
			Rows:    rows,
		}))
	}

	balance := goodStyle.Render(core.FormatRand(s.Balance))
	if s.Balance < 0 {
		balance = badStyle.Render(core.FormatRand(s.Balance))
	}
	fmt.Fprintf(&b, "\n  Income %s   Expenses %s   Balance %s\n",
		valueStyle.Render(core.FormatRand(s.TotalIncome)),
		valueStyle.Render(core.FormatRand(s.TotalExpenses)),
		balance)

	if len(s.Analysis) > 0 {
		b.WriteString("\n  " + headerStyle.Render("Analysis") + "\n")
		for _, msg := range s.Analysis {
			b.WriteString("  " + msg + "\n")
		}
	}
	return b.String()
}

func RenderBreakdown(br tax.Breakdown) string {
	return RenderTable(Table{
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Gross", core.FormatRand(br.GrossSalary)},
			{"Tax", core.FormatRand(br.Tax)},
			{"UIF", core.FormatRand(br.UIF)},
			{"Net", core.FormatRand(br.NetSalary)},
		},
	})
}

func RenderTaxTable(t tax.Table) string {
	rows := make([][]string, 0, len(t.Brackets))
	for _, br := range t.Brackets {
		upper := core.FormatRand(br.Max)
		if br.Unbounded() {
			upper = "and above"
		}
		rows = append(rows, []string{core.FormatRand(br.Min), upper, core.FormatPercent(br.Rate * 100), core.FormatRand(br.Base)})
	}

	var b strings.Builder
	b.WriteString(RenderTable(Table{
		Title:   "Annual brackets",
		Headers: []string{"From", "To", "Rate", "Base tax"},
		Rows:    rows,
	}))
	b.WriteString("\n" + RenderTable(Table{
		Title:   "Rebates and thresholds",
		Headers: []string{"Age group", "Rebate", "Threshold"},
		Rows: [][]string{
			{"Under 65", core.FormatRand(t.PrimaryRebate), core.FormatRand(t.Thresholds.Under65)},
			{"65 to 74", "+" + core.FormatRand(t.SecondaryRebate), core.FormatRand(t.Thresholds.Under75)},
			{"75 and over", "+" + core.FormatRand(t.TertiaryRebate), core.FormatRand(t.Thresholds.Over75)},
		},
	}))
	fmt.Fprintf(&b, "\n  UIF %s of gross, capped at %s per month\n", core.FormatPercent(t.UIFRate*100), core.FormatRand(t.UIFCap))
	return b.String()
}

func RenderGroceries(items []core.Grocery) string {
	if len(items) == 0 {
		return "  " + mutedStyle.Render("Grocery list is empty.") + "\n"
	}
	rows := make([][]string, 0, len(items))
	for i, g := range items {
		rows = append(rows, []string{strconv.Itoa(i + 1), g.Name, strconv.Itoa(g.Quantity)})
	}
	return RenderTable(Table{
		Title:   "Groceries",
		Headers: []string{"#", "Item", "Qty"},
		Rows:    rows,
	})
}
