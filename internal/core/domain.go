package core

import (
	"errors"
	"math"
	"strings"
)

const (
	Housing        Category = "housing"
	Transportation Category = "transportation"
	Food           Category = "food"
	Utilities      Category = "utilities"
	Healthcare     Category = "healthcare"
	Entertainment  Category = "entertainment"
	Other          Category = "other"
)

const (
	Under65    AgeBracket = "under65"
	From65To74 AgeBracket = "65to74"
	From75     AgeBracket = "75andOver"
)

// maxNameLength bounds free-text fields entered by the user.
const maxNameLength = 200

type (
	Category string

	AgeBracket string

	SubExpense struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	Expense struct {
		ID          string       `json:"id"`
		Name        string       `json:"name"`
		Amount      float64      `json:"amount"`
		Category    Category     `json:"category"`
		SubExpenses []SubExpense `json:"subExpenses"`
	}

	Income struct {
		ID     string  `json:"id"`
		Source string  `json:"source"`
		Amount float64 `json:"amount"`
	}

	// Grocery is an entry of the shopping list that shares the ledger record.
	Grocery struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptySource       = errors.New("empty income source")
	ErrNameTooLong       = errors.New("name too long (max 200 characters)")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidAgeBracket = errors.New("invalid age bracket")
	ErrInvalidQuantity   = errors.New("invalid quantity")
)

// Categories returns every category in display and analysis order.
func Categories() []Category {
	return []Category{Housing, Transportation, Food, Utilities, Healthcare, Entertainment, Other}
}

func (c Category) IsValid() bool {
	switch c {
	case Housing, Transportation, Food, Utilities, Healthcare, Entertainment, Other:
		return true
	default:
		return false
	}
}

// ParseCategory validates user input against the known categories.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// NormalizeCategory maps unknown stored values to Other.
func NormalizeCategory(s string) Category {
	c, err := ParseCategory(s)
	if err != nil {
		return Other
	}
	return c
}

func (b AgeBracket) IsValid() bool {
	switch b {
	case Under65, From65To74, From75:
		return true
	default:
		return false
	}
}

// RepresentativeAge returns the age fed to the tax engine for the bracket.
func (b AgeBracket) RepresentativeAge() int {
	switch b {
	case From65To74:
		return 65
	case From75:
		return 75
	default:
		return 30
	}
}

func ParseAgeBracket(s string) (AgeBracket, error) {
	b := AgeBracket(strings.TrimSpace(s))
	if !b.IsValid() {
		return "", ErrInvalidAgeBracket
	}
	return b, nil
}

// SafeAmount treats NaN and infinities as zero so they never leak into totals.
func SafeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func validAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validName(s string, empty error) error {
	if strings.TrimSpace(s) == "" {
		return empty
	}
	if len(s) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func (s SubExpense) Validate() error {
	if err := validName(s.Name, ErrEmptyName); err != nil {
		return err
	}
	return validAmount(s.Amount)
}

func (e Expense) Validate() error {
	if err := validName(e.Name, ErrEmptyName); err != nil {
		return err
	}
	if err := validAmount(e.Amount); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

// Total is the expense amount plus all of its sub-expenses.
func (e Expense) Total() float64 {
	total := SafeAmount(e.Amount)
	for _, s := range e.SubExpenses {
		total += SafeAmount(s.Amount)
	}
	return total
}

// Clone returns a copy that shares no memory with e.
func (e Expense) Clone() Expense {
	out := e
	out.SubExpenses = make([]SubExpense, len(e.SubExpenses))
	copy(out.SubExpenses, e.SubExpenses)
	return out
}

func (i Income) Validate() error {
	if err := validName(i.Source, ErrEmptySource); err != nil {
		return err
	}
	return validAmount(i.Amount)
}

func (g Grocery) Validate() error {
	if err := validName(g.Name, ErrEmptyName); err != nil {
		return err
	}
	if g.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}
