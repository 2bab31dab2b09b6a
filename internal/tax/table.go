// Package tax computes monthly net salary from gross salary using a
// progressive bracket table, age-based rebates and the UIF levy.
package tax

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Bracket is one progressive tax band covering annual income in (Min, Max].
// Max is zero for the open-ended top band.
type Bracket struct {
	Min  float64 `toml:"min" json:"min"`
	Max  float64 `toml:"max" json:"max"`
	Rate float64 `toml:"rate" json:"rate"`
	Base float64 `toml:"base" json:"base"`
}

// Thresholds are the annual incomes below which no tax is payable per age group.
type Thresholds struct {
	Under65 float64 `toml:"under65" json:"under65"`
	Under75 float64 `toml:"under75" json:"under75"`
	Over75  float64 `toml:"over75" json:"over75"`
}

// Table is the full set of constants the engine works from.
type Table struct {
	Brackets        []Bracket  `toml:"brackets" json:"brackets"`
	Thresholds      Thresholds `toml:"thresholds" json:"thresholds"`
	PrimaryRebate   float64    `toml:"primary_rebate" json:"primaryRebate"`
	SecondaryRebate float64    `toml:"secondary_rebate" json:"secondaryRebate"`
	TertiaryRebate  float64    `toml:"tertiary_rebate" json:"tertiaryRebate"`
	UIFRate         float64    `toml:"uif_rate" json:"uifRate"`
	UIFCap          float64    `toml:"uif_cap" json:"uifCap"`
	TravelTaxable   float64    `toml:"travel_taxable_fraction" json:"travelTaxableFraction"`
}

const (
	PrimaryRebate   = 17235
	SecondaryRebate = 9444 // Age 65-74
	TertiaryRebate  = 3145 // Age 75+
	UIFRate         = 0.01
	UIFCap          = 177.12
	TravelTaxable   = 0.2
)

var ErrInvalidTable = errors.New("invalid tax table")

// DefaultBrackets returns the built-in bracket table.
func DefaultBrackets() []Bracket {
	return []Bracket{
		{Min: 0, Max: 237100, Rate: 0.18, Base: 0},
		{Min: 237101, Max: 370500, Rate: 0.26, Base: 42678},
		{Min: 370501, Max: 512800, Rate: 0.31, Base: 77362},
		{Min: 512801, Max: 673000, Rate: 0.36, Base: 121475},
		{Min: 673001, Max: 857900, Rate: 0.39, Base: 179147},
		{Min: 857901, Max: 1817000, Rate: 0.41, Base: 251258},
		{Min: 1817001, Max: 0, Rate: 0.45, Base: 644489},
	}
}

func DefaultThresholds() Thresholds {
	return Thresholds{Under65: 95750, Under75: 148217, Over75: 165689}
}

func DefaultTable() Table {
	return Table{
		Brackets:        DefaultBrackets(),
		Thresholds:      DefaultThresholds(),
		PrimaryRebate:   PrimaryRebate,
		SecondaryRebate: SecondaryRebate,
		TertiaryRebate:  TertiaryRebate,
		UIFRate:         UIFRate,
		UIFCap:          UIFCap,
		TravelTaxable:   TravelTaxable,
	}
}

// Unbounded reports whether the bracket is the open-ended top band.
func (b Bracket) Unbounded() bool {
	return b.Max == 0
}

// Contains reports whether income falls in (Min, Max].
func (b Bracket) Contains(income float64) bool {
	return income > b.Min && (b.Unbounded() || income <= b.Max)
}

// Tax is the bracket's formula applied to income, without rebates. Incomes
// at or below Min pay the bracket base.
func (b Bracket) Tax(income float64) float64 {
	if income <= b.Min {
		return b.Base
	}
	return b.Base + b.Rate*(income-b.Min)
}

// Threshold returns the tax-free annual income for the given age.
func (t Table) Threshold(age int) float64 {
	switch {
	case age >= 75:
		return t.Thresholds.Over75
	case age >= 65:
		return t.Thresholds.Under75
	default:
		return t.Thresholds.Under65
	}
}

// Validate checks that brackets are ordered, contiguous and end open-ended.
func (t Table) Validate() error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%w: no brackets", ErrInvalidTable)
	}
	for i, b := range t.Brackets {
		if b.Rate < 0 || b.Rate >= 1 {
			return fmt.Errorf("%w: bracket %d rate %v out of range", ErrInvalidTable, i, b.Rate)
		}
		last := i == len(t.Brackets)-1
		if last != b.Unbounded() {
			return fmt.Errorf("%w: only the last bracket may be unbounded (bracket %d)", ErrInvalidTable, i)
		}
		if !b.Unbounded() && b.Max <= b.Min {
			return fmt.Errorf("%w: bracket %d max %v not above min %v", ErrInvalidTable, i, b.Max, b.Min)
		}
		if i == 0 {
			continue
		}
		prev := t.Brackets[i-1]
		if b.Min <= prev.Max || b.Min > prev.Max+1 {
			return fmt.Errorf("%w: bracket %d min %v does not follow max %v", ErrInvalidTable, i, b.Min, prev.Max)
		}
		if b.Base < prev.Base {
			return fmt.Errorf("%w: bracket %d base decreases", ErrInvalidTable, i)
		}
	}
	if t.PrimaryRebate < 0 || t.SecondaryRebate < 0 || t.TertiaryRebate < 0 {
		return fmt.Errorf("%w: negative rebate", ErrInvalidTable)
	}
	if t.UIFRate < 0 || t.UIFCap < 0 {
		return fmt.Errorf("%w: negative UIF settings", ErrInvalidTable)
	}
	if t.TravelTaxable < 0 || t.TravelTaxable > 1 {
		return fmt.Errorf("%w: travel taxable fraction %v out of range", ErrInvalidTable, t.TravelTaxable)
	}
	return nil
}

// tableFile mirrors Table with optional fields so a file may override a subset.
type tableFile struct {
	Brackets        []Bracket   `toml:"brackets"`
	Thresholds      *Thresholds `toml:"thresholds"`
	PrimaryRebate   *float64    `toml:"primary_rebate"`
	SecondaryRebate *float64    `toml:"secondary_rebate"`
	TertiaryRebate  *float64    `toml:"tertiary_rebate"`
	UIFRate         *float64    `toml:"uif_rate"`
	UIFCap          *float64    `toml:"uif_cap"`
	TravelTaxable   *float64    `toml:"travel_taxable_fraction"`
}

// LoadTable reads a TOML tax table. Fields absent from the file keep their
// built-in values; an empty path returns the built-in table.
func LoadTable(path string) (Table, error) {
	t := DefaultTable()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tax table: %w", err)
	}

	var f tableFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return t, fmt.Errorf("parse tax table: %w", err)
	}

	if len(f.Brackets) > 0 {
		t.Brackets = f.Brackets
	}
	if f.Thresholds != nil {
		t.Thresholds = *f.Thresholds
	}
	setIf(&t.PrimaryRebate, f.PrimaryRebate)
	setIf(&t.SecondaryRebate, f.SecondaryRebate)
	setIf(&t.TertiaryRebate, f.TertiaryRebate)
	setIf(&t.UIFRate, f.UIFRate)
	setIf(&t.UIFCap, f.UIFCap)
	setIf(&t.TravelTaxable, f.TravelTaxable)

	if err := t.Validate(); err != nil {
		return DefaultTable(), err
	}
	return t, nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// WriteTable encodes t as TOML, the format LoadTable reads.
func WriteTable(path string, t Table) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create tax table: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(t); err != nil {
		return fmt.Errorf("encode tax table: %w", err)
	}
	return nil
}
