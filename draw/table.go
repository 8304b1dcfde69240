package draw

import (
	"fmt"
	"math"

	"prizedraw/models"
)

// Table is a validated, immutable weighted prize table.
// Entries keep their declared order; the order defines the interval layout.
type Table struct {
	entries []models.PrizeEntry
	total   float64
}

// NewTable validates entries and builds a table.
// Malformed tables are rejected here so that Draw never has to fail.
func NewTable(entries []models.PrizeEntry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidTable)
	}

	seen := make(map[string]struct{}, len(entries))
	var total float64
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidTable, i)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidTable, e.ID)
		}
		seen[e.ID] = struct{}{}

		if !e.Kind.Valid() {
			return nil, fmt.Errorf("%w: entry %q has unknown kind %q", ErrInvalidTable, e.ID, e.Kind)
		}
		if err := validateValue(e); err != nil {
			return nil, err
		}
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return nil, fmt.Errorf("%w: entry %q has non-finite weight", ErrInvalidTable, e.ID)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("%w: entry %q has negative weight %v", ErrInvalidTable, e.ID, e.Weight)
		}
		total += e.Weight
	}

	if total <= 0 {
		return nil, fmt.Errorf("%w: all weights are zero", ErrInvalidTable)
	}
	if math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: weight sum overflows", ErrInvalidTable)
	}

	copied := make([]models.PrizeEntry, len(entries))
	copy(copied, entries)

	return &Table{entries: copied, total: total}, nil
}

// validateValue checks an entry's value against its kind: a discount is a
// percentage in [0, 100], a bonus is a whole number of bits, and jackpots
// and empty slots carry no value.
func validateValue(e models.PrizeEntry) error {
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return fmt.Errorf("%w: entry %q has non-finite value", ErrInvalidTable, e.ID)
	}
	if e.Value < 0 {
		return fmt.Errorf("%w: entry %q has negative value %v", ErrInvalidTable, e.ID, e.Value)
	}

	switch e.Kind {
	case models.PrizeKindDiscount:
		if e.Value > 100 {
			return fmt.Errorf("%w: discount %q exceeds 100%%", ErrInvalidTable, e.ID)
		}
	case models.PrizeKindBonus:
		if e.Value != math.Trunc(e.Value) {
			return fmt.Errorf("%w: bonus %q must be a whole number of bits, got %v", ErrInvalidTable, e.ID, e.Value)
		}
	case models.PrizeKindJackpot, models.PrizeKindNothing:
		if e.Value != 0 {
			return fmt.Errorf("%w: %s entry %q must have value 0, got %v", ErrInvalidTable, e.Kind, e.ID, e.Value)
		}
	}
	return nil
}

// Entries returns a copy of the table entries in declared order
func (t *Table) Entries() []models.PrizeEntry {
	out := make([]models.PrizeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Total returns the sum of all weights
func (t *Table) Total() float64 {
	return t.total
}

// Probability returns weight/total for the entry with the given id
func (t *Table) Probability(id string) (float64, bool) {
	for _, e := range t.entries {
		if e.ID == id {
			return e.Weight / t.total, true
		}
	}
	return 0, false
}

// Select maps an absolute point r in [0, Total()) to an entry.
// Each entry owns the half-open interval [cumulative before, cumulative after).
// If floating point drift leaves r uncovered, the last entry is returned.
func (t *Table) Select(r float64) models.PrizeEntry {
	var cumulative float64
	for _, e := range t.entries {
		cumulative += e.Weight
		if cumulative > r {
			return e
		}
	}
	return t.entries[len(t.entries)-1]
}

// Draw selects an entry using a uniform value from rnd scaled by the weight total
func (t *Table) Draw(rnd RandomSource) models.PrizeEntry {
	return t.Select(clampUnit(rnd()) * t.total)
}
