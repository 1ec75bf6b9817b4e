package record

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Field is one (column, value) pair of a row.
type Field struct {
	Column string
	Value  Value
}

// Row is an ordered sequence of fields, held in canonical column order.
// Build rows with NewRow so normalization invariants hold.
type Row []Field

// NewRow builds a normalized row: column names NFC-normalized, fields sorted
// into canonical order. The source's column ordering does not matter.
func NewRow(fields ...Field) Row {
	row := make(Row, len(fields))
	for i, f := range fields {
		row[i] = Field{Column: normalizeColumn(f.Column), Value: f.Value}
	}
	row.sort()
	return row
}

// F is a shorthand field constructor for ergonomic row building.
// Example: NewRow(F("id", Int(1)), F("name", String("ada")))
func F(column string, v Value) Field {
	return Field{Column: column, Value: v}
}

func (r Row) sort() {
	slices.SortFunc(r, func(a, b Field) int {
		return compareColumns(a.Column, b.Column)
	})
}

// Columns returns the row's column names in canonical order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// Get returns the value for a column, or false if the column is absent.
func (r Row) Get(column string) (Value, bool) {
	column = normalizeColumn(column)
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Mask returns a copy of the row with ignored columns removed.
// With an empty ignore set the row is returned unchanged.
func (r Row) Mask(ignore IgnoreSet) Row {
	if len(ignore) == 0 {
		return r
	}
	masked := make(Row, 0, len(r))
	for _, f := range r {
		if ignore.Contains(f.Column) {
			continue
		}
		masked = append(masked, f)
	}
	return masked
}

// Equal reports whether two rows have identical column sets and values.
// Both rows are assumed normalized, so positional comparison suffices.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i, f := range r {
		if f.Column != other[i].Column {
			return false
		}
		if !ValuesEqual(f.Value, other[i].Value) {
			return false
		}
	}
	return true
}

// IgnoreSet is a set of column names excluded from comparison.
// It is applied identically to both sides of a comparison, so volatile audit
// columns never cause spurious diffs.
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds an ignore set from column names.
func NewIgnoreSet(columns ...string) IgnoreSet {
	set := make(IgnoreSet, len(columns))
	for _, c := range columns {
		set[normalizeColumn(c)] = struct{}{}
	}
	return set
}

// Contains reports whether a column is ignored.
func (s IgnoreSet) Contains(column string) bool {
	_, ok := s[normalizeColumn(column)]
	return ok
}

// InvalidRowError reports a row whose column set is inconsistent with the
// table it belongs to.
type InvalidRowError struct {
	Table    string
	RowIndex int
	Reason   string
}

func (e *InvalidRowError) Error() string {
	return fmt.Sprintf("invalid row %d in table %q: %s", e.RowIndex, e.Table, e.Reason)
}

// normalizeColumn maps a column identifier to its NFC form, so the same
// logical identifier read from different drivers compares equal.
func normalizeColumn(column string) string {
	return norm.NFC.String(column)
}
