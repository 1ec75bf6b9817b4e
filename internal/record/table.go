package record

// Table is a named snapshot of one database table's rows, in read order.
type Table struct {
	Name string
	Rows []Row
}

// Validate checks that every row carries the same column set.
// Rows are normalized, so comparing ordered column slices is sufficient.
func (t Table) Validate() error {
	if len(t.Rows) == 0 {
		return nil
	}
	ref := t.Rows[0].Columns()
	for i, row := range t.Rows[1:] {
		cols := row.Columns()
		if !stringSlicesEqual(ref, cols) {
			return &InvalidRowError{
				Table:    t.Name,
				RowIndex: i + 1,
				Reason:   "column set differs from first row",
			}
		}
	}
	return nil
}

// RowsEqual reports exact sequence equality of two row slices:
// same length, same rows, same order.
func RowsEqual(a, b []Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// State is a fully materialized database state: table name to row sequence.
type State map[string][]Row

// TableNames returns the state's table names in canonical order.
func (s State) TableNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sortColumns(names)
	return names
}

// Clone returns a shallow copy of the state. Row slices are shared; rows are
// never mutated after construction, so sharing is safe.
func (s State) Clone() State {
	out := make(State, len(s))
	for name, rows := range s {
		out[name] = rows
	}
	return out
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
