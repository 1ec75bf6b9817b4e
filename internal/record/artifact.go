package record

import "slices"

// Artifact is a named fixpoint: a snapshot of zero or more tables, optionally
// expressed as a delta against a parent artifact.
//
// The parent is a back-reference by name, resolved through the store at
// materialize time. It is never a live object reference, so chains can be
// loaded lazily and artifacts carry no ownership of their ancestors.
//
// Artifacts are immutable once stored. Updates are expressed as new named
// artifacts or new parent-chain links, never as in-place mutation.
type Artifact struct {
	Name   string
	Parent string // empty for a root (full) snapshot
	Tables []Table
}

// Table returns the named table snapshot, or false if absent.
// Absence is meaningful: empty tables are stripped before persistence, so a
// missing table in a stored artifact means "no rows" (or, under a parent,
// "inherited from the parent").
func (a *Artifact) Table(name string) (Table, bool) {
	for _, t := range a.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// StripEmpty returns a copy of the artifact without zero-row tables.
// Persisted artifacts never contain empty tables.
func (a *Artifact) StripEmpty() *Artifact {
	out := &Artifact{Name: a.Name, Parent: a.Parent}
	for _, t := range a.Tables {
		if len(t.Rows) == 0 {
			continue
		}
		out.Tables = append(out.Tables, t)
	}
	return out
}

// Validate checks every table snapshot for row/column-set consistency.
func (a *Artifact) Validate() error {
	for _, t := range a.Tables {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SortedTables returns the artifact's tables ordered canonically by name.
// The codec encodes in this order so identical content yields identical bytes.
func (a *Artifact) SortedTables() []Table {
	tables := make([]Table, len(a.Tables))
	copy(tables, a.Tables)
	slices.SortFunc(tables, func(x, y Table) int {
		return compareColumns(x.Name, y.Name)
	})
	return tables
}
