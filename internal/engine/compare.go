package engine

import (
	"fmt"

	"github.com/roach88/fixpoint/internal/record"
)

// MismatchKind categorizes a comparison discrepancy.
type MismatchKind string

const (
	// MismatchTableOnlyInDatabase: the table has rows in the database but
	// no entry in the fixpoint.
	MismatchTableOnlyInDatabase MismatchKind = "TABLE_ONLY_IN_DATABASE"

	// MismatchTableOnlyInFixpoint: the fixpoint has the table but the
	// database has no rows for it.
	MismatchTableOnlyInFixpoint MismatchKind = "TABLE_ONLY_IN_FIXPOINT"

	// MismatchRowSet: the table exists on both sides but the masked row
	// sequences differ.
	MismatchRowSet MismatchKind = "ROW_SET_MISMATCH"
)

// Mismatch is one itemized comparison discrepancy. Mismatches are normal
// comparison output, not engine failures; callers decide how to present
// them (typically one test assertion failure per table).
type Mismatch struct {
	Kind   MismatchKind
	Table  string
	Detail string
}

func (m Mismatch) String() string {
	switch m.Kind {
	case MismatchTableOnlyInDatabase:
		return fmt.Sprintf("table %q: present in database but not in fixpoint", m.Table)
	case MismatchTableOnlyInFixpoint:
		return fmt.Sprintf("table %q: present in fixpoint but not in database", m.Table)
	default:
		return fmt.Sprintf("table %q: %s", m.Table, m.Detail)
	}
}

// Compare checks a database state against a fixpoint state table by table.
//
// tables selects which tables to check; nil or empty means all, computed as
// the union of table names present on either side. The ignore set is applied
// to every row on both sides before comparison, so volatile columns never
// produce spurious diffs. Row sequences are compared for exact ordered
// equality; row read order is assumed stable and reproducible.
//
// Because stored artifacts never contain empty tables, a zero-row table is
// treated as absent on either side: absence is meaningful, not an
// empty-vs-missing ambiguity.
//
// Compare is read-only over both inputs and returns every mismatch in one
// pass rather than failing fast.
func Compare(dbState, fixpointState record.State, tables []string, ignore record.IgnoreSet) []Mismatch {
	if len(tables) == 0 {
		tables = unionTableNames(dbState, fixpointState)
	}

	var mismatches []Mismatch
	for _, name := range tables {
		dbRows, inDB := presentRows(dbState, name)
		fpRows, inFP := presentRows(fixpointState, name)

		switch {
		case inDB && !inFP:
			mismatches = append(mismatches, Mismatch{Kind: MismatchTableOnlyInDatabase, Table: name})
		case !inDB && inFP:
			mismatches = append(mismatches, Mismatch{Kind: MismatchTableOnlyInFixpoint, Table: name})
		case inDB && inFP:
			if m, ok := compareRows(name, dbRows, fpRows, ignore); !ok {
				mismatches = append(mismatches, m)
			}
		}
	}
	return mismatches
}

// presentRows returns a table's rows and whether the table counts as present.
func presentRows(state record.State, name string) ([]record.Row, bool) {
	rows, ok := state[name]
	return rows, ok && len(rows) > 0
}

func compareRows(table string, dbRows, fpRows []record.Row, ignore record.IgnoreSet) (Mismatch, bool) {
	if len(dbRows) != len(fpRows) {
		return Mismatch{
			Kind:   MismatchRowSet,
			Table:  table,
			Detail: fmt.Sprintf("row count %d in database, %d in fixpoint", len(dbRows), len(fpRows)),
		}, false
	}
	for i := range dbRows {
		if !dbRows[i].Mask(ignore).Equal(fpRows[i].Mask(ignore)) {
			return Mismatch{
				Kind:   MismatchRowSet,
				Table:  table,
				Detail: fmt.Sprintf("first difference at row %d of %d", i, len(dbRows)),
			}, false
		}
	}
	return Mismatch{}, true
}

// unionTableNames merges both sides' table names into one canonically ordered
// list, counting only tables that are present (non-empty) somewhere.
func unionTableNames(a, b record.State) []string {
	merged := make(record.State, len(a)+len(b))
	for name, rows := range a {
		if len(rows) > 0 {
			merged[name] = rows
		}
	}
	for name, rows := range b {
		if len(rows) > 0 {
			merged[name] = rows
		}
	}
	return merged.TableNames()
}
