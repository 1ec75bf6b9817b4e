package engine

import (
	"fmt"

	"github.com/roach88/fixpoint/internal/record"
)

// Loader resolves artifact names to artifacts. *store.Store satisfies it;
// tests substitute in-memory fakes.
type Loader interface {
	Load(name string) (*record.Artifact, error)
}

// ComputeDelta builds the artifact representing state relative to an
// optional parent.
//
// Without a parent the artifact carries the full state: every non-empty
// table, unfiltered by any ignore set — the stored artifact must be complete
// enough to reconstruct real database rows, so masking happens at comparison
// time, not capture time.
//
// With a parent, the parent chain is fully materialized first and only the
// tables whose row sequence differs are included; identical tables are
// omitted and inherited at materialize time. A missing parent surfaces the
// loader's not-found error.
//
// Zero-row tables are never included. A table the parent has but the state
// lacks (or has emptied) is not representable as a delta and materializes
// back to the parent's rows; truncating a table requires a fresh root
// snapshot.
func ComputeDelta(name string, state record.State, parent string, loader Loader) (*record.Artifact, error) {
	artifact := &record.Artifact{Name: name, Parent: parent}

	var parentState record.State
	if parent != "" {
		parentArtifact, err := loader.Load(parent)
		if err != nil {
			return nil, fmt.Errorf("compute delta for %q: %w", name, err)
		}
		parentState, err = Materialize(parentArtifact, loader)
		if err != nil {
			return nil, fmt.Errorf("compute delta for %q: %w", name, err)
		}
	}

	for _, tableName := range state.TableNames() {
		rows := state[tableName]
		if len(rows) == 0 {
			continue
		}
		if parent != "" && record.RowsEqual(rows, parentState[tableName]) {
			continue
		}
		table := record.Table{Name: tableName, Rows: rows}
		if err := table.Validate(); err != nil {
			return nil, fmt.Errorf("compute delta for %q: %w", name, err)
		}
		artifact.Tables = append(artifact.Tables, table)
	}
	return artifact, nil
}

// Materialize resolves an artifact's parent chain into the complete state it
// represents. The chain is walked leaf to root, then folded root to leaf with
// each level's tables replacing the previous level's rows for that table.
//
// Returns a CyclicChainError if the chain loops; a missing chain link
// surfaces the loader's not-found error.
func Materialize(artifact *record.Artifact, loader Loader) (record.State, error) {
	chain, err := resolveChain(artifact, loader)
	if err != nil {
		return nil, err
	}

	state := make(record.State)
	// chain is leaf-first; fold from the root forward.
	for i := len(chain) - 1; i >= 0; i-- {
		for _, table := range chain[i].Tables {
			if len(table.Rows) == 0 {
				continue
			}
			state[table.Name] = table.Rows
		}
	}
	return state, nil
}

// resolveChain collects the artifact and its ancestors in leaf-to-root order,
// detecting cycles by name.
func resolveChain(artifact *record.Artifact, loader Loader) ([]*record.Artifact, error) {
	chain := []*record.Artifact{artifact}
	seen := map[string]bool{artifact.Name: true}

	current := artifact
	for current.Parent != "" {
		if seen[current.Parent] {
			names := make([]string, 0, len(chain)+1)
			for _, a := range chain {
				names = append(names, a.Name)
			}
			names = append(names, current.Parent)
			return nil, &CyclicChainError{Chain: names}
		}
		parent, err := loader.Load(current.Parent)
		if err != nil {
			return nil, fmt.Errorf("resolve parent of %q: %w", current.Name, err)
		}
		seen[parent.Name] = true
		chain = append(chain, parent)
		current = parent
	}
	return chain, nil
}
