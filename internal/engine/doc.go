// Package engine implements the fixpoint delta and comparison algorithms.
//
// # Delta
//
// ComputeDelta captures a full database state as an artifact. Against a
// parent, only tables whose complete row sequence differs from the parent's
// materialized state are included; identical tables are omitted and
// implicitly inherited at materialize time.
//
// # Materialization
//
// Materialize resolves an artifact's parent chain from root to leaf, folding
// each level's table snapshots onto the running state. The merge rule is full
// per-table replacement: a child-level snapshot of a table replaces the
// parent's rows for that table outright. Chains are finite and acyclic;
// cycles are detected and reported rather than looped on.
//
// # Comparison
//
// Compare checks two materialized states table by table with column masking.
// It is pure and never fails fast: the complete mismatch list comes back in
// one pass so a caller can report every discrepancy at once. Mismatches are
// data, not errors.
package engine
