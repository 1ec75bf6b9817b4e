// Package store persists fixpoint artifacts as files, one artifact per
// storage unit, named by the artifact's lookup key.
//
// # Format
//
// An artifact is encoded as JSON Lines for version-control friendliness:
// the first line is a header naming the fixpoint and its optional parent,
// every following line is one row tagged with its table name. Rows are
// grouped by table, tables in canonical name order, rows in capture order.
// A change to one row therefore diffs as a one-line change.
//
//	{"fixpoint":"v2","parent":"v1"}
//	{"table":"users","row":{"id":1,"name":"ada"}}
//	{"table":"users","row":{"id":2,"name":"bob"}}
//
// Encoding is a deterministic function of artifact content: identical content
// yields byte-identical files.
//
// # Invariants
//
// Zero-row tables are stripped before writing, so the presence of a table
// name in a stored artifact implies at least one row. Writes are atomic
// (temp file, fsync, rename). Save is an unconditional write; the
// no-overwrite policy for existing artifacts belongs to the calling
// workflow, which checks Exists first.
package store
