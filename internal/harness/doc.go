// Package harness exposes the fixpoint engine's caller-facing operations:
// capture a database into a named artifact, replay an artifact into a
// database, and compare an artifact against a database's current state.
//
// The harness wires the store, engine, and bridge together for test-suite
// use. Two policies live here rather than in the lower layers:
//
//   - SaveNew refuses to overwrite an existing artifact, so re-running a
//     suite never churns stored baselines with volatile fields. The
//     low-level store stays capable of unconditional writes for workflows
//     that explicitly want them.
//   - CompareOrCapture treats a missing baseline as a recoverable,
//     actionable condition: it captures and stores a fresh baseline and
//     reports the comparison as pending instead of failing.
//
// Parent references are explicit parameters on every call. There is no
// process-wide "last restored artifact" state; callers that want chained
// captures pass the prior artifact's name themselves, which keeps the
// harness safe to construct per test.
package harness
