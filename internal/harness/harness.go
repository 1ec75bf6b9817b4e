package harness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/fixpoint/internal/bridge"
	"github.com/roach88/fixpoint/internal/engine"
	"github.com/roach88/fixpoint/internal/record"
	"github.com/roach88/fixpoint/internal/store"
)

// Harness binds an artifact store to the engine's caller-facing operations.
// A harness is scoped to a single test execution context; concurrent use of
// one harness against the same artifact names is not supported.
type Harness struct {
	store   *store.Store
	session string
}

// New creates a harness over the given artifact store.
func New(st *store.Store) *Harness {
	return &Harness{
		store:   st,
		session: uuid.NewString(),
	}
}

// Session returns the harness's unique session token, used to correlate
// diagnostics from one test execution context.
func (h *Harness) Session() string {
	return h.session
}

// Store returns the underlying artifact store.
func (h *Harness) Store() *store.Store {
	return h.store
}

// ArtifactExists checks storage for an artifact without loading it.
func (h *Harness) ArtifactExists(name string) (bool, error) {
	return h.store.Exists(name)
}

// LoadArtifact loads a stored artifact by name.
func (h *Harness) LoadArtifact(name string) (*record.Artifact, error) {
	return h.store.Load(name)
}

// CaptureFromDatabase reads the database's full state and computes the
// artifact for it, relative to parent when one is named. The ignore set is
// deliberately not applied here: stored artifacts stay complete enough to
// reconstruct real rows, and masking happens at comparison time.
//
// The artifact is returned unsaved; persist it with SaveNew.
func (h *Harness) CaptureFromDatabase(ctx context.Context, db *sql.DB, name, parent string) (*record.Artifact, error) {
	state, err := bridge.ReadAllTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("capture %q: %w", name, err)
	}
	return engine.ComputeDelta(name, state, parent, h.store)
}

// SaveNew persists an artifact, refusing to overwrite an existing one.
// Stored artifacts are immutable; silently replacing one would churn
// version control and invalidate children that name it as parent.
func (h *Harness) SaveNew(a *record.Artifact) error {
	exists, err := h.store.Exists(a.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("artifact %q already exists; artifacts are immutable once stored", a.Name)
	}
	return h.store.Save(a)
}

// ReplayIntoDatabase materializes the artifact's parent chain and loads the
// resulting state into the target database. The target is assumed empty;
// conflicts fail loudly.
func (h *Harness) ReplayIntoDatabase(ctx context.Context, db *sql.DB, artifact *record.Artifact) error {
	state, err := engine.Materialize(artifact, h.store)
	if err != nil {
		return err
	}
	if err := bridge.WriteAllTables(ctx, db, state); err != nil {
		return fmt.Errorf("replay %q: %w", artifact.Name, err)
	}
	return nil
}

// Restore loads the named artifact and replays it into the database.
func (h *Harness) Restore(ctx context.Context, db *sql.DB, name string) error {
	artifact, err := h.store.Load(name)
	if err != nil {
		return err
	}
	return h.ReplayIntoDatabase(ctx, db, artifact)
}

// Compare checks the database's current state against the named artifact.
// tables selects the tables to check (nil means all); ignore masks volatile
// columns on both sides.
//
// A missing artifact surfaces store.ErrNotFound; see CompareOrCapture for
// the auto-baseline policy.
func (h *Harness) Compare(ctx context.Context, db *sql.DB, name string, ignore record.IgnoreSet, tables []string) (*Outcome, error) {
	artifact, err := h.store.Load(name)
	if err != nil {
		return nil, err
	}
	fixpointState, err := engine.Materialize(artifact, h.store)
	if err != nil {
		return nil, err
	}
	dbState, err := bridge.ReadAllTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("compare against %q: %w", name, err)
	}

	return &Outcome{
		Fixpoint:   name,
		Mismatches: engine.Compare(dbState, fixpointState, tables, ignore),
	}, nil
}

// CompareOrCapture is Compare with the baseline-creation policy applied: if
// the named artifact does not exist, the database's current state is
// captured (relative to parent, if named), stored under name, and the
// outcome reports Pending instead of mismatches. Runs that hit a pending
// outcome are incomplete but actionable, not failed.
func (h *Harness) CompareOrCapture(ctx context.Context, db *sql.DB, name, parent string, ignore record.IgnoreSet, tables []string) (*Outcome, error) {
	outcome, err := h.Compare(ctx, db, name, ignore, tables)
	if err == nil {
		return outcome, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	artifact, err := h.CaptureFromDatabase(ctx, db, name, parent)
	if err != nil {
		return nil, fmt.Errorf("capture baseline %q: %w", name, err)
	}
	if err := h.SaveNew(artifact); err != nil {
		return nil, err
	}
	return &Outcome{Fixpoint: name, Pending: true}, nil
}
