package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fixpoint/internal/engine"
	"github.com/roach88/fixpoint/internal/record"
	"github.com/roach88/fixpoint/internal/store"
	"github.com/roach88/fixpoint/internal/testutil"
)

func newTestHarness(t *testing.T) *Harness {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return New(st)
}

func TestCapture_StripsEmptyTables(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	db := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, db, "ada", "bob") // posts stays empty

	artifact, err := h.CaptureFromDatabase(ctx, db, "base", "")
	require.NoError(t, err)
	require.NoError(t, h.SaveNew(artifact))

	loaded, err := h.LoadArtifact("base")
	require.NoError(t, err)

	users, ok := loaded.Table("users")
	require.True(t, ok)
	require.Len(t, users.Rows, 2)

	_, ok = loaded.Table("posts")
	require.False(t, ok, "zero-row table must not be persisted")
}

func TestCompare_IgnoreSetMasksVolatileColumns(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	db := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, db, "ada", "bob")

	artifact, err := h.CaptureFromDatabase(ctx, db, "base", "")
	require.NoError(t, err)
	require.NoError(t, h.SaveNew(artifact))

	// Touch a volatile column only.
	testutil.Exec(t, db, `UPDATE users SET updated_at = '2024-03-01T10:00:00Z' WHERE id = 1`)

	outcome, err := h.Compare(ctx, db, "base", record.NewIgnoreSet("updated_at", "created_at"), nil)
	require.NoError(t, err)
	require.True(t, outcome.Clean(), "mismatches: %v", outcome.Mismatches)

	// Without masking the same change is a mismatch.
	outcome, err = h.Compare(ctx, db, "base", nil, nil)
	require.NoError(t, err)
	require.Len(t, outcome.Mismatches, 1)
	require.Equal(t, engine.MismatchRowSet, outcome.Mismatches[0].Kind)
	require.Equal(t, "users", outcome.Mismatches[0].Table)
}

func TestCompare_RowCountDrift(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	db := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, db, "ada", "bob")

	artifact, err := h.CaptureFromDatabase(ctx, db, "base", "")
	require.NoError(t, err)
	require.NoError(t, h.SaveNew(artifact))

	testutil.Exec(t, db, `INSERT INTO users (id, name) VALUES (3, 'eve')`)

	outcome, err := h.Compare(ctx, db, "base", nil, nil)
	require.NoError(t, err)
	require.Len(t, outcome.Mismatches, 1)
	require.Equal(t, engine.MismatchRowSet, outcome.Mismatches[0].Kind)
	require.Equal(t, "users", outcome.Mismatches[0].Table)
}

func TestCompare_MissingArtifact(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	db := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, db, "ada")

	_, err := h.Compare(ctx, db, "v2", nil, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, store.ErrNotFound))
}

func TestCompareOrCapture_PendingThenClean(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	db := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, db, "ada")

	outcome, err := h.CompareOrCapture(ctx, db, "v2", "", nil, nil)
	require.NoError(t, err)
	require.True(t, outcome.Pending)

	exists, err := h.ArtifactExists("v2")
	require.NoError(t, err)
	require.True(t, exists, "pending outcome must leave a stored baseline")

	// Second run compares for real and is clean.
	outcome, err = h.CompareOrCapture(ctx, db, "v2", "", nil, nil)
	require.NoError(t, err)
	require.False(t, outcome.Pending)
	require.True(t, outcome.Clean())
}

func TestSaveNew_RefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	db := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, db, "ada")

	artifact, err := h.CaptureFromDatabase(ctx, db, "base", "")
	require.NoError(t, err)
	require.NoError(t, h.SaveNew(artifact))

	err = h.SaveNew(artifact)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestReplayIntoDatabase(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	source := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, source, "ada", "bob")
	testutil.Exec(t, source, `INSERT INTO posts (id, author_id, title) VALUES (1, 1, 'hello')`)

	artifact, err := h.CaptureFromDatabase(ctx, source, "base", "")
	require.NoError(t, err)
	require.NoError(t, h.SaveNew(artifact))

	target := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, target) // same schema, empty

	require.NoError(t, h.Restore(ctx, target, "base"))

	outcome, err := h.Compare(ctx, target, "base", nil, nil)
	require.NoError(t, err)
	require.True(t, outcome.Clean(), "mismatches: %v", outcome.Mismatches)
}

func TestCapture_IncrementalChain(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	db := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, db, "ada", "bob")

	base, err := h.CaptureFromDatabase(ctx, db, "v1", "")
	require.NoError(t, err)
	require.NoError(t, h.SaveNew(base))

	// Change posts only; users stays identical to the parent.
	testutil.Exec(t, db, `INSERT INTO posts (id, author_id, title) VALUES (1, 2, 'news')`)

	delta, err := h.CaptureFromDatabase(ctx, db, "v2", "v1")
	require.NoError(t, err)
	require.Equal(t, "v1", delta.Parent)
	_, ok := delta.Table("users")
	require.False(t, ok, "unchanged table must not be stored in the delta")
	_, ok = delta.Table("posts")
	require.True(t, ok)
	require.NoError(t, h.SaveNew(delta))

	// The chained artifact still compares clean against the database.
	outcome, err := h.Compare(ctx, db, "v2", nil, nil)
	require.NoError(t, err)
	require.True(t, outcome.Clean(), "mismatches: %v", outcome.Mismatches)

	// And replays into an empty database as the full materialized state.
	target := testutil.OpenDB(t)
	testutil.SeedUsersPosts(t, target)
	require.NoError(t, h.Restore(ctx, target, "v2"))

	outcome, err = h.Compare(ctx, target, "v2", nil, nil)
	require.NoError(t, err)
	require.True(t, outcome.Clean(), "mismatches: %v", outcome.Mismatches)
}

func TestHarness_SessionTokensDiffer(t *testing.T) {
	a := newTestHarness(t)
	b := newTestHarness(t)
	require.NotEmpty(t, a.Session())
	require.NotEqual(t, a.Session(), b.Session())
}
