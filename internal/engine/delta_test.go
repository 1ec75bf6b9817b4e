package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fixpoint/internal/record"
	"github.com/roach88/fixpoint/internal/store"
)

// memLoader is an in-memory Loader for tests.
type memLoader map[string]*record.Artifact

func (m memLoader) Load(name string) (*record.Artifact, error) {
	a, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("load %q: %w", name, store.ErrNotFound)
	}
	return a, nil
}

func userRows(names ...string) []record.Row {
	rows := make([]record.Row, len(names))
	for i, n := range names {
		rows[i] = record.NewRow(record.F("id", record.Int(int64(i+1))), record.F("name", record.String(n)))
	}
	return rows
}

func TestComputeDelta_NoParent_FullState(t *testing.T) {
	state := record.State{
		"users": userRows("ada", "bob"),
		"posts": {record.NewRow(record.F("id", record.Int(1)), record.F("title", record.String("hi")))},
	}

	artifact, err := ComputeDelta("base", state, "", memLoader{})
	require.NoError(t, err)

	require.Equal(t, "base", artifact.Name)
	require.Empty(t, artifact.Parent)
	require.Len(t, artifact.Tables, 2)

	users, ok := artifact.Table("users")
	require.True(t, ok)
	require.True(t, record.RowsEqual(state["users"], users.Rows))
}

func TestComputeDelta_RoundTrip(t *testing.T) {
	state := record.State{
		"users": userRows("ada", "bob"),
		"posts": {record.NewRow(record.F("id", record.Int(1)))},
	}

	artifact, err := ComputeDelta("base", state, "", memLoader{})
	require.NoError(t, err)

	materialized, err := Materialize(artifact, memLoader{})
	require.NoError(t, err)

	require.Len(t, materialized, len(state))
	for name, rows := range state {
		require.True(t, record.RowsEqual(rows, materialized[name]), "table %s changed", name)
	}
}

func TestComputeDelta_EmptyTableStripped(t *testing.T) {
	state := record.State{
		"users": userRows("ada"),
		"logs":  {},
	}

	artifact, err := ComputeDelta("base", state, "", memLoader{})
	require.NoError(t, err)

	_, ok := artifact.Table("logs")
	require.False(t, ok, "empty table must not appear in artifact")

	materialized, err := Materialize(artifact, memLoader{})
	require.NoError(t, err)
	_, ok = materialized["logs"]
	require.False(t, ok, "materialization must not reintroduce an empty table")
}

func TestComputeDelta_MinimalAgainstParent(t *testing.T) {
	parentState := record.State{
		"users": userRows("ada", "bob"),
		"posts": {record.NewRow(record.F("id", record.Int(1)))},
	}
	parent, err := ComputeDelta("v1", parentState, "", memLoader{})
	require.NoError(t, err)
	loader := memLoader{"v1": parent}

	childState := record.State{
		"users": userRows("ada", "bob"),           // unchanged
		"posts": {record.NewRow(record.F("id", record.Int(2)))}, // changed
	}
	delta, err := ComputeDelta("v2", childState, "v1", loader)
	require.NoError(t, err)

	_, ok := delta.Table("users")
	require.False(t, ok, "unchanged table must be omitted from the delta")
	posts, ok := delta.Table("posts")
	require.True(t, ok)
	require.Len(t, posts.Rows, 1)
}

func TestComputeDelta_MissingParent(t *testing.T) {
	state := record.State{"users": userRows("ada")}

	_, err := ComputeDelta("v2", state, "v1", memLoader{})
	require.Error(t, err)
	require.True(t, errors.Is(err, store.ErrNotFound))
}

func TestMaterialize_ThreeLevelChain(t *testing.T) {
	// root: users + posts, A: changes posts, B: changes users + adds tags.
	root := &record.Artifact{
		Name: "root",
		Tables: []record.Table{
			{Name: "users", Rows: userRows("ada")},
			{Name: "posts", Rows: []record.Row{record.NewRow(record.F("id", record.Int(1)))}},
		},
	}
	a := &record.Artifact{
		Name:   "a",
		Parent: "root",
		Tables: []record.Table{
			{Name: "posts", Rows: []record.Row{record.NewRow(record.F("id", record.Int(2)))}},
		},
	}
	b := &record.Artifact{
		Name:   "b",
		Parent: "a",
		Tables: []record.Table{
			{Name: "users", Rows: userRows("ada", "bob")},
			{Name: "tags", Rows: []record.Row{record.NewRow(record.F("t", record.String("x")))}},
		},
	}
	loader := memLoader{"root": root, "a": a, "b": b}

	state, err := Materialize(b, loader)
	require.NoError(t, err)

	// B's users replace root's; A's posts survive; B's tags appear.
	require.Len(t, state["users"], 2)
	require.True(t, record.RowsEqual(a.Tables[0].Rows, state["posts"]))
	require.Len(t, state["tags"], 1)
}

func TestMaterialize_ChildReplacesParentTable(t *testing.T) {
	parent := &record.Artifact{
		Name: "v1",
		Tables: []record.Table{
			{Name: "users", Rows: userRows("ada", "bob", "eve")},
		},
	}
	child := &record.Artifact{
		Name:   "v2",
		Parent: "v1",
		Tables: []record.Table{
			{Name: "users", Rows: userRows("ada")},
		},
	}
	loader := memLoader{"v1": parent, "v2": child}

	state, err := Materialize(child, loader)
	require.NoError(t, err)
	// Full per-table replacement: no row-level merging with the parent.
	require.Len(t, state["users"], 1)
}

func TestMaterialize_CyclicChain(t *testing.T) {
	a := &record.Artifact{Name: "a", Parent: "b"}
	b := &record.Artifact{Name: "b", Parent: "a"}
	loader := memLoader{"a": a, "b": b}

	_, err := Materialize(a, loader)
	require.Error(t, err)
	require.True(t, IsCyclicChain(err))

	var ce *CyclicChainError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, []string{"a", "b", "a"}, ce.Chain)
}

func TestMaterialize_MissingChainLink(t *testing.T) {
	child := &record.Artifact{Name: "v2", Parent: "v1"}

	_, err := Materialize(child, memLoader{"v2": child})
	require.Error(t, err)
	require.True(t, errors.Is(err, store.ErrNotFound))
}
