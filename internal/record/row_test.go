package record

import (
	"errors"
	"testing"
	"time"
)

func TestRow_Get(t *testing.T) {
	row := NewRow(F("id", Int(1)), F("name", String("ada")))

	v, ok := row.Get("name")
	if !ok {
		t.Fatal("Get(name) not found")
	}
	if !ValuesEqual(v, String("ada")) {
		t.Errorf("Get(name) = %#v, want ada", v)
	}

	if _, ok := row.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
}

func TestRow_Mask(t *testing.T) {
	row := NewRow(
		F("id", Int(1)),
		F("name", String("ada")),
		F("updated_at", NewTime(time.Now())),
	)
	ignore := NewIgnoreSet("updated_at", "created_at")

	masked := row.Mask(ignore)
	if len(masked) != 2 {
		t.Fatalf("masked row has %d fields, want 2", len(masked))
	}
	if _, ok := masked.Get("updated_at"); ok {
		t.Error("ignored column survived masking")
	}
	// Original row is untouched.
	if len(row) != 3 {
		t.Errorf("Mask mutated the source row")
	}
}

func TestRow_Equal(t *testing.T) {
	a := NewRow(F("id", Int(1)), F("name", String("ada")))
	b := NewRow(F("name", String("ada")), F("id", Int(1)))
	c := NewRow(F("id", Int(2)), F("name", String("ada")))

	if !a.Equal(b) {
		t.Error("rows with same content in different source order should be equal")
	}
	if a.Equal(c) {
		t.Error("rows with different values should not be equal")
	}
}

func TestRow_Equal_KindMatters(t *testing.T) {
	a := NewRow(F("n", Int(1)))
	b := NewRow(F("n", Float(1)))
	if a.Equal(b) {
		t.Error("Int(1) and Float(1.0) must not compare equal")
	}
}

func TestTable_Validate(t *testing.T) {
	ok := Table{
		Name: "users",
		Rows: []Row{
			NewRow(F("id", Int(1)), F("name", String("ada"))),
			NewRow(F("id", Int(2)), F("name", String("bob"))),
		},
	}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() failed on consistent table: %v", err)
	}

	bad := Table{
		Name: "users",
		Rows: []Row{
			NewRow(F("id", Int(1)), F("name", String("ada"))),
			NewRow(F("id", Int(2)), F("email", String("b@x"))),
		},
	}
	err := bad.Validate()
	if err == nil {
		t.Fatal("Validate() should fail on inconsistent column sets")
	}
	var ire *InvalidRowError
	if !errors.As(err, &ire) {
		t.Fatalf("expected InvalidRowError, got %T", err)
	}
	if ire.Table != "users" || ire.RowIndex != 1 {
		t.Errorf("unexpected error detail: %+v", ire)
	}
}

func TestArtifact_StripEmpty(t *testing.T) {
	a := &Artifact{
		Name: "base",
		Tables: []Table{
			{Name: "users", Rows: []Row{NewRow(F("id", Int(1)))}},
			{Name: "logs", Rows: nil},
		},
	}
	stripped := a.StripEmpty()
	if len(stripped.Tables) != 1 || stripped.Tables[0].Name != "users" {
		t.Errorf("StripEmpty() = %+v, want only users", stripped.Tables)
	}
	if _, ok := a.Table("logs"); !ok {
		t.Error("StripEmpty mutated the source artifact")
	}
}

func TestState_TableNames_Sorted(t *testing.T) {
	s := State{"posts": nil, "users": nil, "comments": nil}
	names := s.TableNames()
	want := []string{"comments", "posts", "users"}
	if !stringSlicesEqual(names, want) {
		t.Errorf("TableNames() = %v, want %v", names, want)
	}
}
