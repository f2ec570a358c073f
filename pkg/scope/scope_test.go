package scope

import (
	"testing"

	"github.com/nullsql/nullsql/pkg/nullerr"
	"github.com/nullsql/nullsql/pkg/token"
)

func TestResolveColumn_Unqualified(t *testing.T) {
	s := New()
	s.AddTable("users", "users", []ColumnSpec{{Name: "id"}, {Name: "email", Nullable: true}})

	table, col, err := s.ResolveColumn(token.Position{}, []string{"email"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.EffectiveName != "users" || !col.Nullable {
		t.Fatalf("got table=%q col=%+v", table.EffectiveName, col)
	}
}

func TestResolveColumn_AmbiguousUnqualified(t *testing.T) {
	s := New()
	s.AddTable("a", "a", []ColumnSpec{{Name: "id"}})
	s.AddTable("b", "b", []ColumnSpec{{Name: "id"}})

	_, _, err := s.ResolveColumn(token.Position{}, []string{"id"})
	if _, ok := err.(*nullerr.AmbiguousColumnError); !ok {
		t.Fatalf("expected AmbiguousColumnError, got %v", err)
	}
}

func TestResolveColumn_QualifiedByAlias(t *testing.T) {
	s := New()
	s.AddTable("users", "u", []ColumnSpec{{Name: "id"}})

	table, _, err := s.ResolveColumn(token.Position{}, []string{"u", "id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.EffectiveName != "u" {
		t.Fatalf("got %q", table.EffectiveName)
	}
}

func TestAddTable_DedupesByEffectiveName(t *testing.T) {
	s := New()
	first := s.AddTable("users", "u", []ColumnSpec{{Name: "id"}})
	second := s.AddTable("users", "u", []ColumnSpec{{Name: "id"}, {Name: "extra"}})
	if first != second {
		t.Fatalf("expected idempotent push to return the existing table")
	}
	if len(s.Tables()) != 1 {
		t.Fatalf("expected exactly one table in scope")
	}
}
