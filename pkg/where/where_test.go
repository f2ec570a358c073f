package where

import (
	"testing"

	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/eval"
	"github.com/nullsql/nullsql/pkg/scope"
	"github.com/nullsql/nullsql/pkg/token"
	"github.com/nullsql/nullsql/pkg/wal"
)

func setup() (*scope.Scope, *wal.WAL, *eval.Evaluator, *scope.Table) {
	sc := scope.New()
	tbl := sc.AddTable("users", "u", []scope.ColumnSpec{{Name: "email", Nullable: true}})
	w := wal.New()
	return sc, w, eval.New(sc, w, nil), tbl
}

func ident(segments ...string) *ast.Identifier { return &ast.Identifier{Segments: segments} }

func TestNarrow_IsNotNull(t *testing.T) {
	sc, w, e, tbl := setup()
	pred := &ast.IsNullExpr{Expr: ident("email"), Not: true}

	if err := Narrow(pred, sc, w, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, _ := tbl.Column("email")
	nullable, ok := w.LookupColumn(tbl.ID, col.ID)
	if !ok || nullable {
		t.Fatalf("expected column narrowed to non-null, got %v ok=%v", nullable, ok)
	}
	tableNullable, ok := w.LookupTable(tbl.ID)
	if !ok || tableNullable {
		t.Fatalf("expected table narrowed to non-null, got %v ok=%v", tableNullable, ok)
	}
}

func TestNarrow_OrShortCircuits(t *testing.T) {
	sc, w, e, _ := setup()
	pred := &ast.BinaryExpr{
		Op:   token.OR,
		Left: &ast.IsNullExpr{Expr: ident("email"), Not: true},
		Right: &ast.Literal{Type: ast.LiteralBool, Value: "true"},
	}
	if err := Narrow(pred, sc, w, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := w.LookupTable(0); ok {
		t.Fatalf("expected OR to contribute no narrowing facts")
	}
}

func TestNarrow_EqualityToNonNullLiteral(t *testing.T) {
	sc, w, e, tbl := setup()
	pred := &ast.BinaryExpr{
		Op:    token.EQ,
		Left:  ident("email"),
		Right: &ast.Literal{Type: ast.LiteralString, Value: "a@example.com"},
	}
	if err := Narrow(pred, sc, w, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, _ := tbl.Column("email")
	nullable, ok := w.LookupColumn(tbl.ID, col.ID)
	if !ok || nullable {
		t.Fatalf("expected equality narrowing, got %v ok=%v", nullable, ok)
	}
}
