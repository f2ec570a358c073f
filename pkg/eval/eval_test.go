package eval

import (
	"testing"

	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/scope"
	"github.com/nullsql/nullsql/pkg/wal"
)

func newTestEvaluator() (*Evaluator, *scope.Table) {
	sc := scope.New()
	tbl := sc.AddTable("users", "users", []scope.ColumnSpec{
		{Name: "id", Nullable: false},
		{Name: "email", Nullable: true},
	})
	return New(sc, wal.New(), nil), tbl
}

func ident(segments ...string) *ast.Identifier {
	return &ast.Identifier{Segments: segments}
}

func TestEvaluate_NullLiteral(t *testing.T) {
	e, _ := newTestEvaluator()
	res, err := e.Evaluate(&ast.Literal{Type: ast.LiteralNull}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value == nil || !*res.Value {
		t.Fatalf("expected NULL literal to be nullable, got %v", res.Value)
	}
}

func TestEvaluate_ColumnDeclaredNullability(t *testing.T) {
	e, _ := newTestEvaluator()
	res, err := e.Evaluate(ident("email"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value == nil || !*res.Value {
		t.Fatalf("expected email nullable, got %v", res.Value)
	}
}

func TestEvaluate_WALColumnOverrideWins(t *testing.T) {
	e, tbl := newTestEvaluator()
	col, _ := tbl.Column("email")
	e.WAL.RecordColumn(tbl.ID, col.ID, false)

	res, err := e.Evaluate(ident("email"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value == nil || *res.Value {
		t.Fatalf("expected WAL override to make email non-null, got %v", res.Value)
	}
}

func TestEvaluate_Coalesce(t *testing.T) {
	e, _ := newTestEvaluator()
	call := &ast.FuncCall{Name: "coalesce", Args: []ast.Expr{
		&ast.Literal{Type: ast.LiteralNull},
		&ast.Literal{Type: ast.LiteralNumber, Value: "1"},
	}}
	res, err := e.Evaluate(call, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value == nil || *res.Value {
		t.Fatalf("expected coalesce(NULL, 1) non-null, got %v", res.Value)
	}
}

func TestEvaluate_CoalesceNoArgsIsNullable(t *testing.T) {
	e, _ := newTestEvaluator()
	res, err := e.Evaluate(&ast.FuncCall{Name: "coalesce"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value == nil || !*res.Value {
		t.Fatalf("expected coalesce() nullable, got %v", res.Value)
	}
}

func TestEvaluate_UnsupportedFunction(t *testing.T) {
	e, _ := newTestEvaluator()
	_, err := e.Evaluate(&ast.FuncCall{Name: "make_totally_made_up_thing"}, "")
	if err == nil {
		t.Fatalf("expected UnsupportedFunctionError")
	}
}

func TestEvaluate_AliasOverridesPlace(t *testing.T) {
	e, _ := newTestEvaluator()
	res, err := e.Evaluate(ident("email"), "contact")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Place.Named || res.Place.Name != "contact" {
		t.Fatalf("expected aliased place, got %+v", res.Place)
	}
}
