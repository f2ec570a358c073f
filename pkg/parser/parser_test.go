package parser

import (
	"testing"

	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/dialect"
)

func mustParseSelect(t *testing.T, sql string) *ast.SelectStmt {
	t.Helper()
	stmt, err := Parse(sql, dialect.Postgres)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", sql, err)
	}
	sel, ok := stmt.(*ast.SelectStmt)
	if !ok {
		t.Fatalf("Parse(%q) = %T, want *ast.SelectStmt", sql, stmt)
	}
	return sel
}

func TestParse_SimpleSelect(t *testing.T) {
	sel := mustParseSelect(t, "SELECT id, email FROM users")
	if len(sel.Body.Left.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(sel.Body.Left.Columns))
	}
	from := sel.Body.Left.From
	if from == nil {
		t.Fatalf("expected FROM clause")
	}
	tbl, ok := from.Source.(*ast.TableName)
	if !ok || tbl.Name != "users" {
		t.Fatalf("expected table users, got %#v", from.Source)
	}
}

func TestParse_JoinWithOn(t *testing.T) {
	sel := mustParseSelect(t, `
		SELECT o.id, c.name
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.id
	`)
	from := sel.Body.Left.From
	if len(from.Joins) != 1 {
		t.Fatalf("expected 1 join, got %d", len(from.Joins))
	}
	join := from.Joins[0]
	if join.Type != ast.JoinLeft {
		t.Fatalf("expected LEFT join, got %s", join.Type)
	}
	if _, ok := join.Condition.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected binary ON condition, got %#v", join.Condition)
	}
}

func TestParse_WhereIsNotNullAndBetween(t *testing.T) {
	sel := mustParseSelect(t, `
		SELECT id FROM orders
		WHERE shipped_at IS NOT NULL AND total BETWEEN 0 AND 100
	`)
	and, ok := sel.Body.Left.Where.(*ast.BinaryExpr)
	if !ok || and.Op.String() != "AND" {
		t.Fatalf("expected top-level AND, got %#v", sel.Body.Left.Where)
	}
	if _, ok := and.Left.(*ast.IsNullExpr); !ok {
		t.Fatalf("expected IS NOT NULL on left, got %#v", and.Left)
	}
	if _, ok := and.Right.(*ast.BetweenExpr); !ok {
		t.Fatalf("expected BETWEEN on right, got %#v", and.Right)
	}
}

func TestParse_UnionCombinesTwoBranches(t *testing.T) {
	sel := mustParseSelect(t, "SELECT id FROM a UNION SELECT id FROM b")
	if sel.Body.Op != ast.SetOpUnion {
		t.Fatalf("expected UNION, got %q", sel.Body.Op)
	}
	if sel.Body.Right == nil {
		t.Fatalf("expected a right-hand branch")
	}
}

func TestParse_CTE(t *testing.T) {
	sel := mustParseSelect(t, `
		WITH recent AS (SELECT id, total FROM orders WHERE total > 0)
		SELECT id FROM recent
	`)
	if sel.With == nil || len(sel.With.CTEs) != 1 {
		t.Fatalf("expected one CTE")
	}
	if sel.With.CTEs[0].Name != "recent" {
		t.Fatalf("expected CTE named recent, got %q", sel.With.CTEs[0].Name)
	}
}

func TestParse_CoalesceFunctionCall(t *testing.T) {
	sel := mustParseSelect(t, "SELECT coalesce(nickname, name) AS display_name FROM users")
	call, ok := sel.Body.Left.Columns[0].Expr.(*ast.FuncCall)
	if !ok {
		t.Fatalf("expected FuncCall, got %#v", sel.Body.Left.Columns[0].Expr)
	}
	if call.Name != "coalesce" || len(call.Args) != 2 {
		t.Fatalf("unexpected call shape: %#v", call)
	}
}

func TestParse_InsertReturning(t *testing.T) {
	stmt, err := Parse("INSERT INTO users (email) VALUES ('a@example.com') RETURNING id, email", dialect.Postgres)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ins, ok := stmt.(*ast.InsertStmt)
	if !ok {
		t.Fatalf("expected InsertStmt, got %T", stmt)
	}
	if ins.Table.Name != "users" || len(ins.Returning) != 2 {
		t.Fatalf("unexpected insert shape: %#v", ins)
	}
}
