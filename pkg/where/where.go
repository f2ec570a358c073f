// Package where translates a WHERE predicate into WAL narrowing facts
// (§4.5): IS NOT NULL and equality-to-non-null facts are recorded for both
// AND-joined branches; OR short-circuits narrowing entirely, since either
// branch's facts need not hold for every produced row.
package where

import (
	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/eval"
	"github.com/nullsql/nullsql/pkg/scope"
	"github.com/nullsql/nullsql/pkg/token"
	"github.com/nullsql/nullsql/pkg/wal"
)

// Narrow walks predicate and appends WAL facts for every narrowing shape it
// recognizes. Unrecognized shapes contribute no facts; that is not an
// error, since a WHERE clause may contain conditions the evaluator cannot
// turn into hard guarantees.
func Narrow(predicate ast.Expr, sc *scope.Scope, w *wal.WAL, e *eval.Evaluator) error {
	if predicate == nil {
		return nil
	}

	switch n := predicate.(type) {
	case *ast.BinaryExpr:
		if n.Op == token.AND {
			if err := Narrow(n.Left, sc, w, e); err != nil {
				return err
			}
			return Narrow(n.Right, sc, w, e)
		}
		if n.Op == token.OR {
			return nil
		}
		if n.Op == token.EQ {
			return narrowEquality(n, sc, w, e)
		}
	case *ast.IsNullExpr:
		if !n.Not {
			return nil // IS NULL narrows nothing useful here
		}
		return narrowIsNotNull(n.Expr, sc, w)
	}
	return nil
}

func narrowIsNotNull(expr ast.Expr, sc *scope.Scope, w *wal.WAL) error {
	id, ok := expr.(*ast.Identifier)
	if !ok {
		return nil
	}
	table, col, err := sc.ResolveColumn(id.Pos(), id.Segments)
	if err != nil {
		return err
	}
	w.RecordColumn(table.ID, col.ID, false)
	w.RecordTable(table.ID, false)
	return nil
}

func narrowEquality(bin *ast.BinaryExpr, sc *scope.Scope, w *wal.WAL, e *eval.Evaluator) error {
	if err := narrowEqualitySide(bin.Left, bin.Right, sc, w, e); err != nil {
		return err
	}
	return narrowEqualitySide(bin.Right, bin.Left, sc, w, e)
}

// narrowEqualitySide narrows col when col = other and other evaluates to
// definitely-non-null.
func narrowEqualitySide(colSide, otherSide ast.Expr, sc *scope.Scope, w *wal.WAL, e *eval.Evaluator) error {
	id, ok := colSide.(*ast.Identifier)
	if !ok {
		return nil
	}
	otherResult, err := e.Evaluate(otherSide, "")
	if err != nil {
		return err
	}
	if otherResult.Value == nil || *otherResult.Value {
		return nil
	}
	table, col, err := sc.ResolveColumn(id.Pos(), id.Segments)
	if err != nil {
		return err
	}
	w.RecordColumn(table.ID, col.ID, false)
	w.RecordTable(table.ID, false)
	return nil
}
