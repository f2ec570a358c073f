package nullable

import "github.com/nullsql/nullsql/pkg/ast"

// collectIdentifiers walks expr and returns every Identifier it contains,
// used to find which in-scope tables a join predicate references (§4.3).
// It does not descend into nested SELECTs: a correlated subquery's own
// identifiers belong to that subquery's scope, not the enclosing join.
func collectIdentifiers(expr ast.Expr) []*ast.Identifier {
	var out []*ast.Identifier
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Identifier:
			out = append(out, n)
		case *ast.BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpr:
			walk(n.Expr)
		case *ast.ParenExpr:
			for _, item := range n.Items {
				walk(item)
			}
		case *ast.CastExpr:
			walk(n.Expr)
		case *ast.IsNullExpr:
			walk(n.Expr)
		case *ast.BetweenExpr:
			walk(n.Expr)
			walk(n.Low)
			walk(n.High)
		case *ast.LikeExpr:
			walk(n.Expr)
			walk(n.Pattern)
		case *ast.InExpr:
			walk(n.Expr)
			for _, v := range n.Values {
				walk(v)
			}
		case *ast.FuncCall:
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.CaseExpr:
			walk(n.Operand)
			for _, w := range n.Whens {
				walk(w.Condition)
				walk(w.Result)
			}
			walk(n.Else)
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				walk(el)
			}
		}
	}
	walk(expr)
	return out
}
