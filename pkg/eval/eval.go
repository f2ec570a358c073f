// Package eval computes the nullability of an expression given a Scope and
// the WAL narrowing facts accumulated so far.
package eval

import (
	"strings"

	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/nullerr"
	"github.com/nullsql/nullsql/pkg/scope"
	"github.com/nullsql/nullsql/pkg/wal"
)

// Place names the result of evaluating an expression, for name-preserving
// set-operation combination (§4.7).
type Place struct {
	Named bool
	Name  string
}

// Unnamed is the place of an expression with no derivable name (most
// computed expressions without an alias).
func Unnamed() Place { return Place{} }

// Named is the place of an expression known by name, e.g. a bare column
// reference or an explicit alias.
func Named(name string) Place { return Place{Named: true, Name: name} }

// Result is the nullability verdict for one expression: Value is nil for
// "unknown" (None in the spec's three-valued logic), true for "may be
// null", false for "never null".
type Result struct {
	Place Place
	Value *bool
}

func known(b bool) *bool { return &b }

// SubqueryAnalyzer analyzes a nested SELECT and returns its projected
// column results. Injected by the top-level driver (package nullable) to
// avoid a package import cycle between eval and nullable.
type SubqueryAnalyzer func(*ast.SelectStmt) ([]Result, error)

// Evaluator computes Results for expressions against one Scope/WAL pair.
type Evaluator struct {
	Scope    *scope.Scope
	WAL      *wal.WAL
	Subquery SubqueryAnalyzer
}

// New creates an Evaluator.
func New(sc *scope.Scope, w *wal.WAL, sub SubqueryAnalyzer) *Evaluator {
	return &Evaluator{Scope: sc, WAL: w, Subquery: sub}
}

// Evaluate computes the Result of expr. If alias is non-empty, the result's
// Place becomes Named(alias), overriding whatever name the expression
// itself carried.
func (e *Evaluator) Evaluate(expr ast.Expr, alias string) (Result, error) {
	res, err := e.evalExpr(expr)
	if err != nil {
		return Result{}, err
	}
	if alias != "" {
		res.Place = Named(alias)
	}
	return res, nil
}

func (e *Evaluator) evalExpr(expr ast.Expr) (Result, error) {
	switch n := expr.(type) {
	case *ast.Identifier:
		return e.evalIdentifier(n)
	case *ast.Literal:
		return e.evalLiteral(n), nil
	case *ast.Placeholder:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case *ast.BinaryExpr:
		return e.evalBinary(n)
	case *ast.UnaryExpr:
		return e.evalExpr(n.Expr)
	case *ast.IsNullExpr:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case *ast.CastExpr:
		inner, err := e.evalExpr(n.Expr)
		if err != nil {
			return Result{}, err
		}
		return Result{Place: inner.Place, Value: inner.Value}, nil
	case *ast.ParenExpr:
		return e.evalParen(n)
	case *ast.FuncCall:
		return e.evalFuncCall(n)
	case *ast.CaseExpr:
		return e.evalCase(n)
	case *ast.InExpr:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case *ast.BetweenExpr:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case *ast.LikeExpr:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case *ast.SubqueryExpr:
		return e.evalSubquery(n)
	case *ast.ExistsExpr:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case *ast.ArrayLiteral:
		return e.evalArray(n)
	case *ast.StarExpr:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	default:
		return Result{}, &nullerr.UnsupportedConstructError{Pos: expr.Pos(), Message: "unsupported expression shape"}
	}
}

func (e *Evaluator) evalIdentifier(id *ast.Identifier) (Result, error) {
	table, col, err := e.Scope.ResolveColumn(id.Pos(), id.Segments)
	if err != nil {
		return Result{}, err
	}
	return e.EvaluateColumnRef(table, *col), nil
}

// EvaluateColumnRef computes the Result of a direct column reference,
// consulting the WAL the same way an Identifier expression would. Exported
// so `*` and `t.*` projection (which have no Identifier AST node to
// evaluate) can share the column-vs-table WAL precedence rule.
//
// A column-level fact always wins when present. Otherwise a table-level
// fact applies asymmetrically: "table may be absent" (an outer join's
// unmatched side) forces every one of its columns nullable, since a missing
// row reads every column as NULL. "Table definitely present" only cancels
// that forcing — it falls back to the column's own declared nullability
// rather than asserting every column non-null, since proving the row
// exists says nothing about the columns nobody narrowed.
func (e *Evaluator) EvaluateColumnRef(table *scope.Table, col scope.Column) Result {
	value := col.Nullable
	if colNullable, ok := e.WAL.LookupColumn(table.ID, col.ID); ok {
		value = colNullable
	} else if tableNullable, ok := e.WAL.LookupTable(table.ID); ok && tableNullable {
		value = true
	}
	return Result{Place: Named(col.Name), Value: known(value)}
}

func (e *Evaluator) evalLiteral(lit *ast.Literal) Result {
	if lit.Type == ast.LiteralNull {
		return Result{Place: Unnamed(), Value: known(true)}
	}
	return Result{Place: Unnamed(), Value: known(false)}
}

func (e *Evaluator) evalBinary(b *ast.BinaryExpr) (Result, error) {
	left, err := e.evalExpr(b.Left)
	if err != nil {
		return Result{}, err
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		return Result{}, err
	}

	switch {
	case left.Value != nil && !*left.Value && right.Value != nil && !*right.Value:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case left.Value != nil && *left.Value, right.Value != nil && *right.Value:
		return Result{Place: Unnamed(), Value: known(true)}, nil
	default:
		return Result{Place: Unnamed(), Value: nil}, nil
	}
}

func (e *Evaluator) evalParen(p *ast.ParenExpr) (Result, error) {
	if len(p.Items) != 1 {
		return Result{Place: Unnamed(), Value: known(false)}, nil
	}
	return e.evalExpr(p.Items[0])
}

func (e *Evaluator) evalArray(a *ast.ArrayLiteral) (Result, error) {
	anyNull := false
	anyUnknown := false
	for _, el := range a.Elements {
		r, err := e.evalExpr(el)
		if err != nil {
			return Result{}, err
		}
		if r.Value == nil {
			anyUnknown = true
			continue
		}
		if *r.Value {
			anyNull = true
		}
	}
	if anyNull {
		return Result{Place: Unnamed(), Value: known(true)}, nil
	}
	if anyUnknown {
		return Result{Place: Unnamed(), Value: nil}, nil
	}
	return Result{Place: Unnamed(), Value: known(false)}, nil
}

func (e *Evaluator) evalCase(c *ast.CaseExpr) (Result, error) {
	var results []Result
	for _, when := range c.Whens {
		r, err := e.evalExpr(when.Result)
		if err != nil {
			return Result{}, err
		}
		results = append(results, r)
	}
	if c.Else != nil {
		r, err := e.evalExpr(c.Else)
		if err != nil {
			return Result{}, err
		}
		results = append(results, r)
	} else {
		results = append(results, Result{Value: known(true)}) // implicit ELSE NULL
	}

	anyUnknown := false
	for _, r := range results {
		if r.Value == nil {
			anyUnknown = true
			continue
		}
		if *r.Value {
			return Result{Place: Unnamed(), Value: known(true)}, nil
		}
	}
	if anyUnknown {
		return Result{Place: Unnamed(), Value: nil}, nil
	}
	return Result{Place: Unnamed(), Value: known(false)}, nil
}

func (e *Evaluator) evalSubquery(s *ast.SubqueryExpr) (Result, error) {
	if e.Subquery == nil {
		return Result{}, &nullerr.UnsupportedConstructError{Pos: s.Pos(), Message: "scalar subquery analysis unavailable"}
	}
	cols, err := e.Subquery(s.Select)
	if err != nil {
		return Result{}, err
	}
	for _, c := range cols {
		if c.Value == nil || *c.Value {
			return Result{Place: Unnamed(), Value: known(true)}, nil
		}
	}
	return Result{Place: Unnamed(), Value: known(false)}, nil
}

// builtinClass classifies a function from the §4.4.1 allow-list.
type builtinClass int

const (
	classAlwaysNonNull builtinClass = iota
	classAllArgsNonNull
	classAnyArgNonNull
	classAnyArgExists
)

var builtins = map[string]builtinClass{
	"count":        classAlwaysNonNull,
	"current_user": classAlwaysNonNull,
	"now":          classAlwaysNonNull,
	"random":       classAlwaysNonNull,
	"version":      classAlwaysNonNull,

	"lower":   classAllArgsNonNull,
	"upper":   classAllArgsNonNull,
	"concat":  classAllArgsNonNull,
	"length":  classAllArgsNonNull,
	"abs":     classAllArgsNonNull,
	"ceil":    classAllArgsNonNull,
	"ceiling": classAllArgsNonNull,
	"floor":   classAllArgsNonNull,
	"round":   classAllArgsNonNull,
	"power":   classAllArgsNonNull,
	"sum":     classAllArgsNonNull,
	"avg":     classAllArgsNonNull,
	"min":     classAllArgsNonNull,
	"max":     classAllArgsNonNull,

	"coalesce": classAnyArgNonNull,

	"array_agg":    classAnyArgExists,
	"array_remove": classAnyArgExists,
}

func (e *Evaluator) evalFuncCall(f *ast.FuncCall) (Result, error) {
	name := strings.ToLower(f.Name)
	class, ok := builtins[name]
	if !ok {
		return Result{}, &nullerr.UnsupportedFunctionError{Pos: f.Pos(), Name: f.Name}
	}

	switch class {
	case classAlwaysNonNull:
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case classAnyArgExists:
		return Result{Place: Unnamed(), Value: known(len(f.Args) == 0)}, nil
	}

	if len(f.Args) == 0 {
		return Result{Place: Unnamed(), Value: known(true)}, nil
	}

	results := make([]Result, 0, len(f.Args))
	for _, arg := range f.Args {
		r, err := e.evalExpr(arg)
		if err != nil {
			return Result{}, err
		}
		results = append(results, r)
	}

	switch class {
	case classAllArgsNonNull:
		anyUnknown := false
		for _, r := range results {
			if r.Value == nil {
				anyUnknown = true
				continue
			}
			if *r.Value {
				return Result{Place: Unnamed(), Value: known(true)}, nil
			}
		}
		if anyUnknown {
			return Result{Place: Unnamed(), Value: nil}, nil
		}
		return Result{Place: Unnamed(), Value: known(false)}, nil
	case classAnyArgNonNull:
		anyUnknown := false
		for _, r := range results {
			if r.Value == nil {
				anyUnknown = true
				continue
			}
			if !*r.Value {
				return Result{Place: Unnamed(), Value: known(false)}, nil
			}
		}
		if anyUnknown {
			return Result{Place: Unnamed(), Value: nil}, nil
		}
		return Result{Place: Unnamed(), Value: known(true)}, nil
	}

	return Result{Place: Unnamed(), Value: nil}, nil
}
