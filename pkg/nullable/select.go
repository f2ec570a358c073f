package nullable

import (
	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/eval"
	"github.com/nullsql/nullsql/pkg/nullerr"
	"github.com/nullsql/nullsql/pkg/scope"
	"github.com/nullsql/nullsql/pkg/wal"
	"github.com/nullsql/nullsql/pkg/where"
)

// analyzeSelectCore runs the §4.6 pipeline for one `SELECT ... FROM ...
// WHERE ...` clause and returns its single produced row.
func analyzeSelectCore(core *ast.SelectCore, cat *catalog.Catalog) (Nullable, error) {
	sc := scope.New()
	w := wal.New()
	sub := makeSubAnalyzer(cat)
	ev := eval.New(sc, w, toEvalSubquery(sub))

	if err := populateFrom(core.From, ev, cat, sub); err != nil {
		return nil, err
	}

	if core.Where != nil {
		if err := where.Narrow(core.Where, sc, w, ev); err != nil {
			return nil, err
		}
	}

	return projectSelectItems(core.Columns, sc, ev)
}

// projectSelectItems evaluates each SELECT list entry, expanding `*` and
// `t.*` wildcards against the current scope (§4.6 step 4).
func projectSelectItems(items []ast.SelectItem, sc *scope.Scope, ev *eval.Evaluator) (Nullable, error) {
	var row Nullable
	for _, item := range items {
		switch {
		case item.Star:
			for _, t := range sc.Tables() {
				for _, c := range t.Columns {
					row = append(row, ev.EvaluateColumnRef(t, c))
				}
			}
		case item.TableStar != "":
			t, ok := sc.FindTableByName(item.TableStar)
			if !ok {
				return nil, &nullerr.UnknownTableError{Name: item.TableStar}
			}
			for _, c := range t.Columns {
				row = append(row, ev.EvaluateColumnRef(t, c))
			}
		default:
			res, err := ev.Evaluate(item.Expr, item.Alias)
			if err != nil {
				return nil, err
			}
			row = append(row, res)
		}
	}
	return row, nil
}
