package nullable

import (
	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/dialect"
	"github.com/nullsql/nullsql/pkg/parser"
)

// Analyzer is the entry point: `Analyzer::new(query_text, catalog,
// dialect)` followed by `infer(requested_columns)` (§6).
type Analyzer struct {
	stmt    ast.Stmt
	catalog *catalog.Catalog
}

// New parses query under dialect d and binds it to cat, ready for Infer.
func New(query string, cat *catalog.Catalog, d dialect.Dialect) (*Analyzer, error) {
	stmt, err := parser.Parse(query, d)
	if err != nil {
		return nil, err
	}
	return &Analyzer{stmt: stmt, catalog: cat}, nil
}

// Infer returns, for each name in requestedColumns, whether that output
// column may be NULL in at least one produced row.
func (a *Analyzer) Infer(requestedColumns []string) ([]bool, error) {
	sn, err := analyzeStatement(a.stmt, a.catalog)
	if err != nil {
		return nil, err
	}
	combined, err := combineBranches(sn)
	if err != nil {
		return nil, err
	}
	return finalize(combined, requestedColumns), nil
}

// finalize resolves each requested column by name first, falling back to
// position, per §4.8: a name matching exactly one projected column returns
// that column's value; a name matching several returns the value at the
// requested position; unknown values finalize to true (pessimistic).
func finalize(combined Nullable, requestedColumns []string) []bool {
	out := make([]bool, len(requestedColumns))
	for i, name := range requestedColumns {
		left, right := -1, -1
		for idx, r := range combined {
			if r.Place.Named && r.Place.Name == name {
				if left == -1 {
					left = idx
				}
				right = idx
			}
		}

		var value *bool
		switch {
		case left == -1:
			if i < len(combined) {
				value = combined[i].Value
			}
		case left == right:
			value = combined[left].Value
		default:
			if i < len(combined) {
				value = combined[i].Value
			} else {
				value = combined[left].Value
			}
		}

		out[i] = value == nil || *value
	}
	return out
}
