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

// analyzeStatement dispatches on statement kind (§4.8).
func analyzeStatement(stmt ast.Stmt, cat *catalog.Catalog) (StatementNullable, error) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		return analyzeSelectStmt(s, cat)
	case *ast.InsertStmt:
		return analyzeInsert(s, cat)
	case *ast.UpdateStmt:
		return analyzeUpdate(s, cat)
	case *ast.DeleteStmt:
		return analyzeDelete(s, cat)
	case *ast.ValuesStmt:
		return analyzeValues(s, cat)
	case *ast.IgnoredStmt:
		return StatementNullable{}, nil
	default:
		return nil, &nullerr.UnsupportedConstructError{Pos: stmt.Pos(), Message: "statement kind is outside the implemented subset"}
	}
}

// analyzeSelectStmt materializes any WITH-clause CTEs into a layered
// catalog view, in order, then analyzes the set-expression body against it.
func analyzeSelectStmt(stmt *ast.SelectStmt, cat *catalog.Catalog) (StatementNullable, error) {
	effective := cat
	if stmt.With != nil {
		for _, cte := range stmt.With.CTEs {
			branch, err := analyzeSelectStmt(cte.Select, effective)
			if err != nil {
				return nil, err
			}
			row, err := combineBranches(branch)
			if err != nil {
				return nil, err
			}
			effective = effective.WithTable(&catalog.TableDescriptor{
				Name:    cte.Name,
				Columns: descriptorColumnsFromRow(row),
			})
		}
	}
	return analyzeSelectBody(stmt.Body, effective)
}

func descriptorColumnsFromRow(row Nullable) []catalog.ColumnDescriptor {
	cols := make([]catalog.ColumnDescriptor, len(row))
	for i, r := range row {
		name := r.Place.Name
		if name == "" {
			name = generatedColumnName(i)
		}
		nullable := true
		if r.Value != nil {
			nullable = *r.Value
		}
		cols[i] = catalog.ColumnDescriptor{Name: name, Nullable: nullable}
	}
	return cols
}

// analyzeSelectBody walks a (possibly set-combined) SelectBody chain and
// returns every branch's row, left to right, for the caller to combine.
func analyzeSelectBody(body *ast.SelectBody, cat *catalog.Catalog) (StatementNullable, error) {
	row, err := analyzeSelectCore(body.Left, cat)
	if err != nil {
		return nil, err
	}
	branches := StatementNullable{row}

	if body.Op == ast.SetOpNone || body.Right == nil {
		return branches, nil
	}

	rest, err := analyzeSelectBody(body.Right, cat)
	if err != nil {
		return nil, err
	}
	return append(branches, rest...), nil
}

// analyzeInsert analyzes `INSERT ... RETURNING` (§4.8); without RETURNING
// the statement produces no result columns.
func analyzeInsert(s *ast.InsertStmt, cat *catalog.Catalog) (StatementNullable, error) {
	if len(s.Returning) == 0 {
		return StatementNullable{}, nil
	}
	sc, _, ev, err := scopeForTarget(s.Table, cat)
	if err != nil {
		return nil, err
	}
	row, err := projectSelectItems(s.Returning, sc, ev)
	if err != nil {
		return nil, err
	}
	return StatementNullable{row}, nil
}

// analyzeUpdate analyzes `UPDATE ... [WHERE ...] [RETURNING ...]`.
func analyzeUpdate(s *ast.UpdateStmt, cat *catalog.Catalog) (StatementNullable, error) {
	if len(s.Returning) == 0 {
		return StatementNullable{}, nil
	}
	sc, w, ev, err := scopeForTarget(s.Table, cat)
	if err != nil {
		return nil, err
	}
	if s.Where != nil {
		if err := where.Narrow(s.Where, sc, w, ev); err != nil {
			return nil, err
		}
	}
	row, err := projectSelectItems(s.Returning, sc, ev)
	if err != nil {
		return nil, err
	}
	return StatementNullable{row}, nil
}

// analyzeDelete analyzes `DELETE FROM ... [WHERE ...] [RETURNING ...]`.
func analyzeDelete(s *ast.DeleteStmt, cat *catalog.Catalog) (StatementNullable, error) {
	if len(s.Returning) == 0 {
		return StatementNullable{}, nil
	}
	sc, w, ev, err := scopeForTarget(s.Table, cat)
	if err != nil {
		return nil, err
	}
	if s.Where != nil {
		if err := where.Narrow(s.Where, sc, w, ev); err != nil {
			return nil, err
		}
	}
	row, err := projectSelectItems(s.Returning, sc, ev)
	if err != nil {
		return nil, err
	}
	return StatementNullable{row}, nil
}

func scopeForTarget(table *ast.TableName, cat *catalog.Catalog) (*scope.Scope, *wal.WAL, *eval.Evaluator, error) {
	desc, ok := cat.Lookup(table.Schema, table.Name)
	if !ok {
		return nil, nil, nil, &nullerr.UnknownTableError{Pos: table.Pos(), Name: table.Name}
	}
	effective := table.Alias
	if effective == "" {
		effective = table.Name
	}
	sc := scope.New()
	sc.AddTable(desc.Name, effective, descriptorColumns(desc))
	w := wal.New()
	ev := eval.New(sc, w, toEvalSubquery(makeSubAnalyzer(cat)))
	return sc, w, ev, nil
}

// analyzeValues analyzes a standalone `VALUES (...), (...)` statement: one
// row per value tuple, combined the same way UNION branches are.
func analyzeValues(s *ast.ValuesStmt, cat *catalog.Catalog) (StatementNullable, error) {
	ev := eval.New(scope.New(), wal.New(), toEvalSubquery(makeSubAnalyzer(cat)))
	var branches StatementNullable
	for _, exprRow := range s.Rows {
		row := make(Nullable, 0, len(exprRow))
		for _, expr := range exprRow {
			res, err := ev.Evaluate(expr, "")
			if err != nil {
				return nil, err
			}
			row = append(row, res)
		}
		branches = append(branches, row)
	}
	return branches, nil
}
