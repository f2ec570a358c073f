package nullable

import (
	"strconv"

	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/eval"
	"github.com/nullsql/nullsql/pkg/joinresolver"
	"github.com/nullsql/nullsql/pkg/nullerr"
	"github.com/nullsql/nullsql/pkg/scope"
	"github.com/nullsql/nullsql/pkg/token"
	"github.com/nullsql/nullsql/pkg/where"
)

// subAnalyzer resolves a nested SELECT (derived table, scalar subquery, or
// IN-subquery) to its combined projected row, against the given catalog.
type subAnalyzer func(*ast.SelectStmt) (Nullable, error)

func makeSubAnalyzer(cat *catalog.Catalog) subAnalyzer {
	return func(sel *ast.SelectStmt) (Nullable, error) {
		sn, err := analyzeSelectStmt(sel, cat)
		if err != nil {
			return nil, err
		}
		return combineBranches(sn)
	}
}

func toEvalSubquery(sub subAnalyzer) eval.SubqueryAnalyzer {
	if sub == nil {
		return nil
	}
	return func(sel *ast.SelectStmt) ([]eval.Result, error) {
		return sub(sel)
	}
}

// populateFrom installs the FROM clause's base table and every joined
// relation into ev's scope, builds the join-resolver tree for the chain,
// and commits the resolved per-table nullabilities into its WAL (§4.3, §4.6
// step 2). An INNER or CROSS join's equijoin predicate — whether written as
// an ON condition, a USING(col, ...) list, or an implicit NATURAL join — is
// additionally run through the same narrowing as a WHERE clause: since
// those joins drop any row failing the predicate, a column proven non-null
// by it holds for every row the join actually produces — the same
// "Inner-join preserves non-null on base" rule that exempts
// LEFT/RIGHT/FULL, whose predicate only decides matching, not row
// survival.
func populateFrom(from *ast.FromClause, ev *eval.Evaluator, cat *catalog.Catalog, sub subAnalyzer) error {
	if from == nil {
		return nil
	}
	sc, w := ev.Scope, ev.WAL

	base, err := addRelationToScope(from.Source, sc, cat, sub)
	if err != nil {
		return err
	}
	resolver := joinresolver.FromBase(base.ID)

	for _, join := range from.Joins {
		right, err := addRelationToScope(join.Right, sc, cat, sub)
		if err != nil {
			return err
		}

		others, err := referencedOtherTables(join, sc, base, right)
		if err != nil {
			return err
		}

		kind := joinKindOf(join.Type)
		pivot := base.ID
		if len(others) > 0 {
			pivot = others[0]
		}
		resolver.AddLeaf(pivot, right.ID)
		resolver.ApplyJoin(kind, right.ID, others)

		// Commit the resolver's current view before narrowing this join's
		// predicate, so a narrowing fact always lands newer than (and so
		// wins over) the join-induced fact it is meant to override.
		for _, tn := range resolver.GetNullables() {
			w.RecordTable(tn.Table, tn.Nullable)
		}

		if kind == joinresolver.Inner || kind == joinresolver.Cross {
			if pred := equijoinPredicate(join, base, right, sc); pred != nil {
				if err := where.Narrow(pred, sc, w, ev); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func joinKindOf(t ast.JoinType) joinresolver.JoinKind {
	switch t {
	case ast.JoinLeft:
		return joinresolver.Left
	case ast.JoinRight:
		return joinresolver.Right
	case ast.JoinFull:
		return joinresolver.Full
	case ast.JoinCross, ast.JoinComma:
		return joinresolver.Cross
	default:
		return joinresolver.Inner
	}
}

// equijoinPredicate returns the narrowable predicate for an INNER/CROSS
// join: the ON condition verbatim, or the AND-chain of column equalities a
// USING(...) list or NATURAL join compiles down to (§4.0). nil means the
// join carries nothing to narrow (a plain CROSS JOIN with no condition).
func equijoinPredicate(join *ast.Join, base, right *scope.Table, sc *scope.Scope) ast.Expr {
	switch {
	case join.Condition != nil:
		return join.Condition
	case len(join.Using) > 0:
		return usingEquality(join.Using, base, right)
	case join.Natural:
		return naturalEquality(sc, right)
	default:
		return nil
	}
}

// usingEquality builds the AND-chain of equalities a USING(col, ...) list
// compiles down to, against base the way referencedOtherTables already
// treats it for join-resolver purposes.
func usingEquality(cols []string, base, right *scope.Table) ast.Expr {
	var expr ast.Expr
	for _, col := range cols {
		expr = andExpr(expr, columnEquality(base, right, col))
	}
	return expr
}

// naturalEquality builds the AND-chain of equalities a NATURAL JOIN
// compiles down to: one equality per column right shares by name with an
// already in-scope table.
func naturalEquality(sc *scope.Scope, right *scope.Table) ast.Expr {
	var expr ast.Expr
	for _, t := range sc.Tables() {
		if t.ID == right.ID {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := right.Column(c.Name); ok {
				expr = andExpr(expr, columnEquality(t, right, c.Name))
			}
		}
	}
	return expr
}

func columnEquality(left, right *scope.Table, col string) ast.Expr {
	return &ast.BinaryExpr{
		Left:  &ast.Identifier{Segments: []string{left.EffectiveName, col}},
		Op:    token.EQ,
		Right: &ast.Identifier{Segments: []string{right.EffectiveName, col}},
	}
}

func andExpr(acc, next ast.Expr) ast.Expr {
	if acc == nil {
		return next
	}
	return &ast.BinaryExpr{Left: acc, Op: token.AND, Right: next}
}

// referencedOtherTables determines the set of already-present tables a
// join's predicate references, excluding the just-added table itself.
func referencedOtherTables(join *ast.Join, sc *scope.Scope, base, added *scope.Table) ([]scope.TableId, error) {
	switch {
	case join.Natural:
		return commonColumnTables(sc, added), nil
	case len(join.Using) > 0:
		return []scope.TableId{base.ID}, nil
	case join.Condition != nil:
		return referencedTablesInExpr(join.Condition, sc, added.ID)
	default:
		return nil, nil
	}
}

func referencedTablesInExpr(expr ast.Expr, sc *scope.Scope, exclude scope.TableId) ([]scope.TableId, error) {
	seen := map[scope.TableId]bool{}
	var out []scope.TableId
	for _, id := range collectIdentifiers(expr) {
		table, _, err := sc.ResolveColumn(id.Pos(), id.Segments)
		if err != nil {
			return nil, err
		}
		if table.ID == exclude || seen[table.ID] {
			continue
		}
		seen[table.ID] = true
		out = append(out, table.ID)
	}
	return out, nil
}

// commonColumnTables finds every already in-scope table (besides added)
// that shares a column name with added — the implicit predicate a NATURAL
// JOIN compiles down to.
func commonColumnTables(sc *scope.Scope, added *scope.Table) []scope.TableId {
	var out []scope.TableId
	for _, t := range sc.Tables() {
		if t.ID == added.ID {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := added.Column(c.Name); ok {
				out = append(out, t.ID)
				break
			}
		}
	}
	return out
}

func addRelationToScope(ref ast.TableRef, sc *scope.Scope, cat *catalog.Catalog, sub subAnalyzer) (*scope.Table, error) {
	switch r := ref.(type) {
	case *ast.TableName:
		desc, ok := cat.Lookup(r.Schema, r.Name)
		if !ok {
			return nil, &nullerr.UnknownTableError{Pos: r.Pos(), Name: r.Name}
		}
		effective := r.Alias
		if effective == "" {
			effective = r.Name
		}
		return sc.AddTable(desc.Name, effective, descriptorColumns(desc)), nil

	case *ast.DerivedTable:
		if sub == nil {
			return nil, &nullerr.UnsupportedConstructError{Pos: r.Pos(), Message: "derived table analysis unavailable"}
		}
		row, err := sub(r.Select)
		if err != nil {
			return nil, err
		}
		effective := r.Alias
		if effective == "" {
			effective = "derived"
		}
		return sc.AddTable(effective, effective, rowToColumnSpecs(row)), nil

	default:
		return nil, &nullerr.UnsupportedConstructError{Pos: ref.Pos(), Message: "unsupported FROM relation"}
	}
}

func descriptorColumns(desc *catalog.TableDescriptor) []scope.ColumnSpec {
	specs := make([]scope.ColumnSpec, len(desc.Columns))
	for i, c := range desc.Columns {
		specs[i] = scope.ColumnSpec{Name: c.Name, Nullable: c.Nullable}
	}
	return specs
}

func rowToColumnSpecs(row Nullable) []scope.ColumnSpec {
	specs := make([]scope.ColumnSpec, len(row))
	for i, r := range row {
		name := r.Place.Name
		if name == "" {
			name = generatedColumnName(i)
		}
		nullable := true
		if r.Value != nil {
			nullable = *r.Value
		}
		specs[i] = scope.ColumnSpec{Name: name, Nullable: nullable}
	}
	return specs
}

func generatedColumnName(i int) string {
	return "column" + strconv.Itoa(i+1)
}
