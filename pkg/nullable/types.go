// Package nullable is the statement driver: the entry point that dispatches
// on statement kind, wires the Scope/WAL/JoinResolver/Evaluator together
// for each SELECT body, materializes CTEs back into the catalog, and
// combines set-expression branches into a final per-column nullability
// vector.
package nullable

import "github.com/nullsql/nullsql/pkg/eval"

// Nullable is one produced row's ordered column results (§3).
type Nullable = []eval.Result

// StatementNullable aggregates the Nullable rows of every branch of a set
// expression (or every row of a VALUES list).
type StatementNullable = []Nullable
