// Package nullerr defines the error taxonomy the nullability analyzer
// surfaces to callers. Every error is terminal: the analyzer never attempts
// local recovery, it propagates the error with the offending AST fragment's
// source position attached.
package nullerr

import (
	"fmt"

	"github.com/nullsql/nullsql/pkg/token"
)

// UnknownTableError reports a FROM-clause relation absent from the catalog
// and the CTE registry.
type UnknownTableError struct {
	Pos  token.Position
	Name string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table or alias %q at line %d, column %d", e.Name, e.Pos.Line, e.Pos.Column)
}

// UnknownColumnError reports an identifier that does not resolve against
// any in-scope table.
type UnknownColumnError struct {
	Pos  token.Position
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q at line %d, column %d", e.Name, e.Pos.Line, e.Pos.Column)
}

// AmbiguousColumnError reports a single-segment identifier that resolves in
// more than one in-scope table with no tiebreak.
type AmbiguousColumnError struct {
	Pos  token.Position
	Name string
}

func (e *AmbiguousColumnError) Error() string {
	return fmt.Sprintf("ambiguous column reference %q at line %d, column %d", e.Name, e.Pos.Line, e.Pos.Column)
}

// UnsupportedConstructError reports an AST node outside the implemented
// subset.
type UnsupportedConstructError struct {
	Pos     token.Position
	Message string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("unsupported construct at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// UnsupportedFunctionError reports a function call outside the §4.4.1
// allow-list.
type UnsupportedFunctionError struct {
	Pos  token.Position
	Name string
}

func (e *UnsupportedFunctionError) Error() string {
	return fmt.Sprintf("unsupported function %q at line %d, column %d", e.Name, e.Pos.Line, e.Pos.Column)
}

// ShapeMismatchError reports UNION branches (or VALUES rows) of unequal
// width.
type ShapeMismatchError struct {
	Pos   token.Position
	Left  int
	Right int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch at line %d, column %d: %d columns vs %d", e.Pos.Line, e.Pos.Column, e.Left, e.Right)
}
