package parser

import (
	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/dialect"
)

// Parse lexes and parses a single SQL statement under the given dialect.
func Parse(src string, d dialect.Dialect) (ast.Stmt, error) {
	p, err := NewParser(src, d)
	if err != nil {
		return nil, err
	}
	stmt, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if len(p.errs) > 0 {
		return stmt, p.errs[0]
	}
	return stmt, nil
}
