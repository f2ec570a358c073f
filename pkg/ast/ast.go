// Package ast defines the typed syntax tree consumed by the nullability
// analyzer. A Parser (pkg/parser) builds these nodes from SQL text; nothing
// downstream re-parses or re-tokenizes.
package ast

import "github.com/nullsql/nullsql/pkg/token"

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for top-level statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TableRef is a marker interface for FROM-clause relations.
type TableRef interface {
	Node
	tableRefNode()
}

// NodeInfo carries the source position shared by most nodes.
type NodeInfo struct {
	Position token.Position
}

// Pos implements Node.
func (n NodeInfo) Pos() token.Position { return n.Position }
