// Package scope models the set of in-scope tables for one query body: the
// relations named in a FROM clause (including joined and derived tables),
// with alias rebinding and column resolution per the resolution order laid
// out for qualified and unqualified identifiers.
package scope

import (
	"strings"

	"github.com/nullsql/nullsql/pkg/nullerr"
	"github.com/nullsql/nullsql/pkg/token"
)

// TableId is a dense integer identifying one Table within a Scope.
type TableId int

// ColumnId is a dense integer identifying one Column within a Scope.
type ColumnId int

// Column is one column of a Table, carrying its catalog-declared
// nullability at the time the table entered scope.
type Column struct {
	ID       ColumnId
	Name     string
	Nullable bool
}

// Table is one relation in scope: a base table, a CTE reference, or a
// derived (subquery) table.
type Table struct {
	ID            TableId
	OriginalName  string // name as found in the catalog/CTE registry
	EffectiveName string // alias if supplied, else OriginalName
	Columns       []Column
}

// Column looks up a column of t by name, case-insensitively.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnSpec describes one column to install when a relation enters scope.
type ColumnSpec struct {
	Name     string
	Nullable bool
}

// Scope is the mutable per-query-body set of in-scope tables.
type Scope struct {
	tables      []*Table
	byName      map[string]*Table
	nextTableID TableId
	nextColID   ColumnId
}

// New creates an empty Scope.
func New() *Scope {
	return &Scope{byName: make(map[string]*Table)}
}

// AddTable installs a relation into scope under effectiveName, built from
// columns in catalog order. If a table with the same effective name is
// already present, the call is a no-op and returns the existing table
// (idempotent push, per the scope invariant that effective names are
// unique within one scope).
func (s *Scope) AddTable(originalName, effectiveName string, columns []ColumnSpec) *Table {
	key := strings.ToLower(effectiveName)
	if existing, ok := s.byName[key]; ok {
		return existing
	}

	t := &Table{ID: s.nextTableID, OriginalName: originalName, EffectiveName: effectiveName}
	s.nextTableID++
	for _, c := range columns {
		t.Columns = append(t.Columns, Column{ID: s.nextColID, Name: c.Name, Nullable: c.Nullable})
		s.nextColID++
	}
	s.tables = append(s.tables, t)
	s.byName[key] = t
	return t
}

// FindTableByName returns the table whose effective name matches name
// exactly (case-insensitively).
func (s *Scope) FindTableByName(name string) (*Table, bool) {
	t, ok := s.byName[strings.ToLower(name)]
	return t, ok
}

// Tables returns every in-scope table in insertion order.
func (s *Scope) Tables() []*Table {
	out := make([]*Table, len(s.tables))
	copy(out, s.tables)
	return out
}

// ResolveColumn resolves a (possibly qualified) identifier against this
// scope, following the two-step order: a single-segment name searches
// every table's columns (a match in more than one table is an
// AmbiguousColumnError); a
// qualified name matches its qualifier against effective name first, then
// original name, then resolves the column within that table.
func (s *Scope) ResolveColumn(pos token.Position, segments []string) (*Table, *Column, error) {
	if len(segments) == 0 {
		return nil, nil, &nullerr.UnsupportedConstructError{Pos: pos, Message: "empty identifier"}
	}

	if len(segments) == 1 {
		name := segments[0]
		var foundTable *Table
		var foundCol Column
		matches := 0
		for _, t := range s.tables {
			if c, ok := t.Column(name); ok {
				foundTable = t
				foundCol = c
				matches++
			}
		}
		switch matches {
		case 0:
			return nil, nil, &nullerr.UnknownColumnError{Pos: pos, Name: name}
		case 1:
			col := foundCol
			return foundTable, &col, nil
		default:
			return nil, nil, &nullerr.AmbiguousColumnError{Pos: pos, Name: name}
		}
	}

	qualifier := segments[len(segments)-2]
	colName := segments[len(segments)-1]

	table, ok := s.findByQualifier(qualifier)
	if !ok {
		return nil, nil, &nullerr.UnknownTableError{Pos: pos, Name: qualifier}
	}
	col, ok := table.Column(colName)
	if !ok {
		return nil, nil, &nullerr.UnknownColumnError{Pos: pos, Name: strings.Join(segments, ".")}
	}
	return table, &col, nil
}

func (s *Scope) findByQualifier(qualifier string) (*Table, bool) {
	if t, ok := s.byName[strings.ToLower(qualifier)]; ok {
		return t, true
	}
	for _, t := range s.tables {
		if strings.EqualFold(t.OriginalName, qualifier) {
			return t, true
		}
	}
	return nil, false
}
