// Package wal implements the append-only, newest-wins nullability fact log
// described in the system's design notes: not durability, just an in-memory
// log of "table T is (non-)nullable" and "column C is (non-)nullable"
// entries scanned newest-first so a later WHERE clause can override an
// earlier join-induced fact.
package wal

import "github.com/nullsql/nullsql/pkg/scope"

type tableFact struct {
	table    scope.TableId
	nullable bool
}

type columnFact struct {
	table    scope.TableId
	column   scope.ColumnId
	nullable bool
}

// WAL is the per-statement-scope narrowing log. It is not safe for
// concurrent use; one WAL belongs to exactly one Scope for the lifetime of
// one SELECT body.
type WAL struct {
	tableFacts  []tableFact
	columnFacts []columnFact
}

// New creates an empty WAL.
func New() *WAL {
	return &WAL{}
}

// RecordTable appends a table-level nullability fact.
func (w *WAL) RecordTable(table scope.TableId, nullable bool) {
	w.tableFacts = append(w.tableFacts, tableFact{table: table, nullable: nullable})
}

// RecordColumn appends a column-level nullability fact.
func (w *WAL) RecordColumn(table scope.TableId, column scope.ColumnId, nullable bool) {
	w.columnFacts = append(w.columnFacts, columnFact{table: table, column: column, nullable: nullable})
}

// LookupTable scans newest-first for the most recent table-level fact.
func (w *WAL) LookupTable(table scope.TableId) (nullable bool, ok bool) {
	for i := len(w.tableFacts) - 1; i >= 0; i-- {
		if w.tableFacts[i].table == table {
			return w.tableFacts[i].nullable, true
		}
	}
	return false, false
}

// LookupColumn scans newest-first for the most recent column-level fact.
func (w *WAL) LookupColumn(table scope.TableId, column scope.ColumnId) (nullable bool, ok bool) {
	for i := len(w.columnFacts) - 1; i >= 0; i-- {
		f := w.columnFacts[i]
		if f.table == table && f.column == column {
			return f.nullable, true
		}
	}
	return false, false
}
