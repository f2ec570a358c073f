// Package catalog describes the tables and columns the nullability analyzer
// is allowed to assume facts about. It is supplied by the caller (typically
// loaded from a database's information_schema or a static schema file) and
// never mutated by the analyzer itself; CTE materialization builds a
// layered view over it instead of writing into it (see Catalog.WithTable).
package catalog

import "strings"

// ColumnDescriptor declares one column of a table.
type ColumnDescriptor struct {
	Name     string
	Nullable bool
}

// TableDescriptor declares one table or view and its columns, in
// declaration order. Column order matters: `SELECT *` expands columns in
// this order.
type TableDescriptor struct {
	Schema  string
	Name    string
	Columns []ColumnDescriptor
}

// QualifiedName returns "schema.name", or bare "name" when Schema is empty.
func (t *TableDescriptor) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Column looks up a column by name, case-insensitively, as SQL identifiers
// are by convention folded to lower case.
func (t *TableDescriptor) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// Catalog is the set of tables known to the analyzer for one query.
type Catalog struct {
	tables map[string]*TableDescriptor
	order  []string
}

// New builds a Catalog from a list of table descriptors. Later entries with
// the same qualified name overwrite earlier ones.
func New(tables ...*TableDescriptor) *Catalog {
	c := &Catalog{tables: make(map[string]*TableDescriptor, len(tables))}
	for _, t := range tables {
		c.Put(t)
	}
	return c
}

// Put registers or replaces a table descriptor.
func (c *Catalog) Put(t *TableDescriptor) {
	key := strings.ToLower(t.QualifiedName())
	if _, exists := c.tables[key]; !exists {
		c.order = append(c.order, key)
	}
	c.tables[key] = t
}

// Lookup resolves a table by schema-qualified or bare name,
// case-insensitively. A bare name matches any schema when exactly one table
// with that name exists; ambiguous bare lookups return ok=false.
func (c *Catalog) Lookup(schema, name string) (*TableDescriptor, bool) {
	if schema != "" {
		t, ok := c.tables[strings.ToLower(schema+"."+name)]
		return t, ok
	}
	if t, ok := c.tables[strings.ToLower(name)]; ok {
		return t, ok
	}
	var match *TableDescriptor
	found := 0
	lname := strings.ToLower(name)
	for _, key := range c.order {
		t := c.tables[key]
		if strings.EqualFold(t.Name, lname) {
			match = t
			found++
		}
	}
	if found == 1 {
		return match, true
	}
	return nil, false
}

// Tables returns every registered table in registration order.
func (c *Catalog) Tables() []*TableDescriptor {
	out := make([]*TableDescriptor, len(c.order))
	for i, key := range c.order {
		out[i] = c.tables[key]
	}
	return out
}

// WithTable returns a shallow copy of c with t added or replacing an
// existing entry of the same name. Used by CTE materialization (§4.8) so a
// WITH clause can extend the catalog without mutating the caller's Catalog.
func (c *Catalog) WithTable(t *TableDescriptor) *Catalog {
	next := New(c.Tables()...)
	next.Put(t)
	return next
}
