// Package joinresolver computes per-table effective nullability for a
// FROM-clause join chain. It builds a tree rooted at the driving table of
// the FROM clause; each join attaches the newly referenced table as a leaf
// beneath the left-most already-present table its ON/USING predicate
// mentions, then applies a join-kind-specific nullability rule over the
// tree. A preorder walk then resolves every node's effective nullability by
// inheriting from the nearest ancestor that has one.
package joinresolver

import "github.com/nullsql/nullsql/pkg/scope"

// JoinKind identifies which per-join nullability rule to apply.
type JoinKind int

// Supported join kinds.
const (
	Inner JoinKind = iota
	Left
	Right
	Full
	Cross
)

type node struct {
	table    scope.TableId
	nullable *bool
	children []*node
}

// Resolver owns the join tree for one FROM clause.
type Resolver struct {
	root  *node
	index map[scope.TableId]*node
}

// FromBase creates a root node for the driving table of a FROM clause. The
// driving table can never itself be a null row, so it starts non-nullable.
func FromBase(base scope.TableId) *Resolver {
	f := false
	root := &node{table: base, nullable: &f}
	return &Resolver{root: root, index: map[scope.TableId]*node{base: root}}
}

// Has reports whether a table has already been added to the tree.
func (r *Resolver) Has(table scope.TableId) bool {
	_, ok := r.index[table]
	return ok
}

// AddLeaf attaches added as a new child of pivot, with unknown (inherited)
// nullability until a join rule sets it. If pivot is unknown the leaf is
// attached under the root, which keeps the tree connected for malformed or
// unresolvable join predicates rather than failing the whole analysis.
func (r *Resolver) AddLeaf(pivot, added scope.TableId) {
	if r.Has(added) {
		return
	}
	parent, ok := r.index[pivot]
	if !ok {
		parent = r.root
	}
	n := &node{table: added}
	parent.children = append(parent.children, n)
	r.index[added] = n
}

// setNullable applies the depth-aware overwrite rule: at the root, a nil
// value is ignored (the driving table's non-null status never reverts to
// unknown); at any other depth, any value — including nil — overwrites.
// ApplyJoin uses it for the LEFT, RIGHT and FULL rules; the INNER rule goes
// through setNullableIfBase instead and so never changes a non-root node.
func (r *Resolver) setNullable(table scope.TableId, nullable *bool) {
	n, ok := r.index[table]
	if !ok {
		return
	}
	if n == r.root && nullable == nil {
		return
	}
	n.nullable = nullable
}

// setNullableIfBase applies b only when table is currently the tree's root,
// used by the INNER-join rule: "for every other referenced table that is
// currently the base/root, set it non-nullable."
func (r *Resolver) setNullableIfBase(table scope.TableId, b bool) {
	if n, ok := r.index[table]; ok && n == r.root {
		n.nullable = &b
	}
}

func boolPtr(b bool) *bool { return &b }

// ApplyJoin applies the nullability effect of one join to the tree. added
// is the table just attached by AddLeaf; others is every other table the
// join's predicate referenced.
func (r *Resolver) ApplyJoin(kind JoinKind, added scope.TableId, others []scope.TableId) {
	switch kind {
	case Inner, Cross:
		for _, o := range others {
			r.setNullableIfBase(o, false)
		}
	case Left:
		r.setNullable(added, boolPtr(true))
	case Right:
		for _, o := range others {
			r.setNullable(o, boolPtr(true))
		}
		r.setNullable(added, boolPtr(false))
	case Full:
		r.setNullable(added, boolPtr(true))
		for _, o := range others {
			r.setNullable(o, boolPtr(true))
		}
	}
}

// TableNullability pairs a table with its resolved effective nullability.
type TableNullability struct {
	Table    scope.TableId
	Nullable bool
}

// GetNullables performs the preorder resolution walk described above. It
// does not modify the tree, so it can be called again after further joins.
func (r *Resolver) GetNullables() []TableNullability {
	var out []TableNullability
	var walk func(n *node, inherited bool)
	walk = func(n *node, inherited bool) {
		effective := inherited
		if n.nullable != nil {
			effective = *n.nullable
		}
		out = append(out, TableNullability{Table: n.table, Nullable: effective})
		for _, c := range n.children {
			walk(c, effective)
		}
	}
	rootEffective := false
	if r.root.nullable != nil {
		rootEffective = *r.root.nullable
	}
	walk(r.root, rootEffective)
	return out
}
