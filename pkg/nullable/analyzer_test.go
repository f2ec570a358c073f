package nullable

import (
	"testing"

	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/dialect"
)

func usersPetsCatalog() *catalog.Catalog {
	return catalog.New(
		&catalog.TableDescriptor{Name: "users", Columns: []catalog.ColumnDescriptor{
			{Name: "id", Nullable: false},
			{Name: "username", Nullable: false},
			{Name: "email", Nullable: true},
			{Name: "pet_id", Nullable: false},
		}},
		&catalog.TableDescriptor{Name: "pets", Columns: []catalog.ColumnDescriptor{
			{Name: "pet_id", Nullable: false},
			{Name: "pet_name", Nullable: false},
		}},
	)
}

func mustInfer(t *testing.T, query string, cat *catalog.Catalog, requested ...string) []bool {
	t.Helper()
	a, err := New(query, cat, dialect.Postgres)
	if err != nil {
		t.Fatalf("New(%q) error: %v", query, err)
	}
	got, err := a.Infer(requested)
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	return got
}

func assertBools(t *testing.T, got, want []bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v (full: got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}

// Scenario 1 from the end-to-end property list: baseline catalog nullability.
func TestInfer_Baseline(t *testing.T) {
	got := mustInfer(t, "SELECT users.id, username, email FROM users", usersPetsCatalog(), "id", "username", "email")
	assertBools(t, got, []bool{false, false, true})
}

// Scenario 2: LEFT JOIN makes every joined-side column nullable regardless
// of its catalog declaration.
func TestInfer_LeftJoinUsing(t *testing.T) {
	got := mustInfer(t,
		"SELECT users.id, users.username, pets.pet_id, pets.pet_name FROM users LEFT JOIN pets USING(pet_id)",
		usersPetsCatalog(), "id", "username", "pet_id", "pet_name")
	assertBools(t, got, []bool{false, false, true, true})
}

// Scenario 5: coalesce's non-null-iff-any-argument-non-null rule.
func TestInfer_Coalesce(t *testing.T) {
	got := mustInfer(t,
		"SELECT coalesce(NULL, 1), coalesce(NULL), coalesce()",
		catalog.New(), "a", "b", "c")
	assertBools(t, got, []bool{false, true, true})
}

// Scenario testing WHERE narrowing through a LEFT JOIN: a later `IS NOT
// NULL` on the joined side overrides the join-induced nullability.
func TestInfer_WhereNarrowingThroughLeftJoin(t *testing.T) {
	cat := catalog.New(
		&catalog.TableDescriptor{Name: "agenda", Columns: []catalog.ColumnDescriptor{
			{Name: "agenda_id", Nullable: false},
			{Name: "startdate", Nullable: false},
			{Name: "user_id", Nullable: true},
		}},
		&catalog.TableDescriptor{Name: "users", Columns: []catalog.ColumnDescriptor{
			{Name: "user_id", Nullable: false},
			{Name: "email", Nullable: false},
			{Name: "age", Nullable: true},
		}},
	)
	got := mustInfer(t, `
		SELECT a.agenda_id, a.startdate, u.user_id, u.email, u.age
		FROM agenda a
		LEFT JOIN users u ON a.user_id = u.user_id
		WHERE u.email IS NOT NULL
	`, cat, "agenda_id", "startdate", "user_id", "email", "age")
	assertBools(t, got, []bool{false, false, false, false, true})
}

// Scenario 3 from the end-to-end property list: a LEFT JOIN followed by an
// INNER JOIN through the already-nullable joined table. The INNER JOIN only
// resets a table that is currently the tree's root, so the nullability
// introduced by the LEFT JOIN survives into the chained table too.
func TestInfer_InnerAndLeftChain(t *testing.T) {
	cat := catalog.New(
		&catalog.TableDescriptor{Name: "users", Columns: []catalog.ColumnDescriptor{
			{Name: "id", Nullable: false},
			{Name: "username", Nullable: false},
			{Name: "pet_id", Nullable: true},
		}},
		&catalog.TableDescriptor{Name: "pets", Columns: []catalog.ColumnDescriptor{
			{Name: "pet_id", Nullable: false},
			{Name: "pet_name", Nullable: false},
			{Name: "plant_id", Nullable: true},
		}},
		&catalog.TableDescriptor{Name: "plants", Columns: []catalog.ColumnDescriptor{
			{Name: "plant_id", Nullable: false},
			{Name: "plant_name", Nullable: false},
		}},
	)
	got := mustInfer(t, `
		SELECT users.id, users.username, pets.pet_id, pets.pet_name, plants.plant_id, plants.plant_name
		FROM users
		LEFT JOIN pets ON pets.pet_id = users.pet_id
		INNER JOIN plants ON plants.plant_id = pets.plant_id
	`, cat, "id", "username", "pet_id", "pet_name", "plant_id", "plant_name")
	assertBools(t, got, []bool{false, false, true, true, true, true})
}

// Scenario 3b: an INNER JOIN whose ON predicate equates a NOT NULL base
// column to the joined side's column narrows that joined column non-null,
// without forcing the rest of the joined table non-null.
func TestInfer_InnerJoinNarrowsPredicateColumn(t *testing.T) {
	cat := catalog.New(
		&catalog.TableDescriptor{Name: "a", Columns: []catalog.ColumnDescriptor{
			{Name: "k", Nullable: false},
		}},
		&catalog.TableDescriptor{Name: "b", Columns: []catalog.ColumnDescriptor{
			{Name: "k", Nullable: true},
			{Name: "v", Nullable: true},
		}},
	)
	got := mustInfer(t,
		"SELECT b.k, b.v FROM a INNER JOIN b ON b.k = a.k",
		cat, "k", "v")
	assertBools(t, got, []bool{false, true})
}

// An INNER JOIN USING(...) narrows its shared column the same way the
// equivalent ON form does, since USING(k) compiles down to ON a.k = b.k.
func TestInfer_InnerJoinUsingNarrowsSharedColumn(t *testing.T) {
	cat := catalog.New(
		&catalog.TableDescriptor{Name: "a", Columns: []catalog.ColumnDescriptor{
			{Name: "k", Nullable: false},
		}},
		&catalog.TableDescriptor{Name: "b", Columns: []catalog.ColumnDescriptor{
			{Name: "k", Nullable: true},
			{Name: "v", Nullable: true},
		}},
	)
	got := mustInfer(t,
		"SELECT b.k, b.v FROM a INNER JOIN b USING(k)",
		cat, "k", "v")
	assertBools(t, got, []bool{false, true})
}

// A NATURAL INNER JOIN narrows every shared column exactly as its implied
// ON a.k = b.k equality would.
func TestInfer_NaturalJoinNarrowsSharedColumn(t *testing.T) {
	cat := catalog.New(
		&catalog.TableDescriptor{Name: "a", Columns: []catalog.ColumnDescriptor{
			{Name: "k", Nullable: false},
		}},
		&catalog.TableDescriptor{Name: "b", Columns: []catalog.ColumnDescriptor{
			{Name: "k", Nullable: true},
			{Name: "v", Nullable: true},
		}},
	)
	got := mustInfer(t,
		"SELECT b.k, b.v FROM a NATURAL JOIN b",
		cat, "k", "v")
	assertBools(t, got, []bool{false, true})
}

// Scenario 6: a RIGHT JOIN chained after an earlier join flips the
// previously-established tables nullable and marks the newly added table
// non-null.
func TestInfer_DoubleRightJoin(t *testing.T) {
	cat := catalog.New(
		&catalog.TableDescriptor{Name: "a", Columns: []catalog.ColumnDescriptor{
			{Name: "id", Nullable: false},
		}},
		&catalog.TableDescriptor{Name: "b", Columns: []catalog.ColumnDescriptor{
			{Name: "id", Nullable: false},
			{Name: "a_id", Nullable: false},
		}},
		&catalog.TableDescriptor{Name: "c", Columns: []catalog.ColumnDescriptor{
			{Name: "id", Nullable: false},
			{Name: "b_id", Nullable: false},
		}},
	)
	got := mustInfer(t, `
		SELECT a.id, b.id, c.id
		FROM a
		RIGHT JOIN b ON b.a_id = a.id
		RIGHT JOIN c ON c.b_id = b.id
	`, cat, "id", "id", "id")
	assertBools(t, got, []bool{true, true, false})
}

func TestInfer_Union_OrsBranchesByPosition(t *testing.T) {
	cat := catalog.New(
		&catalog.TableDescriptor{Name: "a", Columns: []catalog.ColumnDescriptor{{Name: "x", Nullable: false}}},
		&catalog.TableDescriptor{Name: "b", Columns: []catalog.ColumnDescriptor{{Name: "x", Nullable: true}}},
	)
	got := mustInfer(t, "SELECT x FROM a UNION SELECT x FROM b", cat, "x")
	assertBools(t, got, []bool{true})
}

func TestInfer_CTEMaterializesProjectedNullability(t *testing.T) {
	cat := catalog.New(&catalog.TableDescriptor{Name: "orders", Columns: []catalog.ColumnDescriptor{
		{Name: "id", Nullable: false},
		{Name: "total", Nullable: true},
	}})
	got := mustInfer(t, `
		WITH recent AS (SELECT id, total FROM orders WHERE total IS NOT NULL)
		SELECT id, total FROM recent
	`, cat, "id", "total")
	assertBools(t, got, []bool{false, false})
}

func TestInfer_InsertReturning(t *testing.T) {
	cat := catalog.New(&catalog.TableDescriptor{Name: "users", Columns: []catalog.ColumnDescriptor{
		{Name: "id", Nullable: false},
		{Name: "email", Nullable: true},
	}})
	got := mustInfer(t, "INSERT INTO users (email) VALUES ('a@example.com') RETURNING id, email", cat, "id", "email")
	assertBools(t, got, []bool{false, true})
}

func TestInfer_CreateTableIsEmptyResult(t *testing.T) {
	got := mustInfer(t, "CREATE TABLE foo (id int)", catalog.New())
	assertBools(t, got, []bool{})
}
