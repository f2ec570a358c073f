package catalogload

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullsql/nullsql/internal/testutil"
	"github.com/nullsql/nullsql/pkg/dialect"
)

func TestFromDB_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"table_schema", "table_name", "column_name", "is_nullable", "ordinal_position"}).
		AddRow("public", "users", "id", "NO", 1).
		AddRow("public", "users", "email", "YES", 2)
	mock.ExpectQuery("SELECT table_schema, table_name, column_name, is_nullable, ordinal_position").
		WithArgs("public").
		WillReturnRows(rows)

	cat, err := FromDB(context.Background(), db, dialect.Postgres, "public", testutil.NewTestLogger(t))
	require.NoError(t, err)

	desc, ok := cat.Lookup("public", "users")
	require.True(t, ok)
	col, ok := desc.Column("id")
	require.True(t, ok)
	assert.False(t, col.Nullable)
	col, ok = desc.Column("email")
	require.True(t, ok)
	assert.True(t, col.Nullable)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFromDB_Sqlite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("users"))
	mock.ExpectQuery(`PRAGMA table_info\("users"\)`).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 1, nil, 1).
			AddRow(1, "email", "TEXT", 0, nil, 0))

	cat, err := FromDB(context.Background(), db, dialect.Sqlite, "", testutil.NewTestLogger(t))
	require.NoError(t, err)

	desc, ok := cat.Lookup("", "users")
	require.True(t, ok)
	col, _ := desc.Column("id")
	assert.False(t, col.Nullable)
	col, _ = desc.Column("email")
	assert.True(t, col.Nullable)

	require.NoError(t, mock.ExpectationsWereMet())
}
