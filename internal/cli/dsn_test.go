package cli

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullsql/nullsql/pkg/dialect"
)

func withMockOpenDB(t *testing.T, mockDB *sql.DB, wantDriver string) {
	t.Helper()
	orig := openDB
	openDB = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, wantDriver, driver)
		return mockDB, nil
	}
	t.Cleanup(func() { openDB = orig })
}

func TestInferCommand_DSN(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"table_schema", "table_name", "column_name", "is_nullable", "ordinal_position"}).
		AddRow("public", "users", "id", "NO", 1).
		AddRow("public", "users", "email", "YES", 2)
	mock.ExpectQuery("SELECT table_schema, table_name, column_name, is_nullable, ordinal_position").
		WithArgs("public").
		WillReturnRows(rows)

	withMockOpenDB(t, mockDB, "pgx")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"infer", "SELECT id, email FROM users",
		"--dsn", "postgres://example/db",
		"--columns", "id,email",
	})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "id\tnullable=false")
	assert.Contains(t, output, "email\tnullable=true")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCatalogFromDSN_UnsupportedDialect(t *testing.T) {
	_, err := loadCatalogFromDSN(context.Background(), dialect.Dialect(99), "unused", "", nil)
	assert.Error(t, err)
}
