package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/catalogload"
	"github.com/nullsql/nullsql/pkg/dialect"
)

// openDB is sql.Open, overridden in tests so --dsn can be exercised against
// a mock connection instead of a real driver.
var openDB = sql.Open

// driverName maps a Dialect to the database/sql driver name registered by
// this file's blank imports.
func driverName(d dialect.Dialect) (string, error) {
	switch d {
	case dialect.Postgres:
		return "pgx", nil
	case dialect.Sqlite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("cli: no database/sql driver registered for dialect %v", d)
	}
}

// loadCatalogFromDSN opens dsn against a live database and introspects its
// schema into a Catalog via pkg/catalogload.
func loadCatalogFromDSN(ctx context.Context, d dialect.Dialect, dsn, schema string, log *slog.Logger) (*catalog.Catalog, error) {
	name, err := driverName(d)
	if err != nil {
		return nil, err
	}
	db, err := openDB(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("cli: opening %s connection: %w", name, err)
	}
	defer db.Close()
	return catalogload.FromDB(ctx, db, d, schema, log)
}
