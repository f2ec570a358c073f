// Package catalogload builds a pkg/catalog.Catalog by introspecting a live
// schema over database/sql, so a host application can point the analyzer at
// a real database instead of hand-building TableDescriptors. It never
// touches the query being analyzed — only the schema the Catalog describes.
package catalogload

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/dialect"
)

// FromDB introspects every base table and view visible to db under schema
// (Postgres) and loads it into a Catalog. An empty schema means "public".
// SQLite ignores schema. logger receives debug-level progress; a
// nil logger falls back to slog.Default().
func FromDB(ctx context.Context, db *sql.DB, d dialect.Dialect, schema string, logger *slog.Logger) (*catalog.Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("introspecting catalog", "dialect", d, "schema", schema)

	var cat *catalog.Catalog
	var err error
	switch d {
	case dialect.Postgres:
		cat, err = fromPostgres(ctx, db, schema)
	case dialect.Sqlite:
		cat, err = fromSqlite(ctx, db)
	default:
		return nil, fmt.Errorf("catalogload: unsupported dialect %v", d)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog introspection complete", "tables", len(cat.Tables()))
	return cat, nil
}

func fromPostgres(ctx context.Context, db *sql.DB, schema string) (*catalog.Catalog, error) {
	if schema == "" {
		schema = "public"
	}
	rows, err := db.QueryContext(ctx, `
		SELECT table_schema, table_name, column_name, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1
		ORDER BY table_name, ordinal_position
	`, schema)
	if err != nil {
		return nil, fmt.Errorf("catalogload: querying information_schema.columns: %w", err)
	}
	defer rows.Close()

	tables := map[string]*catalog.TableDescriptor{}
	var order []string
	for rows.Next() {
		var tableSchema, tableName, columnName, isNullable string
		var ordinal int
		if err := rows.Scan(&tableSchema, &tableName, &columnName, &isNullable, &ordinal); err != nil {
			return nil, fmt.Errorf("catalogload: scanning column row: %w", err)
		}
		key := tableSchema + "." + tableName
		t, ok := tables[key]
		if !ok {
			t = &catalog.TableDescriptor{Schema: tableSchema, Name: tableName}
			tables[key] = t
			order = append(order, key)
		}
		t.Columns = append(t.Columns, catalog.ColumnDescriptor{
			Name:     columnName,
			Nullable: isNullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalogload: reading column rows: %w", err)
	}

	descs := make([]*catalog.TableDescriptor, 0, len(order))
	for _, key := range order {
		descs = append(descs, tables[key])
	}
	return catalog.New(descs...), nil
}

func fromSqlite(ctx context.Context, db *sql.DB) (*catalog.Catalog, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
	`)
	if err != nil {
		return nil, fmt.Errorf("catalogload: querying sqlite_master: %w", err)
	}
	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("catalogload: scanning table name: %w", err)
		}
		tableNames = append(tableNames, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("catalogload: reading table names: %w", err)
	}
	rows.Close()

	descs := make([]*catalog.TableDescriptor, 0, len(tableNames))
	for _, name := range tableNames {
		desc, err := sqliteTableInfo(ctx, db, name)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return catalog.New(descs...), nil
}

func sqliteTableInfo(ctx context.Context, db *sql.DB, table string) (*catalog.TableDescriptor, error) {
	// table_info is a pragma, not a parameterizable statement; table comes
	// from sqlite_master, never user input.
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("catalogload: querying table_info(%s): %w", table, err)
	}
	defer rows.Close()

	desc := &catalog.TableDescriptor{Name: table}
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("catalogload: scanning table_info row: %w", err)
		}
		desc.Columns = append(desc.Columns, catalog.ColumnDescriptor{
			Name:     name,
			Nullable: notNull == 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalogload: reading table_info rows: %w", err)
	}
	return desc, nil
}
