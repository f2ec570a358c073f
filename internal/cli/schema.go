package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/dialect"
)

// loadCatalog resolves the catalog for a subcommand, preferring --dsn (a
// live introspection via pkg/catalogload) over --schema (a static YAML
// file), and falling back to an empty Catalog when neither is given.
func loadCatalog(ctx context.Context, d dialect.Dialect, log *slog.Logger) (*catalog.Catalog, error) {
	switch {
	case dsnFlag != "":
		return loadCatalogFromDSN(ctx, d, dsnFlag, dbSchemaFlag, log)
	case schemaFilePath != "":
		return LoadSchemaFile(schemaFilePath)
	default:
		return catalog.New(), nil
	}
}

// schemaFile is the on-disk shape of a static catalog: a list of tables,
// each with its declared-nullability columns, loaded with koanf the same
// way the rest of the ambient config stack reads YAML.
type schemaFile struct {
	Tables []struct {
		Schema  string `koanf:"schema"`
		Name    string `koanf:"name"`
		Columns []struct {
			Name     string `koanf:"name"`
			Nullable bool   `koanf:"nullable"`
		} `koanf:"columns"`
	} `koanf:"tables"`
}

// LoadSchemaFile reads a YAML catalog description from path and builds the
// Catalog it describes.
func LoadSchemaFile(path string) (*catalog.Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", path, err)
	}

	var sf schemaFile
	if err := k.Unmarshal("", &sf); err != nil {
		return nil, fmt.Errorf("decoding schema file %s: %w", path, err)
	}

	descs := make([]*catalog.TableDescriptor, 0, len(sf.Tables))
	for _, t := range sf.Tables {
		desc := &catalog.TableDescriptor{Schema: t.Schema, Name: t.Name}
		for _, c := range t.Columns {
			desc.Columns = append(desc.Columns, catalog.ColumnDescriptor{Name: c.Name, Nullable: c.Nullable})
		}
		descs = append(descs, desc)
	}
	return catalog.New(descs...), nil
}
