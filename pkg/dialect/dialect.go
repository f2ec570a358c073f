// Package dialect identifies the SQL dialect a query is analyzed under and
// reports each dialect's placeholder style; it never talks to a database.
// The lexer and parser accept the same syntax under every dialect, including
// both `$N` and `?` placeholders.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect names the SQL dialect a query is written in. The parser records
// it but accepts the same syntax for every value.
type Dialect int

// Supported dialects.
const (
	Postgres Dialect = iota
	Sqlite
)

// String implements fmt.Stringer.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case Sqlite:
		return "sqlite"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Parse resolves a dialect name, as accepted on the Analyzer constructor and
// CLI flags. It is case-insensitive.
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return Sqlite, nil
	default:
		return Postgres, fmt.Errorf("dialect: unknown dialect %q", name)
	}
}

// PlaceholderStyle identifies how bind parameters are written.
type PlaceholderStyle int

// Placeholder styles.
const (
	PlaceholderDollar     PlaceholderStyle = iota // $1, $2, ...
	PlaceholderQuestion                           // ?
)

// Placeholders reports the placeholder style used by d.
func (d Dialect) Placeholders() PlaceholderStyle {
	switch d {
	case Sqlite:
		return PlaceholderQuestion
	default:
		return PlaceholderDollar
	}
}
