package db

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidSchemaName reports whether s can be interpolated into DDL as a bare
// identifier.
func ValidSchemaName(s string) bool {
	return len(s) <= 63 && schemaPattern.MatchString(s)
}

// EnsureSchema creates schema if it does not exist and applies all pending
// migrations from files. A nil files skips migrations.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, schema string, files fs.FS) (int, error) {
	if !ValidSchemaName(schema) {
		return 0, fmt.Errorf("invalid schema name: %q", schema)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return 0, fmt.Errorf("create schema %s: %w", schema, err)
	}

	if files == nil {
		return 0, nil
	}
	n, err := NewMigrator(pool, files, schema).Up(ctx)
	if err != nil {
		return n, fmt.Errorf("run migrations for %s: %w", schema, err)
	}
	return n, nil
}
