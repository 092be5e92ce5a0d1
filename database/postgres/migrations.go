package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/folio"
)

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// schemaStatements returns the DDL for the catalog, folders first. Every
// statement is idempotent.
func schemaStatements(tables folio.Tables) []string {
	folders := ident(tables.Folders)
	assets := ident(tables.Assets)

	return []string{
		`CREATE TABLE IF NOT EXISTS ` + folders + ` (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			parent TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + ident("idx_"+tables.Folders+"_parent") +
			` ON ` + folders + ` (parent, name)`,
		`CREATE TABLE IF NOT EXISTS ` + assets + ` (
			public_id TEXT PRIMARY KEY,
			folder TEXT NOT NULL,
			format TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			bytes BIGINT NOT NULL,
			tags TEXT NOT NULL,
			etag TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + ident("idx_"+tables.Assets+"_folder_list") +
			` ON ` + assets + ` (folder, created_at DESC)`,
	}
}

// Migrate creates the catalog tables and indexes if they do not exist, in
// one transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables folio.Tables) error {
	if err := execAll(ctx, pool, schemaStatements(tables)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// DropTables removes the catalog tables, assets first.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables folio.Tables) error {
	err := execAll(ctx, pool, []string{
		`DROP TABLE IF EXISTS ` + ident(tables.Assets),
		`DROP TABLE IF EXISTS ` + ident(tables.Folders),
	})
	if err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

func execAll(ctx context.Context, pool *pgxpool.Pool, statements []string) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				line, _, _ := strings.Cut(stmt, "\n")
				return fmt.Errorf("exec %q: %w", strings.TrimSpace(line), err)
			}
		}
		return nil
	})
}
