package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sagarc03/folio"
)

// quoteIdentifier quotes a SQLite identifier. Table names are checked with
// folio.IsValidTableName before they get here.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// schemaStatements returns the DDL for the catalog, folders first. Every
// statement is idempotent.
func schemaStatements(tables folio.Tables) []string {
	folders := quoteIdentifier(tables.Folders)
	assets := quoteIdentifier(tables.Assets)

	return []string{
		`CREATE TABLE IF NOT EXISTS ` + folders + ` (
			path TEXT NOT NULL PRIMARY KEY,
			name TEXT NOT NULL,
			parent TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ` + quoteIdentifier("idx_"+tables.Folders+"_parent") +
			` ON ` + folders + ` (parent, name)`,
		`CREATE TABLE IF NOT EXISTS ` + assets + ` (
			public_id TEXT NOT NULL PRIMARY KEY,
			folder TEXT NOT NULL,
			format TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			tags TEXT NOT NULL,
			etag TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ` + quoteIdentifier("idx_"+tables.Assets+"_folder_list") +
			` ON ` + assets + ` (folder, created_at)`,
	}
}

// Migrate creates the catalog tables and indexes if they do not exist. All
// statements run in one transaction, so a failed migration changes nothing.
func Migrate(ctx context.Context, db *sql.DB, tables folio.Tables) error {
	return inTx(ctx, db, schemaStatements(tables))
}

// DropTables removes the catalog tables, assets first.
func DropTables(ctx context.Context, db *sql.DB, tables folio.Tables) error {
	return inTx(ctx, db, []string{
		`DROP TABLE IF EXISTS ` + quoteIdentifier(tables.Assets),
		`DROP TABLE IF EXISTS ` + quoteIdentifier(tables.Folders),
	})
}

func inTx(ctx context.Context, db *sql.DB, statements []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
