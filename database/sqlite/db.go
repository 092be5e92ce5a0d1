package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/internal"
)

var assetsSchema = internal.Schema{
	"public_id":  {Type: "text"},
	"folder":     {Type: "text"},
	"format":     {Type: "text"},
	"width":      {Type: "integer"},
	"height":     {Type: "integer"},
	"bytes":      {Type: "integer"},
	"tags":       {Type: "text"},
	"etag":       {Type: "text"},
	"created_at": {Type: "text"},
	"updated_at": {Type: "text"},
}

var foldersSchema = internal.Schema{
	"path":       {Type: "text"},
	"name":       {Type: "text"},
	"parent":     {Type: "text"},
	"created_at": {Type: "text"},
}

// tableColumns reads a table's columns. A missing table has none.
func tableColumns(ctx context.Context, db *sql.DB, table string) (internal.Schema, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := internal.Schema{}
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		cols[name] = internal.Column{Type: dataType, Nullable: notNull == 0}
	}

	return cols, rows.Err()
}

// ValidateSchema checks that every catalog table exists with the expected columns.
func ValidateSchema(ctx context.Context, db *sql.DB, tables folio.Tables) error {
	checks := []struct {
		table    string
		expected internal.Schema
	}{
		{tables.Assets, assetsSchema},
		{tables.Folders, foldersSchema},
	}

	for _, c := range checks {
		table, expected := c.table, c.expected
		if !folio.IsValidTableName(table) {
			return fmt.Errorf("validate schema: invalid table name %q", table)
		}

		actual, err := tableColumns(ctx, db, table)
		if err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}

		if err := internal.CompareSchema(table, expected, actual); err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
	}

	return nil
}
