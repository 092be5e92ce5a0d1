package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/internal"
)

const timestamptz = "timestamp with time zone"

var assetsSchema = internal.Schema{
	"public_id":  {Type: "text"},
	"folder":     {Type: "text"},
	"format":     {Type: "text"},
	"width":      {Type: "integer"},
	"height":     {Type: "integer"},
	"bytes":      {Type: "bigint"},
	"tags":       {Type: "text"},
	"etag":       {Type: "text"},
	"created_at": {Type: timestamptz},
	"updated_at": {Type: timestamptz},
}

var foldersSchema = internal.Schema{
	"path":       {Type: "text"},
	"name":       {Type: "text"},
	"parent":     {Type: "text"},
	"created_at": {Type: timestamptz},
}

// tableColumns reads a table's columns from the current schema. A missing
// table has none.
func tableColumns(ctx context.Context, pool *pgxpool.Pool, table string) (internal.Schema, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := internal.Schema{}
	for rows.Next() {
		var name string
		var col internal.Column
		if err := rows.Scan(&name, &col.Type, &col.Nullable); err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		cols[name] = col
	}

	return cols, rows.Err()
}

// ValidateSchema checks that every catalog table exists with the expected columns.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables folio.Tables) error {
	checks := []struct {
		table    string
		expected internal.Schema
	}{
		{tables.Assets, assetsSchema},
		{tables.Folders, foldersSchema},
	}

	for _, c := range checks {
		if !folio.IsValidTableName(c.table) {
			return fmt.Errorf("validate schema: invalid table name %q", c.table)
		}

		actual, err := tableColumns(ctx, pool, c.table)
		if err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}

		if err := internal.CompareSchema(c.table, c.expected, actual); err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
	}

	return nil
}
