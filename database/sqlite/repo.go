// Package sqlite implements the asset catalog using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/internal"
)

var defaultNow = time.Now

type repo struct {
	db     *sql.DB
	tables folio.Tables
	now    func() time.Time
}

// NewRepo returns an AssetRepo over already migrated tables.
func NewRepo(db *sql.DB, tables folio.Tables) (folio.AssetRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &repo{db: db, tables: tables, now: defaultNow}, nil
}

const assetColumns = `public_id, folder, format, width, height, bytes, tags, etag, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (folio.Asset, error) {
	var a folio.Asset
	var tags, createdAt string

	if err := row.Scan(&a.PublicID, &a.Folder, &a.Format, &a.Width, &a.Height, &a.Bytes, &tags, &a.ETag, &createdAt); err != nil {
		return folio.Asset{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return folio.Asset{}, fmt.Errorf("parse created_at: %w", err)
	}

	a.CreatedAt = t
	a.Tags = internal.DecodeTags(tags)

	return a, nil
}

func (r *repo) Get(ctx context.Context, publicID string) (folio.Asset, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE public_id = ?`, assetColumns, quoteIdentifier(r.tables.Assets))

	a, err := scanAsset(r.db.QueryRowContext(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return folio.Asset{}, folio.ErrNotFound
		}
		return folio.Asset{}, fmt.Errorf("get: %w", err)
	}

	return a, nil
}

func (r *repo) Upsert(ctx context.Context, entry folio.AssetEntry) (folio.Asset, bool, error) {
	table := quoteIdentifier(r.tables.Assets)

	// Check if entry exists first to determine if this is an insert or update
	var existingCreatedAt string
	checkQuery := fmt.Sprintf(`SELECT created_at FROM %s WHERE public_id = ?`, table) //nolint:gosec // table name is validated
	err := r.db.QueryRowContext(ctx, checkQuery, entry.PublicID).Scan(&existingCreatedAt)
	isInsert := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isInsert {
		return folio.Asset{}, false, fmt.Errorf("upsert: check existing: %w", err)
	}

	now := internal.FormatTime(r.now())
	tags := internal.EncodeTags(entry.Tags)
	createdAt := now

	if isInsert {
		insertQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`INSERT INTO %s (public_id, folder, format, width, height, bytes, tags, etag, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)

		_, err = r.db.ExecContext(ctx, insertQuery,
			entry.PublicID, entry.Folder, entry.Format, entry.Width, entry.Height, entry.Bytes, tags, entry.ETag, now, now,
		)
		if err != nil {
			return folio.Asset{}, false, fmt.Errorf("upsert: insert: %w", err)
		}
	} else {
		updateQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`UPDATE %s
			SET folder = ?, format = ?, width = ?, height = ?, bytes = ?, tags = ?, etag = ?, updated_at = ?
			WHERE public_id = ?`, table)

		_, err = r.db.ExecContext(ctx, updateQuery,
			entry.Folder, entry.Format, entry.Width, entry.Height, entry.Bytes, tags, entry.ETag, now, entry.PublicID,
		)
		if err != nil {
			return folio.Asset{}, false, fmt.Errorf("upsert: update: %w", err)
		}

		createdAt = existingCreatedAt
	}

	a := folio.Asset{
		PublicID: entry.PublicID,
		Folder:   entry.Folder,
		Format:   entry.Format,
		Width:    entry.Width,
		Height:   entry.Height,
		Bytes:    entry.Bytes,
		Tags:     internal.DecodeTags(tags),
		ETag:     entry.ETag,
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return a, isInsert, nil
}

func (r *repo) Delete(ctx context.Context, publicID string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE public_id = ?`, quoteIdentifier(r.tables.Assets))

	result, err := r.db.ExecContext(ctx, query, publicID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete: %w", folio.ErrNotFound)
	}

	return nil
}

func (r *repo) Search(ctx context.Context, q folio.SearchQuery) (folio.SearchResult, error) {
	table := quoteIdentifier(r.tables.Assets)
	where, args := internal.SearchFilter(q, func(int) string { return "?" })

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table, where) //nolint:gosec // G201: table name is validated
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return folio.SearchResult{}, fmt.Errorf("search: count: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE %s ORDER BY created_at DESC, public_id DESC`, assetColumns, table, where)
	if q.MaxResults > 0 {
		query += " LIMIT ?"
		args = append(args, q.MaxResults)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return folio.SearchResult{}, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assets := make([]folio.Asset, 0)
	for rows.Next() {
		a, scanErr := scanAsset(rows)
		if scanErr != nil {
			return folio.SearchResult{}, fmt.Errorf("search: scan: %w", scanErr)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return folio.SearchResult{}, fmt.Errorf("search: rows: %w", err)
	}

	return folio.SearchResult{Assets: assets, TotalCount: total}, nil
}

func (r *repo) EnsureFolder(ctx context.Context, path string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (path, name, parent, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (path) DO NOTHING`, quoteIdentifier(r.tables.Folders))

	now := internal.FormatTime(r.now())

	for _, p := range internal.Ancestors(path) {
		name, parent := internal.FolderName(p)
		if _, err := r.db.ExecContext(ctx, query, p, name, parent, now); err != nil {
			return fmt.Errorf("ensure folder %s: %w", p, err)
		}
	}

	return nil
}

func (r *repo) SubFolders(ctx context.Context, parent string) ([]folio.Folder, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT name, path, created_at FROM %s WHERE parent = ? ORDER BY name`, quoteIdentifier(r.tables.Folders))

	rows, err := r.db.QueryContext(ctx, query, parent)
	if err != nil {
		return nil, fmt.Errorf("sub folders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	folders := []folio.Folder{}
	for rows.Next() {
		var f folio.Folder
		var createdAt string
		if err := rows.Scan(&f.Name, &f.Path, &createdAt); err != nil {
			return nil, fmt.Errorf("sub folders: scan: %w", err)
		}

		f.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sub folders: parse created_at: %w", err)
		}

		folders = append(folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sub folders: rows: %w", err)
	}

	return folders, nil
}
