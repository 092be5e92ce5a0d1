// Package postgres implements the asset catalog using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/internal"
)

// Tables is an alias for folio.Tables for package compatibility.
type Tables = folio.Tables

type Repo struct {
	pool   *pgxpool.Pool
	tables Tables
}

func NewRepo(pool *pgxpool.Pool, tables Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tables: tables}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) assets() string {
	return pgx.Identifier{r.tables.Assets}.Sanitize()
}

func (r *Repo) folders() string {
	return pgx.Identifier{r.tables.Folders}.Sanitize()
}

const assetColumns = `public_id, folder, format, width, height, bytes, tags, etag, created_at`

func scanAsset(row pgx.Row) (folio.Asset, error) {
	var a folio.Asset
	var tags string

	if err := row.Scan(&a.PublicID, &a.Folder, &a.Format, &a.Width, &a.Height, &a.Bytes, &tags, &a.ETag, &a.CreatedAt); err != nil {
		return folio.Asset{}, err
	}

	a.Tags = internal.DecodeTags(tags)
	return a, nil
}

func (r *Repo) Get(ctx context.Context, publicID string) (folio.Asset, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE public_id = $1`, assetColumns, r.assets())

	a, err := scanAsset(r.pool.QueryRow(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return folio.Asset{}, folio.ErrNotFound
		}
		return folio.Asset{}, fmt.Errorf("get: %w", err)
	}

	return a, nil
}

func (r *Repo) Upsert(ctx context.Context, entry folio.AssetEntry) (folio.Asset, bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (public_id, folder, format, width, height, bytes, tags, etag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (public_id) DO UPDATE
		SET folder = EXCLUDED.folder,
			format = EXCLUDED.format,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			bytes = EXCLUDED.bytes,
			tags = EXCLUDED.tags,
			etag = EXCLUDED.etag,
			updated_at = NOW()
		RETURNING %s, (xmax = 0) AS inserted
	`, r.assets(), assetColumns)

	var a folio.Asset
	var tags string
	var inserted bool

	err := r.pool.QueryRow(ctx, query,
		entry.PublicID, entry.Folder, entry.Format, entry.Width, entry.Height, entry.Bytes,
		internal.EncodeTags(entry.Tags), entry.ETag,
	).Scan(&a.PublicID, &a.Folder, &a.Format, &a.Width, &a.Height, &a.Bytes, &tags, &a.ETag, &a.CreatedAt, &inserted)
	if err != nil {
		return folio.Asset{}, false, fmt.Errorf("upsert: %w", err)
	}

	a.Tags = internal.DecodeTags(tags)

	return a, inserted, nil
}

func (r *Repo) Delete(ctx context.Context, publicID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE public_id = $1`, r.assets())

	result, err := r.pool.Exec(ctx, query, publicID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", folio.ErrNotFound)
	}

	return nil
}

func (r *Repo) Search(ctx context.Context, q folio.SearchQuery) (folio.SearchResult, error) {
	where, args := internal.SearchFilter(q, func(n int) string { return "$" + strconv.Itoa(n) })

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.assets(), where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return folio.SearchResult{}, fmt.Errorf("search: count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at DESC, public_id DESC`, assetColumns, r.assets(), where)
	if q.MaxResults > 0 {
		args = append(args, q.MaxResults)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return folio.SearchResult{}, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	assets := make([]folio.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return folio.SearchResult{}, fmt.Errorf("search: scan: %w", err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return folio.SearchResult{}, fmt.Errorf("search: rows: %w", err)
	}

	return folio.SearchResult{Assets: assets, TotalCount: total}, nil
}

func (r *Repo) EnsureFolder(ctx context.Context, path string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (path, name, parent) VALUES ($1, $2, $3)
		ON CONFLICT (path) DO NOTHING
	`, r.folders())

	for _, p := range internal.Ancestors(path) {
		name, parent := internal.FolderName(p)
		if _, err := r.pool.Exec(ctx, query, p, name, parent); err != nil {
			return fmt.Errorf("ensure folder %s: %w", p, err)
		}
	}

	return nil
}

func (r *Repo) SubFolders(ctx context.Context, parent string) ([]folio.Folder, error) {
	query := fmt.Sprintf(`SELECT name, path, created_at FROM %s WHERE parent = $1 ORDER BY name`, r.folders())

	rows, err := r.pool.Query(ctx, query, parent)
	if err != nil {
		return nil, fmt.Errorf("sub folders: %w", err)
	}
	defer rows.Close()

	folders := []folio.Folder{}
	for rows.Next() {
		var f folio.Folder
		if err := rows.Scan(&f.Name, &f.Path, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sub folders: scan: %w", err)
		}
		folders = append(folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sub folders: rows: %w", err)
	}

	return folders, nil
}
