package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/sqlite"
)

func entry(publicID string, tags ...string) folio.AssetEntry {
	return folio.AssetEntry{
		PublicID: publicID,
		Folder:   folio.FolderOf(publicID),
		Format:   "jpg",
		Width:    640,
		Height:   480,
		Bytes:    1024,
		Tags:     tags,
		ETag:     "etag-" + publicID,
	}
}

func TestRepo_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	created, inserted, err := repo.Upsert(ctx, entry("g/summer/beach", "summer"))
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Get(ctx, "g/summer/beach")
	require.NoError(t, err)
	assert.Equal(t, "g/summer", got.Folder)
	assert.Equal(t, 640, got.Width)
	assert.Equal(t, int64(1024), got.Bytes)
	assert.Equal(t, []string{"summer"}, got.Tags)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	replacement := entry("g/summer/beach")
	replacement.Width = 1280
	updated, inserted, err := repo.Upsert(ctx, replacement)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, 1280, updated.Width)
	assert.Empty(t, updated.Tags)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "created_at survives overwrite")
}

func TestRepo_Get_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Get(context.Background(), "g/missing")
	assert.ErrorIs(t, err, folio.ErrNotFound)
}

func TestRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	_, _, err := repo.Upsert(ctx, entry("g/a/one"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "g/a/one"))

	_, err = repo.Get(ctx, "g/a/one")
	assert.ErrorIs(t, err, folio.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "g/a/one"), folio.ErrNotFound)
}

func TestRepo_Search(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	for _, e := range []folio.AssetEntry{
		entry("g/root-shot"),
		entry("g/summer/a"),
		entry("g/summer/b"),
		entry("g/summer/summer-placeholder", folio.PlaceholderTags()...),
		entry("g/summer/deep/c"),
		entry("g/winter/d"),
		entry("other/e"),
	} {
		_, _, err := repo.Upsert(ctx, e)
		require.NoError(t, err)
	}

	t.Run("album without placeholders", func(t *testing.T) {
		q := folio.ExcludePlaceholders(folio.SearchQuery{Folder: "g/summer", MaxResults: 10}, "g", "summer")

		res, err := repo.Search(ctx, q)
		require.NoError(t, err)

		assert.Equal(t, 2, res.TotalCount)
		require.Len(t, res.Assets, 2)
		assert.Equal(t, "g/summer/b", res.Assets[0].PublicID, "newest first")
		assert.Equal(t, "g/summer/a", res.Assets[1].PublicID)
	})

	t.Run("limit does not cap total", func(t *testing.T) {
		q := folio.ExcludePlaceholders(folio.SearchQuery{Folder: "g/summer", MaxResults: 1}, "g", "summer")

		res, err := repo.Search(ctx, q)
		require.NoError(t, err)

		assert.Equal(t, 2, res.TotalCount)
		assert.Len(t, res.Assets, 1)
	})

	t.Run("everything in folder", func(t *testing.T) {
		res, err := repo.Search(ctx, folio.SearchQuery{Folder: "g/summer"})
		require.NoError(t, err)
		assert.Equal(t, 3, res.TotalCount)
	})

	t.Run("root and immediate children", func(t *testing.T) {
		q := folio.ExcludePlaceholders(folio.SearchQuery{Folder: "g", IncludeSubFolders: true, MaxResults: 50}, "g", "")

		res, err := repo.Search(ctx, q)
		require.NoError(t, err)

		ids := make([]string, 0, len(res.Assets))
		for _, a := range res.Assets {
			ids = append(ids, a.PublicID)
		}
		assert.ElementsMatch(t, []string{"g/root-shot", "g/summer/a", "g/summer/b", "g/winter/d"}, ids)
		assert.Equal(t, 4, res.TotalCount)
	})

	t.Run("no matches", func(t *testing.T) {
		res, err := repo.Search(ctx, folio.SearchQuery{Folder: "g/empty"})
		require.NoError(t, err)
		assert.Empty(t, res.Assets)
		assert.Equal(t, 0, res.TotalCount)
	})
}

func TestRepo_Folders(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	require.NoError(t, repo.EnsureFolder(ctx, "g/winter"))
	require.NoError(t, repo.EnsureFolder(ctx, "g/summer/day1"))
	require.NoError(t, repo.EnsureFolder(ctx, "g/summer"), "ensuring an existing folder is a no-op")

	children, err := repo.SubFolders(ctx, "g")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "summer", children[0].Name)
	assert.Equal(t, "g/summer", children[0].Path)
	assert.Equal(t, "winter", children[1].Name)
	assert.False(t, children[0].CreatedAt.IsZero())

	top, err := repo.SubFolders(ctx, "")
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "g", top[0].Path)

	none, err := repo.SubFolders(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNewRepo_InvalidTables(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = sqlite.NewRepo(db, folio.Tables{Assets: "same", Folders: "same"})
	assert.Error(t, err)
}

func TestValidateSchema(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer func() { _ = db.Close() }()

	tables := randomTables(t)

	assert.Error(t, sqlite.ValidateSchema(ctx, db, tables), "tables do not exist yet")

	require.NoError(t, sqlite.Migrate(ctx, db, tables))
	require.NoError(t, sqlite.Migrate(ctx, db, tables), "migrate is idempotent")
	assert.NoError(t, sqlite.ValidateSchema(ctx, db, tables))

	_, err = db.ExecContext(ctx, `ALTER TABLE "`+tables.Assets+`" DROP COLUMN etag`)
	require.NoError(t, err)

	err = sqlite.ValidateSchema(ctx, db, tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns: etag")

	require.NoError(t, sqlite.DropTables(ctx, db, tables))
	assert.Error(t, sqlite.ValidateSchema(ctx, db, tables))
}
