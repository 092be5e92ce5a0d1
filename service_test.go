package folio_test

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/folio"
)

type SpyMediaStore struct {
	mock.Mock
}

func (s *SpyMediaStore) Search(ctx context.Context, q folio.SearchQuery) (folio.SearchResult, error) {
	args := s.Called(ctx, q)
	return args.Get(0).(folio.SearchResult), args.Error(1)
}

func (s *SpyMediaStore) SubFolders(ctx context.Context, folder string) ([]folio.Folder, error) {
	args := s.Called(ctx, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]folio.Folder), args.Error(1)
}

func (s *SpyMediaStore) Upload(ctx context.Context, req folio.UploadRequest, content io.Reader) (folio.Asset, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return folio.Asset{}, err
	}
	args := s.Called(ctx, req, data)
	return args.Get(0).(folio.Asset), args.Error(1)
}

func (s *SpyMediaStore) Destroy(ctx context.Context, publicID string) (folio.DestroyResult, error) {
	args := s.Called(ctx, publicID)
	return args.Get(0).(folio.DestroyResult), args.Error(1)
}

// thumbStore adds thumbnail support on top of the spy.
type thumbStore struct {
	*SpyMediaStore
}

func (thumbStore) ThumbnailURL(a folio.Asset) string {
	return a.SecureURL + "?w=800"
}

const testRoot = "elijah-gallery"

var testClock = time.Unix(1_700_000_000, 0)

func testConfig() folio.ServiceConfig {
	return folio.ServiceConfig{
		RootFolder: testRoot,
		CloudName:  "demo",
		APIKey:     "key",
		APISecret:  "secret",
		UploadURL:  "https://media.example/v1_1/demo/image/upload",
		Now:        func() time.Time { return testClock },
	}
}

func newTestService(t *testing.T, store folio.MediaStore) *folio.GalleryService {
	t.Helper()
	svc, err := folio.NewGalleryService(store, testConfig())
	require.NoError(t, err)
	return svc
}

func newUnconfiguredService(t *testing.T) *folio.GalleryService {
	t.Helper()
	svc, err := folio.NewGalleryService(nil, folio.ServiceConfig{RootFolder: testRoot})
	require.NoError(t, err)
	return svc
}

func folderQuery(folder string, limit int) any {
	return mock.MatchedBy(func(q folio.SearchQuery) bool {
		return q.Folder == folder && q.MaxResults == limit
	})
}

func TestNewGalleryService(t *testing.T) {
	t.Run("invalid root", func(t *testing.T) {
		_, err := folio.NewGalleryService(new(SpyMediaStore), folio.ServiceConfig{RootFolder: "/bad/"})
		assert.ErrorIs(t, err, folio.ErrInvalidInput)
	})

	t.Run("credentials without store", func(t *testing.T) {
		_, err := folio.NewGalleryService(nil, testConfig())
		assert.Error(t, err)
	})

	t.Run("unconfigured without store", func(t *testing.T) {
		svc := newUnconfiguredService(t)
		assert.False(t, svc.Status().Configured)
		assert.Equal(t, testRoot, svc.Status().RootFolder)
	})
}

func TestGalleryService_NotConfigured(t *testing.T) {
	svc := newUnconfiguredService(t)
	ctx := context.Background()

	_, err := svc.ListAlbums(ctx)
	assert.ErrorIs(t, err, folio.ErrNotConfigured)

	_, err = svc.ListAlbumImages(ctx, "summer")
	assert.ErrorIs(t, err, folio.ErrNotConfigured)

	_, err = svc.ListAllImages(ctx)
	assert.ErrorIs(t, err, folio.ErrNotConfigured)

	_, err = svc.CreateUploadGrant(ctx, "summer")
	assert.ErrorIs(t, err, folio.ErrNotConfigured)

	_, err = svc.CreateAlbum(ctx, "Summer")
	assert.ErrorIs(t, err, folio.ErrNotConfigured)

	_, err = svc.DeleteImage(ctx, "elijah-gallery/summer/beach")
	assert.ErrorIs(t, err, folio.ErrNotConfigured)

	_, err = svc.DebugAlbum(ctx, "summer")
	assert.ErrorIs(t, err, folio.ErrNotConfigured)
}

func TestGalleryService_NotConfiguredBeforeValidation(t *testing.T) {
	svc := newUnconfiguredService(t)
	ctx := context.Background()

	_, err := svc.CreateAlbum(ctx, "")
	assert.ErrorIs(t, err, folio.ErrNotConfigured)

	_, err = svc.DeleteImage(ctx, "")
	assert.ErrorIs(t, err, folio.ErrNotConfigured)

	_, err = svc.CreateUploadGrant(ctx, "a/b")
	assert.ErrorIs(t, err, folio.ErrNotConfigured)
}

func TestGalleryService_ListAlbums(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, store)

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	store.On("SubFolders", mock.Anything, testRoot).Return([]folio.Folder{
		{Name: "winter", Path: testRoot + "/winter", CreatedAt: older},
		{Name: "summer-trip-2024-", Path: testRoot + "/summer-trip-2024-", CreatedAt: newer},
	}, nil)

	cover := folio.Asset{PublicID: testRoot + "/winter/snow", SecureURL: "https://cdn/snow.jpg"}
	store.On("Search", mock.Anything, folderQuery(testRoot+"/winter", 1)).
		Return(folio.SearchResult{Assets: []folio.Asset{cover}, TotalCount: 3}, nil)
	store.On("Search", mock.Anything, folderQuery(testRoot+"/winter", folio.AlbumCountLimit)).
		Return(folio.SearchResult{Assets: []folio.Asset{cover, {}, {}}, TotalCount: 3}, nil)

	store.On("Search", mock.Anything, folderQuery(testRoot+"/summer-trip-2024-", 1)).
		Return(folio.SearchResult{Assets: []folio.Asset{}, TotalCount: 0}, nil)
	store.On("Search", mock.Anything, folderQuery(testRoot+"/summer-trip-2024-", folio.AlbumCountLimit)).
		Return(folio.SearchResult{Assets: []folio.Asset{}, TotalCount: 0}, nil)

	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	require.Len(t, albums, 2)

	assert.Equal(t, "summer-trip-2024-", albums[0].ID, "newest album first")
	assert.Equal(t, "Summer Trip 2024", albums[0].Name)
	assert.Equal(t, 0, albums[0].ImageCount)
	assert.Empty(t, albums[0].CoverImage)
	assert.Equal(t, newer, albums[0].CreatedAt)

	assert.Equal(t, "winter", albums[1].ID)
	assert.Equal(t, "Winter", albums[1].Name)
	assert.Equal(t, 3, albums[1].ImageCount)
	assert.Equal(t, "https://cdn/snow.jpg", albums[1].CoverImage)

	store.AssertExpectations(t)
}

func TestGalleryService_ListAlbums_QueriesExcludePlaceholders(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, store)

	store.On("SubFolders", mock.Anything, testRoot).Return([]folio.Folder{{Name: "summer"}}, nil)
	store.On("Search", mock.Anything, mock.MatchedBy(func(q folio.SearchQuery) bool {
		return q.Folder == testRoot+"/summer" &&
			assert.ObjectsAreEqual([]string{folio.PlaceholderTag}, q.ExcludeTags) &&
			assert.ObjectsAreEqual([]string{testRoot + "/summer/summer-placeholder"}, q.ExcludePublicIDs)
	})).Return(folio.SearchResult{Assets: []folio.Asset{}}, nil).Twice()

	_, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestGalleryService_ListAlbums_PlaceholderNeverCounted(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, store)

	placeholder := folio.Asset{
		PublicID:  testRoot + "/fresh/fresh-placeholder",
		SecureURL: "https://cdn/p.png",
		Tags:      folio.PlaceholderTags(),
	}

	store.On("SubFolders", mock.Anything, testRoot).Return([]folio.Folder{{Name: "fresh"}}, nil)
	// A store that ignores the exclusion terms still must not leak the placeholder.
	store.On("Search", mock.Anything, mock.Anything).
		Return(folio.SearchResult{Assets: []folio.Asset{placeholder}, TotalCount: 1}, nil)

	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	require.Len(t, albums, 1)

	assert.Equal(t, 0, albums[0].ImageCount)
	assert.Empty(t, albums[0].CoverImage)
}

func TestGalleryService_ListAlbums_Empty(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, store)

	store.On("SubFolders", mock.Anything, testRoot).Return([]folio.Folder{}, nil)

	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, albums)
	assert.Empty(t, albums)
}

func TestGalleryService_ListAlbums_StoreFailureDegrades(t *testing.T) {
	t.Run("sub folders fail", func(t *testing.T) {
		store := new(SpyMediaStore)
		svc := newTestService(t, store)
		store.On("SubFolders", mock.Anything, testRoot).Return(nil, errors.New("boom"))

		albums, err := svc.ListAlbums(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, albums)
		assert.Empty(t, albums)
	})

	t.Run("search fails", func(t *testing.T) {
		store := new(SpyMediaStore)
		svc := newTestService(t, store)
		store.On("SubFolders", mock.Anything, testRoot).Return([]folio.Folder{{Name: "a"}, {Name: "b"}}, nil)
		store.On("Search", mock.Anything, mock.Anything).Return(folio.SearchResult{}, errors.New("boom"))

		albums, err := svc.ListAlbums(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, albums)
		assert.Empty(t, albums)
	})
}

func TestGalleryService_AlbumNamedLikePlaceholder(t *testing.T) {
	const albumID = "best-placeholder-shots"
	folder := testRoot + "/" + albumID

	sunset := folio.Asset{PublicID: folder + "/sunset", Folder: folder, SecureURL: "https://cdn/sunset.jpg"}
	placeholder := folio.Asset{PublicID: folder + "/" + albumID + "-placeholder", Folder: folder}

	store := new(SpyMediaStore)
	svc := newTestService(t, store)
	store.On("SubFolders", mock.Anything, testRoot).Return([]folio.Folder{{Name: albumID}}, nil)
	store.On("Search", mock.Anything, folderQuery(folder, 1)).
		Return(folio.SearchResult{Assets: []folio.Asset{sunset}, TotalCount: 1}, nil)
	store.On("Search", mock.Anything, folderQuery(folder, folio.AlbumCountLimit)).
		Return(folio.SearchResult{Assets: []folio.Asset{sunset, placeholder}, TotalCount: 2}, nil)
	store.On("Search", mock.Anything, folderQuery(folder, folio.AlbumImagesLimit)).
		Return(folio.SearchResult{Assets: []folio.Asset{sunset, placeholder}, TotalCount: 2}, nil)

	images, err := svc.ListAlbumImages(context.Background(), albumID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, folder+"/sunset", images[0].ID)

	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, 1, albums[0].ImageCount)
	assert.Equal(t, "https://cdn/sunset.jpg", albums[0].CoverImage)
	assert.Equal(t, "Best Placeholder Shots", albums[0].Name)
}

func TestGalleryService_ListAlbumImages(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, thumbStore{store})

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.On("Search", mock.Anything, folderQuery(testRoot+"/summer", folio.AlbumImagesLimit)).
		Return(folio.SearchResult{Assets: []folio.Asset{
			{PublicID: testRoot + "/summer/beach", Folder: testRoot + "/summer", SecureURL: "https://cdn/beach.jpg", Width: 800, Height: 600, Format: "jpg", CreatedAt: created},
			{PublicID: testRoot + "/summer/summer-placeholder", Folder: testRoot + "/summer", Tags: folio.PlaceholderTags()},
		}, TotalCount: 2}, nil)

	images, err := svc.ListAlbumImages(context.Background(), "summer")
	require.NoError(t, err)
	require.Len(t, images, 1)

	assert.Equal(t, folio.Image{
		ID:           testRoot + "/summer/beach",
		URL:          "https://cdn/beach.jpg",
		ThumbnailURL: "https://cdn/beach.jpg?w=800",
		Width:        800,
		Height:       600,
		Format:       "jpg",
		Album:        "summer",
		CreatedAt:    created,
	}, images[0])

	store.AssertExpectations(t)
}

func TestGalleryService_ListAlbumImages_InvalidID(t *testing.T) {
	svc := newTestService(t, new(SpyMediaStore))

	for _, id := range []string{"", "a/b", ".."} {
		_, err := svc.ListAlbumImages(context.Background(), id)
		assert.ErrorIs(t, err, folio.ErrInvalidInput, "album id %q", id)
	}
}

func TestGalleryService_ListAlbumImages_StoreFailureDegrades(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, store)
	store.On("Search", mock.Anything, mock.Anything).Return(folio.SearchResult{}, errors.New("boom"))

	images, err := svc.ListAlbumImages(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestGalleryService_ListAllImages_StoreFailure(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, store)
	store.On("Search", mock.Anything, mock.Anything).Return(folio.SearchResult{}, errors.New("boom"))

	_, err := svc.ListAllImages(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestGalleryService_ListAllImages(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, store)

	store.On("Search", mock.Anything, mock.MatchedBy(func(q folio.SearchQuery) bool {
		return q.Folder == testRoot && q.IncludeSubFolders && q.MaxResults == folio.GalleryLimit &&
			assert.ObjectsAreEqual([]string{folio.PlaceholderTag}, q.ExcludeTags)
	})).Return(folio.SearchResult{Assets: []folio.Asset{
		{PublicID: testRoot + "/summer/beach", Folder: testRoot + "/summer"},
		{PublicID: testRoot + "/winter/winter-placeholder", Folder: testRoot + "/winter"},
		{PublicID: testRoot + "/hero", Folder: testRoot},
	}}, nil)

	images, err := svc.ListAllImages(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "summer", images[0].Album)
	assert.Equal(t, folio.MainAlbum, images[1].Album)
	assert.Empty(t, images[0].ThumbnailURL, "plain stores have no thumbnails")

	store.AssertExpectations(t)
}

func TestGalleryService_CreateUploadGrant(t *testing.T) {
	svc := newTestService(t, new(SpyMediaStore))
	ts := strconv.FormatInt(testClock.Unix(), 10)

	t.Run("album folder", func(t *testing.T) {
		grant, err := svc.CreateUploadGrant(context.Background(), "summer")
		require.NoError(t, err)

		assert.Equal(t, "demo", grant.CloudName)
		assert.Equal(t, "key", grant.APIKey)
		assert.Equal(t, testRoot+"/summer", grant.Folder)
		assert.Equal(t, testClock.Unix(), grant.Timestamp)
		want, err := folio.SignParams(map[string]string{"folder": testRoot + "/summer", "timestamp": ts}, "secret")
		require.NoError(t, err)
		assert.Equal(t, want, grant.Signature)
		assert.Equal(t, "https://media.example/v1_1/demo/image/upload", grant.UploadURL)
	})

	t.Run("root folder", func(t *testing.T) {
		grant, err := svc.CreateUploadGrant(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, testRoot, grant.Folder)
	})

	t.Run("grants differ per folder", func(t *testing.T) {
		a, err := svc.CreateUploadGrant(context.Background(), "a")
		require.NoError(t, err)
		b, err := svc.CreateUploadGrant(context.Background(), "b")
		require.NoError(t, err)
		assert.NotEqual(t, a.Signature, b.Signature)
	})

	t.Run("secret never exposed", func(t *testing.T) {
		grant, err := svc.CreateUploadGrant(context.Background(), "summer")
		require.NoError(t, err)
		assert.NotContains(t, grant.Signature, "secret")
		assert.NotEqual(t, "secret", grant.APIKey)
	})

	t.Run("invalid album", func(t *testing.T) {
		_, err := svc.CreateUploadGrant(context.Background(), "a/b")
		assert.ErrorIs(t, err, folio.ErrInvalidInput)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.CreateUploadGrant(ctx, "summer")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGalleryService_CreateAlbum(t *testing.T) {
	t.Run("uploads placeholder", func(t *testing.T) {
		store := new(SpyMediaStore)
		svc := newTestService(t, store)

		expected := folio.UploadRequest{
			Folder:    testRoot + "/summer-trip-2024-",
			PublicID:  "summer-trip-2024--placeholder",
			Filename:  "placeholder.png",
			Tags:      []string{"placeholder", "album-creation"},
			Overwrite: true,
		}
		store.On("Upload", mock.Anything, expected, folio.PlaceholderPNG()).Return(folio.Asset{}, nil)

		res, err := svc.CreateAlbum(context.Background(), "  Summer Trip 2024!  ")
		require.NoError(t, err)

		assert.True(t, res.Success)
		assert.Equal(t, "summer-trip-2024-", res.AlbumID)
		assert.Equal(t, testRoot+"/summer-trip-2024-", res.Folder)
		assert.Equal(t, `Album "Summer Trip 2024!" created successfully`, res.Message)
		store.AssertExpectations(t)
	})

	t.Run("idempotent", func(t *testing.T) {
		store := new(SpyMediaStore)
		svc := newTestService(t, store)
		store.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(folio.Asset{}, nil).Twice()

		first, err := svc.CreateAlbum(context.Background(), "Weddings")
		require.NoError(t, err)
		second, err := svc.CreateAlbum(context.Background(), "Weddings")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		store.AssertExpectations(t)
	})

	t.Run("blank name", func(t *testing.T) {
		svc := newTestService(t, new(SpyMediaStore))
		_, err := svc.CreateAlbum(context.Background(), "   ")
		assert.ErrorIs(t, err, folio.ErrInvalidInput)
	})

	t.Run("upload fails", func(t *testing.T) {
		store := new(SpyMediaStore)
		svc := newTestService(t, store)
		store.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(folio.Asset{}, errors.New("quota exceeded"))

		_, err := svc.CreateAlbum(context.Background(), "Weddings")
		assert.ErrorIs(t, err, folio.ErrUpstream)
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

func TestGalleryService_DeleteImage(t *testing.T) {
	const id = testRoot + "/summer/beach"

	tt := []struct {
		Name    string
		Result  folio.DestroyResult
		Err     error
		WantErr error
	}{
		{Name: "ok", Result: folio.DestroyOK},
		{Name: "not found", Result: folio.DestroyNotFound, WantErr: folio.ErrNotFound},
		{Name: "unexpected result", Result: "error", WantErr: folio.ErrUpstream},
		{Name: "store error", Err: errors.New("timeout"), WantErr: folio.ErrUpstream},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			store := new(SpyMediaStore)
			svc := newTestService(t, store)
			store.On("Destroy", mock.Anything, id).Return(tc.Result, tc.Err)

			res, err := svc.DeleteImage(context.Background(), id)
			if tc.WantErr != nil {
				assert.ErrorIs(t, err, tc.WantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, folio.DeleteResult{Success: true, Message: "Image deleted successfully"}, res)
		})
	}

	t.Run("empty id", func(t *testing.T) {
		svc := newTestService(t, new(SpyMediaStore))
		_, err := svc.DeleteImage(context.Background(), " ")
		assert.ErrorIs(t, err, folio.ErrInvalidInput)
	})
}

func TestGalleryService_DebugAlbum(t *testing.T) {
	store := new(SpyMediaStore)
	svc := newTestService(t, store)

	store.On("Search", mock.Anything, mock.MatchedBy(func(q folio.SearchQuery) bool {
		return q.Folder == testRoot+"/summer" && len(q.ExcludeTags) == 0 && len(q.ExcludePublicIDs) == 0
	})).Return(folio.SearchResult{Assets: []folio.Asset{
		{PublicID: testRoot + "/summer/beach"},
		{PublicID: testRoot + "/summer/summer-placeholder", Tags: folio.PlaceholderTags()},
	}, TotalCount: 2}, nil)

	debug, err := svc.DebugAlbum(context.Background(), "summer")
	require.NoError(t, err)

	assert.Equal(t, testRoot+"/summer", debug.Folder)
	assert.Equal(t, 2, debug.TotalCount)
	assert.Equal(t, 1, debug.RealCount)
	require.Len(t, debug.AllImages, 2)
	assert.True(t, debug.AllImages[1].IsPlaceholder)
	assert.Equal(t, testRoot+"/summer/beach", debug.RealImages[0].ID)
}
