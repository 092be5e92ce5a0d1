package local_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database"
	"github.com/sagarc03/folio/filesystem"
	"github.com/sagarc03/folio/local"
)

const (
	testCloud     = "local"
	testAPIKey    = "test-key"
	testAPISecret = "test-secret"
	testPublicURL = "http://media.test/media"
)

type staticSecrets map[string]string

func (s staticSecrets) Lookup(apiKey string) (string, error) {
	secret, ok := s[apiKey]
	if !ok {
		return "", folio.ErrUnauthorized
	}
	return secret, nil
}

type testEnv struct {
	store *local.Store
	repo  folio.AssetRepo
	files *filesystem.Store
}

func setupStore(t *testing.T) testEnv {
	t.Helper()

	repo, cleanup, err := database.Open(context.Background(), database.Config{
		Type: "sqlite",
		DSN:  ":memory:",
		Tables: folio.Tables{
			Assets:  "folio_assets",
			Folders: "folio_folders",
		},
	})
	require.NoError(t, err, "open catalog")
	t.Cleanup(cleanup)

	root, err := os.OpenRoot(t.TempDir())
	require.NoError(t, err, "open root")
	t.Cleanup(func() { _ = root.Close() })

	files := filesystem.New(root)

	store := local.New(repo, files, local.Config{
		CloudName: testCloud,
		PublicURL: testPublicURL + "/",
	})

	return testEnv{store: store, repo: repo, files: files}
}

// pngBytes renders a solid w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "encode png")
	return buf.Bytes()
}

func imageDecodeConfig(data []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(data))
}
