package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
}

func TestCollectFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "beach.jpg", "notes.txt")

	entries, err := collectFiles(filepath.Join(dir, "beach.jpg"), false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "beach", entries[0].publicID)

	_, err = collectFiles(filepath.Join(dir, "notes.txt"), false)
	assert.Error(t, err)
}

func TestCollectFiles_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"a.png",
		"day1/b.JPG",
		"day1/readme.md",
		".cache/c.jpg",
		"day2/.hidden.jpg",
	)

	_, err := collectFiles(dir, false)
	require.Error(t, err, "directories need -r")

	entries, err := collectFiles(dir, true)
	require.NoError(t, err)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.publicID)
	}
	assert.ElementsMatch(t, []string{"a", "day1_b"}, ids)
}

func TestPublicIDFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo"},
		{"trip/day 1/photo.webp", "trip_day 1_photo"},
		{"no-ext", "no-ext"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, publicIDFor(tt.in))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".env")
	override := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(base, []byte("FOLIO_TEST_A=base\nFOLIO_TEST_B=base\nFOLIO_TEST_C=base\n"), 0o600))
	require.NoError(t, os.WriteFile(override, []byte("FOLIO_TEST_B=local\n"), 0o600))

	t.Setenv("FOLIO_TEST_C", "env")
	t.Setenv("FOLIO_TEST_A", "")
	require.NoError(t, os.Unsetenv("FOLIO_TEST_A"))
	t.Setenv("FOLIO_TEST_B", "")
	require.NoError(t, os.Unsetenv("FOLIO_TEST_B"))

	err := loadDotEnv([]string{base, override, filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "base", os.Getenv("FOLIO_TEST_A"))
	assert.Equal(t, "local", os.Getenv("FOLIO_TEST_B"))
	assert.Equal(t, "env", os.Getenv("FOLIO_TEST_C"))
}
