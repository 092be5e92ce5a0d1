package folio

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MainAlbum is the album name reported for images stored directly in the root folder.
const MainAlbum = "main"

// AlbumIDSeparator replaces every character of an album name outside [a-z0-9].
const AlbumIDSeparator = '-'

// DeriveAlbumID turns a human-entered album name into a folder-safe identifier:
// the name is lowercased and every rune outside [a-z0-9] becomes '-'.
// Separators are neither collapsed nor trimmed, so "Summer Trip 2024!" becomes
// "summer-trip-2024-". Deriving an ID from a derived ID returns it unchanged.
func DeriveAlbumID(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(AlbumIDSeparator)
	}

	return b.String()
}

// DisplayName renders an album ID for people: separators become spaces and
// every word starts with an upper-case letter. Empty words are dropped.
func DisplayName(albumID string) string {
	words := strings.Fields(strings.ReplaceAll(albumID, string(AlbumIDSeparator), " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// AlbumFolder returns the store folder of an album. An empty album ID means the root.
func AlbumFolder(root, albumID string) string {
	if albumID == "" {
		return root
	}
	return root + "/" + albumID
}

// AlbumFromFolder returns the album an asset folder belongs to, relative to
// root. Assets directly in root (or without a folder) belong to MainAlbum.
func AlbumFromFolder(root, folder string) string {
	if folder == "" || folder == root {
		return MainAlbum
	}
	return strings.TrimPrefix(folder, root+"/")
}

// FolderOf returns the folder part of a full public ID.
func FolderOf(publicID string) string {
	dir := path.Dir(publicID)
	if dir == "." {
		return ""
	}
	return dir
}

// IsValidPublicID validates a public ID or folder path. It checks that the value:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." (path traversal)
//   - does not contain "//" (empty segments)
//   - does not contain invalid characters: \ ? # ~
//   - is valid UTF-8
//   - does not contain "." segments
//   - does not contain null bytes, control characters (< 0x20), DEL (0x7f), or whitespace
func IsValidPublicID(p string) bool {
	if p == "" || p == "/" || p == "." {
		return false
	}

	if p[0] == '/' || strings.HasSuffix(p, "/") {
		return false
	}

	if strings.Contains(p, "..") || strings.Contains(p, "//") {
		return false
	}

	if strings.ContainsAny(p, `\?#~`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	if strings.HasPrefix(p, "./") || strings.Contains(p, "/./") || strings.HasSuffix(p, "/.") {
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// IsValidAlbumID reports whether id can name a single folder under the root.
func IsValidAlbumID(id string) bool {
	return IsValidPublicID(id) && !strings.Contains(id, "/")
}
