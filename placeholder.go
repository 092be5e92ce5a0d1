package folio

import (
	"bytes"
	"encoding/base64"
	"slices"
	"strings"
)

// Placeholder naming and tagging. Album folders are created by uploading a
// placeholder asset; everything that reads album contents goes through the
// helpers below so the convention lives in one place.
const (
	PlaceholderSuffix = "-placeholder"
	PlaceholderTag    = "placeholder"
	AlbumCreationTag  = "album-creation"
)

// 1x1 translucent PNG.
const placeholderPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

var placeholderPNG = mustDecodeBase64(placeholderPNGBase64)

func mustDecodeBase64(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// PlaceholderPNG returns a copy of the placeholder image bytes.
func PlaceholderPNG() []byte {
	return bytes.Clone(placeholderPNG)
}

// PlaceholderID returns the public ID (relative to the album folder) of an album's placeholder.
func PlaceholderID(albumID string) string {
	return albumID + PlaceholderSuffix
}

// PlaceholderTags are attached to every placeholder upload.
func PlaceholderTags() []string {
	return []string{PlaceholderTag, AlbumCreationTag}
}

// IsPlaceholder reports whether an asset in the gallery feed only exists to
// keep its folder alive. The feed spans every album, so any public ID
// carrying the marker counts.
func IsPlaceholder(a Asset) bool {
	return slices.Contains(a.Tags, PlaceholderTag) || strings.Contains(a.PublicID, PlaceholderSuffix)
}

// IsAlbumPlaceholder reports whether a is the placeholder of one album: it
// carries the placeholder tag or its public ID is exactly the album's
// placeholder ID. Album names may themselves contain the marker, so no
// substring match is made here.
func IsAlbumPlaceholder(a Asset, root, albumID string) bool {
	if slices.Contains(a.Tags, PlaceholderTag) {
		return true
	}
	want := AlbumFolder(root, albumID) + "/" + PlaceholderID(albumID)
	return a.PublicID == want || a.PublicID == PlaceholderID(albumID)
}

// ExcludePlaceholders adds the store-side exclusion terms to q. When the query
// targets a single album, that album's placeholder public ID is excluded too.
func ExcludePlaceholders(q SearchQuery, root, albumID string) SearchQuery {
	q.ExcludeTags = append(slices.Clone(q.ExcludeTags), PlaceholderTag)
	if albumID != "" {
		q.ExcludePublicIDs = append(slices.Clone(q.ExcludePublicIDs), AlbumFolder(root, albumID)+"/"+PlaceholderID(albumID))
	}
	return q
}

// FilterPlaceholders drops placeholders from assets and reports how many were
// removed. With an albumID only that album's placeholder is matched;
// without one the gallery feed rule of IsPlaceholder applies.
func FilterPlaceholders(assets []Asset, root, albumID string) ([]Asset, int) {
	match := IsPlaceholder
	if albumID != "" {
		match = func(a Asset) bool { return IsAlbumPlaceholder(a, root, albumID) }
	}

	kept := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if match(a) {
			continue
		}
		kept = append(kept, a)
	}
	return kept, len(assets) - len(kept)
}
