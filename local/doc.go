// Package local is a self-hosted media store with the same surface as the
// hosted one: signed direct uploads, folder listing, search and delivery
// URLs with resized renditions.
//
// The catalog (assets and folders) lives in a folio.AssetRepo and the image
// bytes in a folio.FileStorage. Handler exposes the HTTP side:
//
//	POST /v1_1/{cloud}/image/upload   signed multipart upload
//	GET  /files/{public_id}.{format}  original, or a resized copy with ?w=
package local
