// Package folio provides the gallery core of a photography portfolio backend.
//
// Albums and images live in an external media store that exposes folders,
// search, signed uploads and deletion. Folio derives albums from the folder
// hierarchy under one root folder and never keeps its own copy of the data.
//
// # Key Components
//
//   - GalleryService: album directory, album content, gallery feed, upload
//     grants, album creation and deletion on top of a MediaStore
//   - MediaStore: interface for the external store (see the cloudinary and
//     local packages)
//   - SignParams / SignatureVerifier: parameter signing for direct uploads
//   - AssetRepo / FileStorage: catalog and blob interfaces used by the
//     self-hosted local store
//
// # Placeholder Assets
//
// Media stores have no "create empty folder" primitive, so CreateAlbum uploads
// a tagged 1x1 image named "<albumId>-placeholder". Every read path excludes
// these assets through the helpers in placeholder.go.
//
// # Example Usage
//
//	svc, err := folio.NewGalleryService(store, folio.ServiceConfig{
//	    RootFolder: "elijah-gallery",
//	    CloudName:  "demo",
//	    APIKey:     key,
//	    APISecret:  secret,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	albums, err := svc.ListAlbums(ctx)
//
// See the http package for the REST API built on GalleryService.
package folio
