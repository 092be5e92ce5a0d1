// Package http provides the HTTP API of the folio gallery server.
//
// Handlers are thin: they decode the request, call the Service and map
// errors onto status codes and JSON bodies.
//
// # Endpoints
//
//	GET    /api/albums                  album directory
//	GET    /api/albums/{albumId}        images of one album
//	GET    /api/gallery                 flat feed of all images
//	POST   /api/albums/create           {"albumName": "..."}
//	POST   /api/sign                    {"albumId": "..."} -> upload grant
//	DELETE /api/images/delete           {"publicId": "..."}
//	GET    /admin/status                backend and configuration status
//	GET    /admin/debug/album?albumId=  raw album contents
//	GET    /healthz                     liveness
//
// Read endpoints never fail because the media store is unconfigured: they
// answer 200 with an empty list and an advisory message. Write endpoints
// answer 500 in that case.
//
// # Admin gate
//
// Everything under the admin prefix goes through BasicAuthMiddleware:
//
//	router.Use(http.BasicAuthMiddleware(http.BasicAuthConfig{
//	    Username: "admin",
//	    Password: "secret",
//	}))
//
// Missing or wrong credentials get a 401 with a WWW-Authenticate challenge.
//
// # Static site
//
// When HandlerConfig.SiteDir is set, other GET requests are served from it
// with single-page-app fallback to index.html.
package http
