// Package cloudinary implements folio.MediaStore on top of the hosted
// Cloudinary account, using the official cloudinary-go SDK.
//
// Reads go through the Admin API (Search and folder listing). Writes go
// through the Upload API, which signs every request with the account secret.
//
//	client, err := cloudinary.New(cloudinary.Config{
//	    CloudName: "demo",
//	    APIKey:    key,
//	    APISecret: secret,
//	})
package cloudinary
