// Package clientcli provides a client library for the folio gallery API.
//
// It lists albums and images, creates albums, uploads files through signed
// upload grants, deletes images and reads the admin status and album
// inspector endpoints. The package includes profile-based configuration for
// managing connections to multiple servers.
//
// # Basic Usage
//
// Create a client and upload photos into an album:
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:3000",
//		Username: "admin",
//		Password: "secret",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		AlbumID: "summer-2024",
//		Paths:   []string{"beach.jpg", "sunset.png"},
//	})
//
// Uploads request one grant from the server and then post every file
// directly to the media store named in the grant. Failures are reported per
// file; files already uploaded stay uploaded.
//
// # Profile Configuration
//
// Use profiles to manage multiple server configurations:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
