// Package database connects the asset catalog used by the self-hosted media
// store.
//
// # Supported Backends
//
//   - PostgreSQL: using a pgx connection pool
//   - SQLite: using modernc.org/sqlite, suitable for single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type: "sqlite",
//	    DSN:  "folio.db",
//	    Tables: folio.Tables{
//	        Assets:  "folio_assets",
//	        Folders: "folio_folders",
//	    },
//	}
//
//	repo, cleanup, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// Open connects, runs schema migrations and validates the schema. Connect
// only opens the connection, for commands such as "folio migrate" that
// manage the schema themselves.
package database
