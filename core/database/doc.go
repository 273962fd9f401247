// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL connections for production and SQLite
// connections for local runs and tests, based on the application's
// configuration.
//
// # Schema Inspection
//
// The inspector retrieves table columns in a dialect-aware way. The startup
// path uses it to verify that the migrated event log carries the derived
// lookup columns (document_id, elapsed_days) the reconciler depends on.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "event_log")
package database
