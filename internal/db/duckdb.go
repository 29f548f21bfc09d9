// Package db manages the DuckDB connection backing the ad-hoc measurement
// query endpoint.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Get returns the singleton DuckDB connection, creating the database file
// under the data directory on first use.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		dbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(dbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
		if initErr != nil {
			return
		}

		// The spatial extension backs geometry queries over ingested
		// survey points; failures here are non-fatal.
		for _, ext := range []string{"spatial", "parquet"} {
			if _, err := instance.Exec(fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
				continue
			}
		}

		_, initErr = instance.Exec(`CREATE TABLE IF NOT EXISTS measurements (
			site VARCHAR,
			laeq DOUBLE,
			lat DOUBLE,
			lon DOUBLE,
			source_file VARCHAR
		)`)
	})
	return instance, initErr
}

// Close closes the database connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}
