package storage

import (
	"database/sql"
	"fmt"

	"github.com/loganlanou/chsn-merch/storage/db"
	_ "github.com/mattn/go-sqlite3"
)

// NewTestDB creates an in-memory SQLite database for testing
func NewTestDB() (*Storage, func(), error) {
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open test database: %w", err)
	}
	// every connection to :memory: is a separate database
	database.SetMaxOpenConns(1)

	if err := migrate(database, embedMigrations); err != nil {
		database.Close()
		return nil, nil, err
	}

	store := &Storage{
		db:      database,
		Queries: db.New(database),
	}

	cleanup := func() {
		database.Close()
	}

	return store, cleanup, nil
}
