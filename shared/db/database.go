package db

import (
	"database/sql"
)

// Database abstracts the concrete store so cmd wiring and tests can swap
// implementations.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
