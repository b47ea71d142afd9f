package db

import (
	"database/sql"
)

// Database is a connectable SQL backend. The sync ledger is its only user.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
