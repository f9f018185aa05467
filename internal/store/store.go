// Package store implements the persistence interfaces declared by the
// alert, news, notify, and social packages on top of the pgx pool. All
// queries run through prepared statements registered in internal/db.
package store

import (
	"github.com/bvrtu/quakeconnect-data/internal/db"
)

// Store groups all database-backed reads and writes.
type Store struct {
	pool *db.Pool
}

// New creates a Store over an initialized pool.
func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}
