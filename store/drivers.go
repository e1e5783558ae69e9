package store

// Supported drivers are linked here so callers pick one by name through
// Config.Driver without managing driver imports themselves.
import (
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)
