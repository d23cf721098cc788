// Package kv provides KeyValueStore adapters for chat state persistence.
package kv

import (
	"fmt"

	"github.com/iksnae/docchat/internal"
)

// Store is a KeyValueStore that holds resources
type Store interface {
	internal.KeyValueStore
	Close() error
}

// Supported drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Open creates a store for driver. dsn is a file path for sqlite and an
// address or redis:// URL for redis; it is ignored for memory.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "":
		return OpenSQLite(dsn)
	case DriverRedis:
		return OpenRedis(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s (supported: sqlite, memory, redis)", driver)
	}
}
