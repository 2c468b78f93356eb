// Package health probes the dependencies the API needs to serve traffic.
package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/drivelane/drivelane/internal/types"

	// Database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// CheckDatabase opens a fresh connection outside the application pool and pings it.
func CheckDatabase(ctx context.Context, config types.DatabaseConfig) error {
	timeout := config.Timeout

	if timeout == 0 {
		timeout = 5
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	var driverName string

	switch config.Driver {
	case "postgres", "postgresql":
		driverName = "postgres"
	case "mysql":
		driverName = "mysql"
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Driver)
	}

	if config.DSN == "" {
		return fmt.Errorf("database DSN is empty")
	}

	db, err := sql.Open(driverName, config.DSN)

	if err != nil {
		return fmt.Errorf("failed to open a database connection: %w", err)
	}

	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
