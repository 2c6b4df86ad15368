package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Rrens/text-to-sql-chat/internal/config"
	"github.com/Rrens/text-to-sql-chat/internal/repository/postgres"
	"github.com/Rrens/text-to-sql-chat/internal/repository/sqlite"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	switch cfg.Store.Driver {
	case "sqlite", "":
		fmt.Printf("Migrating SQLite history at %s...\n", cfg.Store.SQLitePath)
		err = sqlite.RunMigrations(cfg.Store.SQLitePath)
	case "postgres":
		fmt.Printf("Migrating database at %s:%d...\n", cfg.Store.Database.Host, cfg.Store.Database.Port)
		err = postgres.RunMigrations(cfg.Store.Database.DSN())
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migrations applied")
}
