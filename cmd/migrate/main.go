package main

import (
	"log"

	"jtimer/backend/internal/config"
	"jtimer/backend/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	source := "embedded schema"
	if cfg.MigrationsDir != "" {
		source = cfg.MigrationsDir
	}
	if err := db.RunMigrations(database, db.MigrationSource(cfg.MigrationsDir)); err != nil {
		log.Fatalf("run migrations from %s: %v", source, err)
	}

	log.Printf("migrations applied successfully to %s", cfg.DBPath)
}
