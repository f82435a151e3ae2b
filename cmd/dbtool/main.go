package main

import (
	"context"
	"database/sql"
	"delivery-zone-planner/internal/adapters/repositories"
	"delivery-zone-planner/internal/config"
	"delivery-zone-planner/internal/platform/db"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedOnly := flag.Bool("seed-only", false, "skip schema creation")
	schemaOnly := flag.Bool("schema-only", false, "skip seeding")
	flag.Parse()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/customers.json")
	if err := initAndSeed(ctx, conn, seedPath, !*seedOnly, !*schemaOnly); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, schema, seed bool) error {
	if schema {
		log.Println("Initializing database schema...")
		if err := repositories.InitSchema(ctx, conn); err != nil {
			return err
		}
		log.Println("Schema ready.")
	}

	if seed {
		log.Printf("Seeding database from %s...", seedPath)
		if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
			return err
		}
		log.Println("Seeding complete.")
	}

	return nil
}
