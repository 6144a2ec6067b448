package main

import (
	"context"
	"fmt"
	"os"

	"github.com/marcelsud/webhook-inspector/config"
	"github.com/marcelsud/webhook-inspector/webhook/store"
)

/* migrate - applies or rolls back the schema of DATABASE_URL
 * Usage: go run ./cmd/migrate [up|down]
 * Exit codes: 0 = ok, 1 = failed
 */

func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}
	if direction != "up" && direction != "down" {
		fmt.Fprintf(os.Stderr, "usage: migrate [up|down]\n")
		os.Exit(1)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	driver, _, err := store.Resolve(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	repo, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", driver, err)
		os.Exit(1)
	}
	defer repo.Close(context.Background())

	if direction == "up" {
		err = repo.MigrateUp()
	} else {
		err = repo.MigrateDown()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration %s failed: %v\n", direction, err)
		repo.Close(context.Background())
		os.Exit(1)
	}
	fmt.Printf("Migrations %s applied (%s)\n", direction, driver)
}
