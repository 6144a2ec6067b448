package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-inspector/config"
	"github.com/marcelsud/webhook-inspector/seed"
	"github.com/marcelsud/webhook-inspector/webhook/store"
)

/*
seed - fills the store with fake Stripe deliveries

Run with:
  go run ./cmd/seed -n 75

Records get explicit creation times: the first 15 fall within the last
twelve hours, the others 1 to 5 days back. Every body is signed the way
Stripe signs deliveries; the secret is printed at the end so generated
handlers can be checked against the seeded data. Migrations are applied first.
*/

func main() {
	n := flag.Int("n", seed.DefaultCount, "number of records to insert")
	fakerSeed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}
	ctx := context.Background()
	repo, err := store.Open(cfg)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		return
	}
	defer repo.Close(ctx)
	if err := repo.MigrateUp(); err != nil {
		fmt.Printf("Error applying migrations: %v\n", err)
		return
	}

	generator := seed.NewGenerator(*fakerSeed, time.Now())
	batch, err := generator.Batch(*n)
	if err != nil {
		fmt.Printf("Error generating records: %v\n", err)
		return
	}
	inserted, err := repo.StoreBatch(ctx, batch)
	if err != nil {
		fmt.Printf("Error inserting records: %v\n", err)
		return
	}
	fmt.Printf("Inserted %d webhooks\n", inserted)
	fmt.Printf("stripe-signature secret: %s\n", generator.Secret())
}
