// Seeder loads a tab-separated pricebook file into the database. Each line
// carries three fields: item id, display name and unit price in dollars.
// Malformed lines are skipped; a malformed price aborts the load.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/pos-lane/internal/pricebook"
)

func main() {
	file := flag.String("file", "itemlist.txt", "path to the tab-separated pricebook file")
	truncate := flag.Bool("truncate", false, "delete existing pricebook rows before loading")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open pricebook file: %v", err)
	}
	defer f.Close()

	products, err := pricebook.ParseTSV(f)
	if err != nil {
		log.Fatalf("Failed to parse pricebook file: %v", err)
	}
	if len(products) == 0 {
		log.Fatal("Pricebook file contains no loadable lines")
	}

	if *truncate {
		if _, err := pool.Exec(ctx, "DELETE FROM pricebook"); err != nil {
			log.Fatalf("Failed to truncate pricebook: %v", err)
		}
	}

	store := pricebook.PGStore{Pool: pool}
	for _, p := range products {
		if err := store.Upsert(ctx, p); err != nil {
			log.Fatalf("Failed to upsert item %s: %v", p.ID, err)
		}
	}
	log.Printf("Loaded %d pricebook items from %s", len(products), *file)

	// Stale cache entries would mask the new prices until they expire.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		catalog := pricebook.Catalog{Store: store, Cache: pricebook.NewCache(client, 0)}
		for _, p := range products {
			catalog.Invalidate(ctx, p.ID)
		}
		log.Println("Pricebook cache invalidated")
	}

	log.Println("Seeding completed successfully!")
}
