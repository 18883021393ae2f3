// Seeds a resource's weekly schedule into Redis from a JSON file.
//
// Usage: go run scripts/seed-schedule/main.go <resource-id> <template.json>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/slotwise/scheduling-platform/internal/config"
	"github.com/slotwise/scheduling-platform/internal/schedule"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/seed-schedule/main.go <resource-id> <template.json>")
		os.Exit(1)
	}
	resourceID := os.Args[1]
	templateFile := os.Args[2]

	_ = godotenv.Load()
	cfg := config.Load()

	data, err := os.ReadFile(templateFile)
	if err != nil {
		fmt.Printf("read file: %v\n", err)
		os.Exit(1)
	}

	// Partial files overlay the defaults, so a seed file only needs the
	// days it changes.
	tmpl := schedule.DefaultTemplate()
	if err := json.Unmarshal(data, &tmpl); err != nil {
		fmt.Printf("parse JSON: %v\n", err)
		os.Exit(1)
	}

	if report := schedule.ValidateTemplate(tmpl); !report.Valid {
		fmt.Println("template is invalid:")
		for _, e := range report.Errors {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Printf("redis ping: %v\n", err)
		os.Exit(1)
	}

	store := schedule.NewStore(client)
	if err := store.SaveTemplate(ctx, resourceID, tmpl); err != nil {
		fmt.Printf("save template: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded schedule for %s (version %s, %d exceptions)\n", resourceID, tmpl.Version, len(tmpl.Exceptions))
}
