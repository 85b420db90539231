// Command main runs the database seeder for Gatherly.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"gatherly/internal/config"
	"gatherly/internal/database"
	"gatherly/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	numEvents := flag.Int("events", 60, "Number of events to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	demoUser := flag.String("demo", "demo", "Predictable demo login to create (empty to skip)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d events, clean=%v\n", *numUsers, *numEvents, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Connect to database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Run seeder
	s := seed.NewSeeder(db, seed.Options{})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if err := s.SeedTypes(ctx); err != nil {
		log.Fatalf("❌ Type vocabulary seeding failed: %v", err)
	}

	users, err := s.SeedUsers(ctx, *numUsers)
	if err != nil {
		log.Fatalf("❌ User seeding failed: %v", err)
	}

	if *demoUser != "" {
		demo, err := s.SeedDemoUser(ctx, *demoUser)
		if err != nil {
			log.Fatalf("❌ Demo user seeding failed: %v", err)
		}
		users = append(users, demo)
	}

	if err := s.SeedEvents(ctx, users, *numEvents); err != nil {
		log.Fatalf("❌ Event seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All test users have the password: password123")
}
