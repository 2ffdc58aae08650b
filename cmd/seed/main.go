// Command main runs the database seeder for PollHive.
package main

import (
	"flag"
	"log"

	"pollhive/internal/config"
	"pollhive/internal/database"
	"pollhive/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPolls := flag.Int("polls", 100, "Number of polls to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d polls, clean=%v\n", *numUsers, *numPolls, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPolls:    *numPolls,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All test users have the password: Password123!abc")
}
