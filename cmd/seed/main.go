// Command main runs the database seeder for fittrack.
package main

import (
	"flag"
	"log"

	"fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 25, "Number of demo users to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	adminUser := flag.String("admin", "admin", "Username for the admin account")
	adminPass := flag.String("admin-pass", seed.DemoPassword, "Password for the admin account")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, clean=%v\n", *numUsers, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if _, err = database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)
	if err := s.Run(seed.Options{
		NumUsers:    *numUsers,
		ShouldClean: *shouldClean,
		AdminUser:   *adminUser,
		AdminPass:   *adminPass,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with demo data.")
	log.Printf("All demo users share the password: %s", seed.DemoPassword)
}
