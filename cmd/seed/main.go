// Command seed fills the database with a random demo sharing graph.
package main

import (
	"flag"
	"log"

	"innercircle/internal/config"
	"innercircle/internal/database"
	"innercircle/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean the sharing graph before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one)")
	maxDays := flag.Int("days", 365, "Spread post dates over this many past days")
	demoEmail := flag.String("demo-email", "", "Email assigned to the first user for Google login")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to seed a production database")
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	summary, err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		Seed:        *seedValue,
		MaxDays:     *maxDays,
		DemoEmail:   *demoEmail,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! users=%d circles=%d posts=%d comments=%d images=%d videos=%d",
		summary.Users, summary.Circles, summary.Posts, summary.Comments, summary.Images, summary.Videos)
	if *demoEmail != "" {
		log.Printf("📧 %s can sign in with Google", *demoEmail)
	}
}
