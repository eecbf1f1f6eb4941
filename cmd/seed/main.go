// Command seed provisions the demo catalog: four movies, each with a
// freshly generated seat grid.  It is developer tooling for local
// environments; it refuses to touch a database that already has shows.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/moviehall/ticket-booking/internal/config"
	"github.com/moviehall/ticket-booking/internal/database"
	"github.com/moviehall/ticket-booking/internal/model"
	"github.com/moviehall/ticket-booking/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shows := repository.NewShowRepo(db)
	existing, err := shows.List(ctx)
	if err != nil {
		log.Fatalf("list shows: %v", err)
	}
	if len(existing) > 0 {
		log.Fatalf("database already has %d shows; refusing to seed", len(existing))
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	movies := []model.Show{
		{
			Title:          "Inception",
			Description:    "A thief who steals corporate secrets through dream-sharing technology is given the inverse task of planting an idea.",
			Poster:         "https://image.tmdb.org/t/p/original/ljsZTbVsrQSqZgWeep2B1QiDKuh.jpg",
			Banner:         "https://image.tmdb.org/t/p/original/s3TBrRGB1iav7gFOCNx3H31MoES.jpg",
			StartsAt:       today.Add(18 * time.Hour),
			BasePriceCents: 18000,
		},
		{
			Title:          "Interstellar",
			Description:    "A team of explorers travel through a wormhole in space in an attempt to ensure humanity's survival.",
			Poster:         "https://image.tmdb.org/t/p/original/gEU2QniL6E77AAyNsEtZqvCd57P.jpg",
			Banner:         "https://image.tmdb.org/t/p/original/rAiYTfKGqDCRIIqo664sY9XZIvQ.jpg",
			StartsAt:       today.Add(21 * time.Hour),
			BasePriceCents: 20000,
		},
		{
			Title:          "The Dark Knight",
			Description:    "When the Joker wreaks havoc on Gotham, Batman must accept one of the greatest tests of his ability to fight injustice.",
			Poster:         "https://image.tmdb.org/t/p/w500/qJ2tW6WMUDux911r6m7haRef0WH.jpg",
			Banner:         "https://image.tmdb.org/t/p/original/hkBaDkMWbLaf8B1lsWsKX7Ew3Xq.jpg",
			StartsAt:       today.AddDate(0, 0, 1).Add(18 * time.Hour),
			BasePriceCents: 15000,
		},
		{
			Title:          "Avengers: Endgame",
			Description:    "After the devastating events of Infinity War, the Avengers assemble once more to reverse Thanos' actions.",
			Poster:         "https://image.tmdb.org/t/p/w500/or06FN3Dka5tukK1e9sl16pB3iy.jpg",
			Banner:         "https://image.tmdb.org/t/p/original/7RyHsO4yDXtBv1zUU3mTpHeQ0d5.jpg",
			StartsAt:       today.AddDate(0, 0, 2).Add(18 * time.Hour),
			BasePriceCents: 25000,
		},
	}

	for i := range movies {
		show := &movies[i]
		if err := shows.Create(ctx, show); err != nil {
			log.Fatalf("create show %q: %v", show.Title, err)
		}
		grid := model.GenerateSeats(show.ID, show.BasePriceCents)
		if err := shows.CreateSeatsBulk(ctx, grid); err != nil {
			log.Fatalf("create seats for %q: %v", show.Title, err)
		}
		log.Printf("seeded %q (show %d, %d seats)", show.Title, show.ID, len(grid))
	}
	log.Printf("seeding completed")
}
