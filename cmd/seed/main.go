// Package main provides a tool to seed the database with sample collection data.
//
// It creates a handful of sets and imports small checklists into them so the
// list, stats, and search features have something to show during development.
//
// Usage:
//
//	DATA_PATH=~/CardBinder/data go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/service"
	"github.com/cardbinder/cardbinder-server/internal/store"
)

var dataPath = flag.String("data-path", "", "Data directory (defaults to $DATA_PATH or ~/CardBinder/data)")

func main() {
	flag.Parse()

	base := *dataPath
	if base == "" {
		base = os.Getenv("DATA_PATH")
	}
	if base == "" {
		base = os.ExpandEnv("$HOME/CardBinder/data")
	}
	dbPath := filepath.Join(base, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := store.New(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	stats := service.NewStatsService(s)
	sets := service.NewSetService(s, stats, logger)
	checklists := service.NewChecklistService(s, stats, logger)

	ctx := context.Background()

	seedBaseSet(ctx, sets, checklists)
	seedRainbow(ctx, sets, checklists)

	fmt.Println("Done.")
}

func seedBaseSet(ctx context.Context, sets *service.SetService, checklists *service.ChecklistService) {
	set, err := sets.CreateSet(ctx, service.NewSet{
		Name:    "2025 Topps Series 1",
		Year:    2025,
		Brand:   "Topps",
		SetType: domain.SetTypeBase,
	})
	if err != nil {
		log.Fatalf("Failed to create base set: %v", err)
	}

	text := "27 Mike Trout - Los Angeles Angels\n" +
		"100 Pete Crow-Armstrong - Chicago Cubs\n" +
		"336 Jose Ramirez - Cleveland Guardians\n" +
		"577 Trevor Story - Boston Red Sox\n"

	report, err := checklists.ImportChecklist(ctx, set.ID, service.ImportRequest{Text: text})
	if err != nil {
		log.Fatalf("Failed to import checklist: %v", err)
	}
	fmt.Printf("Seeded %q with %d cards\n", set.Name, report.Inserted)
}

func seedRainbow(ctx context.Context, sets *service.SetService, checklists *service.ChecklistService) {
	set, err := sets.CreateSet(ctx, service.NewSet{
		Name:    "2023 Prizm Luka Doncic Rainbow",
		Year:    2023,
		Brand:   "Panini",
		SetType: domain.SetTypeRainbow,
	})
	if err != nil {
		log.Fatalf("Failed to create rainbow set: %v", err)
	}

	if _, err := checklists.AddCard(ctx, set.ID, service.NewCard{
		CardNumber: "75",
		PlayerName: "Luka Doncic",
		Team:       "Dallas Mavericks",
	}); err != nil {
		log.Fatalf("Failed to add rainbow base card: %v", err)
	}

	report, err := checklists.ImportRainbow(ctx, set.ID, "Silver\nRed – /299\nGold – /10\nBlack – 1/1", false)
	if err != nil {
		log.Fatalf("Failed to import rainbow: %v", err)
	}
	fmt.Printf("Seeded %q with %d parallels\n", set.Name, report.Inserted)
}
