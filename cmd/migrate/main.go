package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/samirrijal/tunitrip/internal/adapters/catalog"
	"github.com/samirrijal/tunitrip/internal/adapters/postgres"
	"github.com/samirrijal/tunitrip/internal/pkg/config"
)

var migrations = []string{
	"migrations/001_vehicles.sql",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed> [catalog.json]")
	}

	cfg, err := config.Load("tunitrip-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, db, migrations)
	case "down":
		down := make([]string, 0, len(migrations))
		for i := len(migrations) - 1; i >= 0; i-- {
			down = append(down, migrations[i][:len(migrations[i])-len(".sql")]+".down.sql")
		}
		runMigrations(ctx, db, down)
	case "seed":
		path := cfg.Catalog.Path
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		seed(ctx, db, path)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, db *postgres.DB, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

// seed loads the vehicle catalog into Postgres: the bundled one, or path when given.
func seed(ctx context.Context, db *postgres.DB, path string) {
	var (
		repo *catalog.Repo
		err  error
	)
	if path != "" {
		repo, err = catalog.Load(path)
	} else {
		repo, err = catalog.Default()
	}
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	vehicles, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	if err := postgres.NewVehicleRepo(db).Upsert(ctx, vehicles); err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Printf("seeded %d vehicles", len(vehicles))
}
