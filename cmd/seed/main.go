package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"community-booking/internal/config"
	"community-booking/internal/domain/model"
	pg "community-booking/internal/infra/db/postgres"
	"community-booking/internal/infra/logging"
	"community-booking/internal/usecase"
)

// Seeds a demo community with plans and a week of sessions so the booking
// flow can be exercised end to end on a fresh database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	communityID := flag.String("community", "demo-community", "community to seed")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planUC := usecase.NewPlanUseCase(pg.NewPlanRepo(pool), logger)
	sessionUC := usecase.NewSessionUseCase(pg.NewSessionRepo(pool), logger)

	// If plans already exist, do nothing.
	plans, err := planUC.ListByCommunity(ctx, *communityID)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present in %s. No changes.\n", len(plans), *communityID)
		return
	}

	seedPlans := []struct {
		Name    string
		Credits int
		Price   int64
		Period  string
	}{
		{"Básico", 4, 29_900, "monthly"},
		{"Estándar", 12, 59_900, "monthly"},
		{"Ilimitado", 0, 99_900, "monthly"},
		{"Anual", 0, 999_000, "annual"},
	}
	for _, s := range seedPlans {
		p, err := planUC.Create(ctx, *communityID, s.Name, s.Credits, s.Price, model.PlanPeriod(s.Period))
		if err != nil {
			log.Fatalf("create plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded plan: %s (id=%s, credits=%d)\n", p.Name, p.ID, p.Credits)
	}

	// A week of sessions: one presencial slot and one virtual slot per day.
	day := time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	for i := 0; i < 7; i++ {
		start := day.AddDate(0, 0, i).Add(18 * time.Hour)
		end := start.Add(time.Hour)

		p, err := sessionUC.CreatePresencial(ctx, "yoga", *communityID, "sala-1", 10, start, end)
		if err != nil {
			log.Fatalf("create presencial session: %v", err)
		}
		fmt.Printf("seeded presencial session %s at %s\n", p.ID, start.Format(time.RFC3339))

		v, err := sessionUC.CreateVirtual(ctx, "nutricion", *communityID, "prof-1", "https://meet.example.com/"+p.ID, start.Add(2*time.Hour), end.Add(2*time.Hour))
		if err != nil {
			log.Fatalf("create virtual session: %v", err)
		}
		fmt.Printf("seeded virtual session %s\n", v.ID)
	}

	fmt.Println("Seeding complete.")
}
