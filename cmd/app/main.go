package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"community-booking/internal/config"
	pg "community-booking/internal/infra/db/postgres"
	"community-booking/internal/infra/logging"
	"community-booking/internal/infra/mail"
	"community-booking/internal/infra/metrics"
	red "community-booking/internal/infra/redis"
	"community-booking/internal/infra/sched"
	"community-booking/internal/infra/web"
	"community-booking/internal/infra/worker"
	"community-booking/internal/usecase"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	txm := pg.NewTxManager(pool, cfg.Database.LockTimeout)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	subRepo := pg.NewSubscriptionRepo(pool)
	creditRepo := pg.NewCreditRepo(pool)
	sessionRepo := pg.NewSessionRepo(pool)
	reservationRepo := pg.NewReservationRepo(pool)
	membershipRepo := pg.NewMembershipRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL)

	// ---- Outbound adapters ----
	notifier := mail.NewNotifier(&cfg.Mail, logger)
	identity := web.ClaimsIdentity{}
	pool2 := worker.NewPool(cfg.Booking.NotifyWorkers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	// ---- Use cases ----
	ledger := usecase.NewCreditLedger(creditRepo, logger)
	overlaps := usecase.NewOverlapChecker(reservationRepo)
	subUC := usecase.NewSubscriptionUseCase(subRepo, planRepo, creditRepo, membershipRepo, txm, cfg.Booking.PendingReuseWindow, logger)
	bookingUC := usecase.NewBookingUseCase(sessionRepo, reservationRepo, subRepo, ledger, overlaps, txm, notifier, identity, pool2, logger)
	planUC := usecase.NewPlanUseCase(planRepo, logger)
	sessionUC := usecase.NewSessionUseCase(sessionRepo, logger)
	statsUC := usecase.NewStatsUseCase(subRepo, reservationRepo, creditRepo)

	// ---- Expiry worker ----
	expiry := sched.NewExpiryWorker(cfg.Scheduler.ExpiryCheckInterval, subUC, statsUC, logger)
	go func() { _ = expiry.Run(ctx) }()

	// ---- HTTP server ----
	srv := web.NewServer(cfg, subUC, bookingUC, planUC, sessionUC, statsUC, ledger, rateLimiter, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	cancel()
}
