package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"stock-settlement/internal/adapter/cache"
	"stock-settlement/internal/adapter/in_memory"
	"stock-settlement/internal/adapter/pg"
	"stock-settlement/internal/adapter/redisstream"
	"stock-settlement/internal/config"
	"stock-settlement/internal/core"
	"stock-settlement/internal/port"
	"stock-settlement/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.EventLog.Backend != "redis" {
		log.Fatalf("worker requires the redis event log backend; the memory log is in-process only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo port.Repository
	switch cfg.Store.Backend {
	case "postgres":
		pgRepo, err := pg.NewPgRepo(ctx, cfg.Store.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to Postgres: %v", err)
		}
		defer pgRepo.Close(ctx)
		repo = pgRepo
	default:
		repo = in_memory.NewMemoryRepo()
	}

	var portfolioCache port.Cache
	if cfg.Cache.Backend == "redis" {
		portfolioCache = cache.NewRedisCache(
			cfg.Cache.RedisAddr,
			cfg.Cache.RedisPass,
			cfg.Cache.RedisDB,
			cfg.Cache.TTL(),
		)
	}

	eventLog := redisstream.NewEventLog(redisstream.Config{
		Addr:       cfg.EventLog.RedisAddr,
		Password:   cfg.EventLog.RedisPass,
		DB:         cfg.EventLog.RedisDB,
		Stream:     cfg.EventLog.Stream,
		Group:      cfg.EventLog.Group,
		Consumer:   cfg.EventLog.Consumer,
		Partitions: cfg.EventLog.Partitions,
	})
	defer eventLog.Close()

	engine := core.NewSettlementEngine(repo, portfolioCache)
	w := worker.New(repo, engine, eventLog)

	log.Printf("settlement worker consuming %s (%d partitions, group=%s)...",
		cfg.EventLog.Stream, cfg.EventLog.Partitions, cfg.EventLog.Group)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("worker failed: %v", err)
	}
	log.Println("settlement worker stopped")
}
