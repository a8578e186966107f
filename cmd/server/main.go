package main

import (
	"context"
	"flag"
	"log"

	"github.com/shopspring/decimal"

	"stock-settlement/internal/adapter/cache"
	"stock-settlement/internal/adapter/in_memory"
	"stock-settlement/internal/adapter/pg"
	"stock-settlement/internal/adapter/redisstream"
	httpapi "stock-settlement/internal/api/http"
	"stock-settlement/internal/config"
	"stock-settlement/internal/core"
	"stock-settlement/internal/middleware"
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

	ctx := context.Background()

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
	switch cfg.Cache.Backend {
	case "redis":
		portfolioCache = cache.NewRedisCache(
			cfg.Cache.RedisAddr,
			cfg.Cache.RedisPass,
			cfg.Cache.RedisDB,
			cfg.Cache.TTL(),
		)
	case "memory":
		portfolioCache = in_memory.NewCache()
	}

	quotes := in_memory.NewQuoteSource()
	for _, seed := range cfg.Quotes {
		price, err := decimal.NewFromString(seed.Price)
		if err != nil {
			log.Fatalf("invalid seed price for %s: %v", seed.Symbol, err)
		}
		quotes.SetPrice(seed.Symbol, price)
	}

	engine := core.NewSettlementEngine(repo, portfolioCache)

	var exec core.Executor
	if cfg.Mode == "async" {
		switch cfg.EventLog.Backend {
		case "redis":
			eventLog := redisstream.NewEventLog(redisstream.Config{
				Addr:       cfg.EventLog.RedisAddr,
				Password:   cfg.EventLog.RedisPass,
				DB:         cfg.EventLog.RedisDB,
				Stream:     cfg.EventLog.Stream,
				Group:      cfg.EventLog.Group,
				Partitions: cfg.EventLog.Partitions,
			})
			defer eventLog.Close()
			exec = core.NewAsyncExecutor(eventLog)
		default:
			// Memory event log: consume in-process, since no other
			// process can see it.
			eventLog := in_memory.NewEventLog(cfg.EventLog.Partitions)
			exec = core.NewAsyncExecutor(eventLog)
			w := worker.New(repo, engine, eventLog)
			go func() {
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					log.Fatalf("in-process worker stopped: %v", err)
				}
			}()
		}
	} else {
		exec = core.NewSyncExecutor(engine)
	}

	intake := core.NewIntake(repo, quotes, portfolioCache, exec)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitMs > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitInterval())
	}
	server := httpapi.NewHTTPServer(intake, quotes, limiter)

	log.Printf("starting HTTP server on %s (mode=%s, store=%s)...", cfg.HTTPAddr, cfg.Mode, cfg.Store.Backend)
	if err := server.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
