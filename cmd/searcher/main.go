package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer/lexical"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file, e.g. configs/searcher.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"corpus_source", cfg.Corpus.Source,
		"scoring_policy", cfg.Search.ScoringPolicy,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
	}

	src, closer, err := corpus.OpenSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening corpus source: %w", err)
	}
	defer closer.Close()

	engine := indexer.NewEngine(src, lexical.Options{
		MaxFeatures: cfg.Index.MaxFeatures,
		NGramMax:    cfg.Index.NGramMax,
	}, m)
	if _, err := engine.Reload(ctx); err != nil {
		return fmt.Errorf("building initial index: %w", err)
	}

	exec, err := executor.New(engine, executor.Options{
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxResults:     cfg.Search.MaxResults,
		FuzzyThreshold: cfg.Search.FuzzyThreshold,
		ScoringPolicy:  cfg.Search.ScoringPolicy,
	}, m)
	if err != nil {
		return fmt.Errorf("creating executor: %w", err)
	}

	var (
		queryCache  *cache.QueryCache
		redisClient *pkgredis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			engine.OnSwap(func(snap *indexer.Snapshot) {
				invalidateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if _, err := queryCache.Invalidate(invalidateCtx); err != nil {
					slog.Warn("cache invalidation after reload failed", "version", snap.Version, "error", err)
				}
			})
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	aggregator := analytics.NewAggregator()
	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer producer.Close()
		// Searches are aggregated from the topic so the endpoint reflects
		// every replica.
		collector = analytics.NewCollector(producer, nil, 100, 5*time.Second)

		// A per-host group makes every replica receive every reload event.
		reloadCfg := cfg.Kafka
		reloadCfg.ConsumerGroup = fmt.Sprintf("%s-%s", cfg.Kafka.ConsumerGroup, hostname())
		reloads := kafka.NewConsumer(reloadCfg, cfg.Kafka.Topics.CorpusReload, consumer.HandleReload(engine))
		g.Go(func() error { return reloads.Start(gctx) })

		events := kafka.NewConsumer(reloadCfg, cfg.Kafka.Topics.SearchEvents, analytics.HandleEvent(aggregator))
		g.Go(func() error { return events.Start(gctx) })
		slog.Info("kafka enabled",
			"reload_topic", cfg.Kafka.Topics.CorpusReload,
			"events_topic", cfg.Kafka.Topics.SearchEvents,
			"group", reloadCfg.ConsumerGroup,
		)
	} else {
		collector = analytics.NewCollector(nil, aggregator, 0, 0)
	}
	collector.Start(gctx)

	checker := health.NewChecker()
	checker.Register("index", health.PingCheck(engine, health.StatusDown))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient, health.StatusDegraded))
	} else if cfg.Redis.Enabled {
		checker.Register("redis", health.PingCheck(nil, health.StatusDegraded))
	}

	if m != nil {
		metricsServer := metrics.NewServer(cfg.Metrics.Port, nil, map[string]http.Handler{
			"GET /health/live": checker.LiveHandler(),
		})
		g.Go(func() error { return metricsServer.Run(gctx, 5*time.Second) })
	}

	h := handler.New(handler.Deps{
		Searcher:  exec,
		Corpus:    engine,
		Cache:     queryCache,
		Collector: collector,
		Tracer:    tracing.NewTracer(cfg.Tracing.Enabled, cfg.Tracing.SampleRate),
		Metrics:   m,
		Timeout:   cfg.Search.Timeout,
	})

	mux := http.NewServeMux()
	h.Register(mux)
	analytics.NewHandler(aggregator).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		slog.Info("search service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	collector.Close()
	return err
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "local"
	}
	return name
}
