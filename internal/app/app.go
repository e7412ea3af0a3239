// Package app initializes and holds the long-lived application
// services, acting as the composition root.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/api"
	"github.com/nutrisync/foodsearch/internal/cache"
	"github.com/nutrisync/foodsearch/internal/clock/system"
	"github.com/nutrisync/foodsearch/internal/config"
	"github.com/nutrisync/foodsearch/internal/federation"
	"github.com/nutrisync/foodsearch/internal/food"
	"github.com/nutrisync/foodsearch/internal/id/uuid"
	"github.com/nutrisync/foodsearch/internal/provider/providera"
	"github.com/nutrisync/foodsearch/internal/provider/providerb"
	"github.com/nutrisync/foodsearch/internal/scheduler"
	"github.com/nutrisync/foodsearch/internal/scraper"
	"github.com/nutrisync/foodsearch/internal/storage/memory"
	"github.com/nutrisync/foodsearch/internal/storage/postgres"
	"github.com/nutrisync/foodsearch/internal/translate"
)

// stores bundles the five persistence interfaces behind one wiring
// decision.
type stores struct {
	products food.ProductStore
	jobs     food.JobStore
	cache    food.CacheStore
	demand   food.DemandStore
	configs  food.ConfigStore
	close    func()
}

// App holds the assembled service graph.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	server    *api.Server
	scheduler *scheduler.Scheduler
	cache     *cache.Cache
	closeDB   func()
}

// New assembles the application from configuration. An empty database
// DSN selects the in-memory stores, which is the development default.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	st, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	clock := system.New()
	ids := uuid.New()

	clientA := providera.NewClient(
		cfg.ProviderA.BaseURL,
		cfg.ProviderA.APIKey,
		time.Duration(cfg.ProviderA.TimeoutSeconds)*time.Second,
	)
	clientB := providerb.NewClient(
		cfg.ProviderB.BaseURL,
		cfg.ProviderB.APIKey,
		time.Duration(cfg.ProviderB.TimeoutSeconds)*time.Second,
	)

	normalizer := buildNormalizer(cfg, logger)
	resultCache := cache.New(st.cache, clock, cfg.CacheTTL(), logger)

	engine := federation.New(federation.Deps{
		ProviderA:       clientA,
		ProviderB:       providerb.NewSearcher(clientB),
		Barcodes:        clientB,
		Cache:           resultCache,
		Normalizer:      normalizer,
		Demand:          st.demand,
		Clock:           clock,
		Logger:          logger,
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	})

	scraperA := scraper.NewProviderA(clientA, scraper.CatalogDeps{
		Store:    st.products,
		Clock:    clock,
		Logger:   logger,
		PageSize: cfg.Scrape.PageSize,
		MinDelay: time.Duration(cfg.ProviderA.MinDelayMs) * time.Millisecond,
	})
	scraperB := scraper.NewProviderB(clientB, scraper.CatalogDeps{
		Store:    st.products,
		Clock:    clock,
		Logger:   logger,
		PageSize: cfg.Scrape.PageSize,
		MinDelay: time.Duration(cfg.ProviderB.MinDelayMs) * time.Millisecond,
	})
	scrapers := []scraper.Scraper{scraperA, scraperB}

	runner := scraper.NewRunner(scraper.RunnerDeps{
		Jobs:                 st.jobs,
		Configs:              st.configs,
		Products:             st.products,
		IDs:                  ids,
		Clock:                clock,
		Logger:               logger,
		MaxProductsPerRun:    cfg.Scrape.MaxProductsPerRun,
		MaxConsecutiveErrors: cfg.Scrape.MaxConsecutiveErrors,
	})

	sched := scheduler.New(runner, scrapers, st.demand, st.products, clock, logger, scheduler.Config{
		IncrementalInterval: cfg.Scheduler.IncrementalInterval,
		DemandInterval:      cfg.Scheduler.DemandInterval,
		PopularityInterval:  cfg.Scheduler.PopularityInterval,
		DemandBatchSize:     cfg.Scheduler.DemandBatchSize,
		MinPopularity:       cfg.Scheduler.MinPopularity,
		StaleAfterDays:      cfg.Scheduler.StaleAfterDays,
	})

	server := api.NewServer(engine, runner, scrapers, st.jobs, st.products, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		server:    server,
		scheduler: sched,
		cache:     resultCache,
		closeDB:   st.close,
	}, nil
}

// Run starts the scheduler and HTTP server and blocks until the
// context is canceled or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.scheduler.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	a.Close()
	return nil
}

// Close stops background work and releases resources.
func (a *App) Close() {
	a.scheduler.Stop()
	a.cache.Close()
	if a.closeDB != nil {
		a.closeDB()
	}
	a.logger.Info("shutdown complete")
	_ = a.logger.Sync()
}

func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (stores, error) {
	if cfg.DB.DSN == "" {
		logger.Info("no database configured, using in-memory stores")
		return stores{
			products: memory.NewProductStore(),
			jobs:     memory.NewJobStore(),
			cache:    memory.NewCacheStore(),
			demand:   memory.NewDemandStore(),
			configs:  memory.NewConfigStore(),
		}, nil
	}

	logger.Info("connecting to postgres")
	pool, err := postgres.Connect(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
	if err != nil {
		return stores{}, fmt.Errorf("initialize database: %w", err)
	}
	return stores{
		products: postgres.NewProductStore(pool),
		jobs:     postgres.NewJobStore(pool),
		cache:    postgres.NewCacheStore(pool),
		demand:   postgres.NewDemandStore(pool),
		configs:  postgres.NewConfigStore(pool),
		close:    pool.Close,
	}, nil
}

func buildNormalizer(cfg config.Config, logger *zap.Logger) *translate.Normalizer {
	translator, err := translate.NewClient(cfg.Translate.Endpoint, cfg.Translate.APIKey, cfg.TranslateTimeout())
	if err != nil {
		logger.Info("translation disabled", zap.Error(err))
		return translate.NewNormalizer(nil, nil, cfg.TranslateTimeout(), logger)
	}
	return translate.NewNormalizer(translator, translate.NewMemoryStore(), cfg.TranslateTimeout(), logger)
}
