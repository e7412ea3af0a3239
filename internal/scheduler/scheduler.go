// Package scheduler owns the background cadences: periodic catalog
// sweeps, demand-driven crawls and popularity refreshes.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/food"
	"github.com/nutrisync/foodsearch/internal/scraper"
)

// Config sets trigger cadences and batch bounds.
type Config struct {
	IncrementalInterval time.Duration
	DemandInterval      time.Duration
	PopularityInterval  time.Duration
	DemandBatchSize     int
	MinPopularity       int
	StaleAfterDays      int
	RefreshBatchSize    int
}

// trigger is one periodic cadence with its own lifecycle. A nil stop
// channel means the trigger is not running.
type trigger struct {
	interval time.Duration
	tick     func(context.Context)

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// Scheduler drives the scrapers on timers. Each cadence is its own
// trigger that can be started and stopped on its own; every tick
// catches and logs its own failures, so a bad tick never stops the
// cadence.
type Scheduler struct {
	runner   *scraper.Runner
	scrapers []scraper.Scraper
	demand   food.DemandStore
	products food.ProductStore
	clock    food.Clock
	logger   *zap.Logger
	cfg      Config

	triggers map[string]*trigger
}

// New builds a Scheduler over the given scrapers. It carries one
// incremental trigger per provider plus the demand and popularity
// triggers.
func New(runner *scraper.Runner, scrapers []scraper.Scraper, demand food.DemandStore, products food.ProductStore, clock food.Clock, logger *zap.Logger, cfg Config) *Scheduler {
	if cfg.DemandBatchSize <= 0 {
		cfg.DemandBatchSize = 10
	}
	if cfg.RefreshBatchSize <= 0 {
		cfg.RefreshBatchSize = 100
	}
	if cfg.StaleAfterDays <= 0 {
		cfg.StaleAfterDays = 30
	}
	s := &Scheduler{
		runner:   runner,
		scrapers: scrapers,
		demand:   demand,
		products: products,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
		triggers: make(map[string]*trigger),
	}
	for _, sc := range scrapers {
		s.triggers["incremental:"+string(sc.Provider())] = &trigger{
			interval: cfg.IncrementalInterval,
			tick: func(ctx context.Context) {
				s.runIncremental(ctx, sc)
			},
		}
	}
	s.triggers["demand"] = &trigger{interval: cfg.DemandInterval, tick: s.RunDemandTick}
	s.triggers["popularity"] = &trigger{interval: cfg.PopularityInterval, tick: s.RunPopularityTick}
	return s
}

// Triggers lists the trigger names in stable order.
func (s *Scheduler) Triggers() []string {
	names := make([]string, 0, len(s.triggers))
	for name := range s.triggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartTrigger launches one trigger's loop. Unknown names, triggers
// without an interval and already-running triggers are errors.
func (s *Scheduler) StartTrigger(ctx context.Context, name string) error {
	tr, ok := s.triggers[name]
	if !ok {
		return fmt.Errorf("unknown trigger %q", name)
	}
	if tr.interval <= 0 {
		return fmt.Errorf("trigger %q has no interval configured", name)
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.stop != nil {
		return fmt.Errorf("trigger %q already running", name)
	}
	stop := make(chan struct{})
	tr.stop = stop
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		ticker := time.NewTicker(tr.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tr.tick(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("trigger started", zap.String("trigger", name), zap.Duration("interval", tr.interval))
	return nil
}

// StopTrigger halts one trigger and waits for its in-flight tick.
// Stopping a trigger that is not running is an error.
func (s *Scheduler) StopTrigger(name string) error {
	tr, ok := s.triggers[name]
	if !ok {
		return fmt.Errorf("unknown trigger %q", name)
	}
	tr.mu.Lock()
	stop := tr.stop
	tr.stop = nil
	tr.mu.Unlock()
	if stop == nil {
		return fmt.Errorf("trigger %q not running", name)
	}
	close(stop)
	tr.wg.Wait()
	s.logger.Info("trigger stopped", zap.String("trigger", name))
	return nil
}

// Start launches every trigger that has an interval configured.
func (s *Scheduler) Start(ctx context.Context) {
	for _, name := range s.Triggers() {
		if s.triggers[name].interval <= 0 {
			continue
		}
		if err := s.StartTrigger(ctx, name); err != nil {
			s.logger.Warn("trigger start failed", zap.String("trigger", name), zap.Error(err))
		}
	}
}

// Stop halts all running triggers and waits for in-flight ticks.
func (s *Scheduler) Stop() {
	for _, name := range s.Triggers() {
		s.triggers[name].mu.Lock()
		running := s.triggers[name].stop != nil
		s.triggers[name].mu.Unlock()
		if !running {
			continue
		}
		if err := s.StopTrigger(name); err != nil {
			s.logger.Warn("trigger stop failed", zap.String("trigger", name), zap.Error(err))
		}
	}
}

// RunIncrementalTick sweeps every provider catalog once.
func (s *Scheduler) RunIncrementalTick(ctx context.Context) {
	for _, sc := range s.scrapers {
		s.runIncremental(ctx, sc)
	}
}

func (s *Scheduler) runIncremental(ctx context.Context, sc scraper.Scraper) {
	if _, err := s.runner.RunIncremental(ctx, sc); err != nil {
		s.logger.Error("incremental scrape failed",
			zap.String("provider", string(sc.Provider())),
			zap.Error(err),
		)
	}
}

// RunDemandTick crawls the most-wanted unanswered queries across all
// providers and marks each as attempted.
func (s *Scheduler) RunDemandTick(ctx context.Context) {
	wanted, err := s.demand.TopUnattempted(ctx, s.cfg.DemandBatchSize)
	if err != nil {
		s.logger.Error("loading demand queue failed", zap.Error(err))
		return
	}
	for _, d := range wanted {
		found := false
		for _, sc := range s.scrapers {
			job, err := s.runner.RunDemand(ctx, sc, d.Query)
			if err != nil {
				s.logger.Warn("demand scrape failed",
					zap.String("provider", string(sc.Provider())),
					zap.String("query", d.Query),
					zap.Error(err),
				)
				continue
			}
			if job.Counters.ProductsUpdated > 0 {
				found = true
			}
		}
		if err := s.demand.MarkAttempted(ctx, d.Query, found); err != nil {
			s.logger.Warn("marking demand attempted failed",
				zap.String("query", d.Query),
				zap.Error(err),
			)
		}
	}
}

// RunPopularityTick re-scrapes popular catalog rows that have not been
// refreshed recently, searching each product's own provider by name.
func (s *Scheduler) RunPopularityTick(ctx context.Context) {
	cutoff := s.clock.Now().AddDate(0, 0, -s.cfg.StaleAfterDays)
	stale, err := s.products.ListStale(ctx, s.cfg.MinPopularity, cutoff, s.cfg.RefreshBatchSize)
	if err != nil {
		s.logger.Error("listing stale products failed", zap.Error(err))
		return
	}
	byProvider := make(map[food.Source]scraper.Scraper, len(s.scrapers))
	for _, sc := range s.scrapers {
		byProvider[sc.Provider()] = sc
	}
	for _, p := range stale {
		sc, ok := byProvider[p.Source]
		if !ok {
			continue
		}
		if _, err := s.runner.RunDemand(ctx, sc, p.Name); err != nil {
			s.logger.Warn("popularity refresh scrape failed",
				zap.String("id", p.ID),
				zap.Error(err),
			)
			continue
		}
		if err := s.products.TouchRefreshed(ctx, p.ID, s.clock.Now()); err != nil {
			s.logger.Warn("marking product refreshed failed",
				zap.String("id", p.ID),
				zap.Error(err),
			)
		}
	}
}
