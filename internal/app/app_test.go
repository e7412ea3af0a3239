package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Server:    config.ServerConfig{Port: 8080},
		ProviderA: config.ProviderConfig{BaseURL: "https://a.example.test", TimeoutSeconds: 5},
		ProviderB: config.ProviderConfig{BaseURL: "https://b.example.test", TimeoutSeconds: 5},
		Search:    config.SearchConfig{DefaultPageSize: 20, MaxPageSize: 50},
		Cache:     config.CacheConfig{TTLHours: 24},
		Scrape:    config.ScrapeConfig{MaxProductsPerRun: 100, MaxConsecutiveErrors: 5, PageSize: 10},
		Scheduler: config.SchedulerConfig{DemandBatchSize: 5, MinPopularity: 50, StaleAfterDays: 30},
	}
}

func TestNewAppWithMemoryStores(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a.server)
	require.NotNil(t, a.scheduler)
	a.Close()
}

func TestNewAppTranslationDisabledWithoutKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Translate.APIKey = ""
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	a.Close()
}
