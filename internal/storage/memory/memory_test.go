package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nutrisync/foodsearch/internal/food"
)

func TestProductStoreUpsertPreservesPopularity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewProductStore()

	first := food.NormalizedProduct{
		ID:         "providera_1",
		Source:     food.SourceProviderA,
		ExternalID: "1",
		Name:       "Oats",
		Nutrients:  food.Nutrients{Calories: 379},
	}
	require.NoError(t, store.Upsert(ctx, first))
	store.SetPopularity("providera_1", 77)

	// Re-upsert with a new payload carrying zero popularity.
	second := first
	second.Name = "Oats, rolled"
	second.Popularity = 0
	require.NoError(t, store.Upsert(ctx, second))

	got, err := store.GetByID(ctx, "providera_1")
	require.NoError(t, err)
	require.Equal(t, "Oats, rolled", got.Name)
	require.Equal(t, 77, got.Popularity, "popularity must survive re-scrapes")
}

func TestProductStoreIdempotentIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewProductStore()

	p := food.NormalizedProduct{ID: "providerb_42", Source: food.SourceProviderB, ExternalID: "42", Name: "Bar"}
	require.NoError(t, store.Upsert(ctx, p))
	require.NoError(t, store.Upsert(ctx, p))

	count, err := store.CountBySource(ctx, food.SourceProviderB)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestProductStoreListStaleAndTouch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewProductStore()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	old := food.NormalizedProduct{ID: "providera_old", Source: food.SourceProviderA, Name: "Old", RefreshedAt: now.AddDate(0, 0, -40)}
	fresh := food.NormalizedProduct{ID: "providera_new", Source: food.SourceProviderA, Name: "New", RefreshedAt: now}
	unpopular := food.NormalizedProduct{ID: "providera_cold", Source: food.SourceProviderA, Name: "Cold", RefreshedAt: now.AddDate(0, 0, -40)}
	boundary := food.NormalizedProduct{ID: "providera_edge", Source: food.SourceProviderA, Name: "Edge", RefreshedAt: now.AddDate(0, 0, -40)}
	for _, p := range []food.NormalizedProduct{old, fresh, unpopular, boundary} {
		require.NoError(t, store.Upsert(ctx, p))
	}
	store.SetPopularity("providera_old", 80)
	store.SetPopularity("providera_new", 80)
	store.SetPopularity("providera_cold", 10)
	// Popularity exactly at the bound does not qualify.
	store.SetPopularity("providera_edge", 50)

	stale, err := store.ListStale(ctx, 50, now.AddDate(0, 0, -30), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "providera_old", stale[0].ID)

	require.NoError(t, store.TouchRefreshed(ctx, "providera_old", now))
	stale, err = store.ListStale(ctx, 50, now.AddDate(0, 0, -30), 10)
	require.NoError(t, err)
	require.Empty(t, stale)
}

func TestJobStoreLatestCompleted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewJobStore()

	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	jobs := []food.ScrapeJob{
		{ID: "j1", Provider: food.SourceProviderA, Type: food.JobTypeIncremental, Status: food.JobStatusCompleted, CompletedAt: &older, LastCursor: "5"},
		{ID: "j2", Provider: food.SourceProviderA, Type: food.JobTypeIncremental, Status: food.JobStatusCompleted, CompletedAt: &newer, LastCursor: "9"},
		{ID: "j3", Provider: food.SourceProviderA, Type: food.JobTypeIncremental, Status: food.JobStatusFailed},
		{ID: "j4", Provider: food.SourceProviderB, Type: food.JobTypeIncremental, Status: food.JobStatusCompleted, CompletedAt: &newer},
	}
	for _, j := range jobs {
		require.NoError(t, store.Create(ctx, j))
	}

	latest, err := store.LatestCompleted(ctx, food.SourceProviderA, food.JobTypeIncremental)
	require.NoError(t, err)
	require.Equal(t, "j2", latest.ID)
	require.Equal(t, "9", latest.LastCursor)

	_, err = store.LatestCompleted(ctx, food.SourceManual, food.JobTypeIncremental)
	require.ErrorIs(t, err, food.ErrNotFound)
}

func TestCacheStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewCacheStore()
	now := time.Now().UTC()

	entry := food.CachedSearch{
		QueryHash:  "abc",
		Query:      "egg",
		TotalCount: 12,
		CreatedAt:  now,
		ExpiresAt:  now.Add(24 * time.Hour),
	}
	require.NoError(t, store.Put(ctx, entry))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, 12, got.TotalCount)

	require.NoError(t, store.IncrementHits(ctx, "abc"))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, 1, got.HitCount)

	// Re-put keeps the creation time and bumps the hit count.
	entry.TotalCount = 20
	entry.ExpiresAt = now.Add(48 * time.Hour)
	require.NoError(t, store.Put(ctx, entry))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, 20, got.TotalCount)
	require.Equal(t, 2, got.HitCount)
	require.Equal(t, now, got.CreatedAt)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	require.ErrorIs(t, err, food.ErrNotFound)
}

func TestDemandStoreOrderingAndAttempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewDemandStore()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(ctx, "Dragon Fruit Jam", now))
	}
	require.NoError(t, store.Record(ctx, "yuzu paste", now))

	top, err := store.TopUnattempted(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "dragon fruit jam", top[0].Query)
	require.Equal(t, 3, top[0].HitCount)

	require.NoError(t, store.MarkAttempted(ctx, "dragon fruit jam", true))
	top, err = store.TopUnattempted(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "yuzu paste", top[0].Query)
}

func TestConfigStoreUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewConfigStore()

	_, err := store.Get(ctx, food.SourceProviderA)
	require.ErrorIs(t, err, food.ErrNotFound)

	cfg := food.ScrapeConfig{
		Provider:            food.SourceProviderA,
		LastIncrementalSync: time.Now().UTC(),
		TotalProducts:       120,
	}
	require.NoError(t, store.Upsert(ctx, cfg))

	got, err := store.Get(ctx, food.SourceProviderA)
	require.NoError(t, err)
	require.Equal(t, 120, got.TotalProducts)
}
