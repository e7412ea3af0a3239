package providera

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nutrisync/foodsearch/internal/food"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second)
}

func TestSearchNormalizesResults(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/foods/search", r.URL.Path)
		require.Equal(t, "egg", r.URL.Query().Get("query"))
		require.Equal(t, "10", r.URL.Query().Get("pageSize"))
		require.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalHits": 412,
			"foods": [{
				"fdcId": 171287,
				"description": "Egg, whole, raw",
				"foodNutrients": [
					{"nutrientId": 1008, "value": 143},
					{"nutrientId": 1003, "value": 12.6},
					{"nutrientId": 1004, "value": 9.5},
					{"nutrientId": 1005, "value": 0.7}
				]
			}]
		}`))
	})

	result, err := client.Search(context.Background(), "egg", 10)
	require.NoError(t, err)
	require.Equal(t, 412, result.Total)
	require.Len(t, result.Products, 1)

	p := result.Products[0]
	require.Equal(t, "providera_171287", p.ID)
	require.Equal(t, food.SourceProviderA, p.Source)
	require.Equal(t, "Egg, whole, raw", p.Name)
	require.Nil(t, p.Brand)
	require.InDelta(t, 143, p.Nutrients.Calories, 0.001)
	require.InDelta(t, 12.6, p.Nutrients.Protein, 0.001)
}

func TestSearchUpstreamFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "egg", 10)
	require.Error(t, err)
	require.True(t, errors.Is(err, food.ErrUpstreamUnavailable))
}

func TestListFoodsPagination(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/foods/list", r.URL.Path)
		page := r.URL.Query().Get("pageNumber")
		w.Header().Set("Content-Type", "application/json")
		if page == "3" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"fdcId": 1, "description": "Oats", "foodNutrients": [{"nutrientId": 1008, "value": 379}]},
			{"fdcId": 2, "description": "Rice", "foodNutrients": [{"nutrientId": 1008, "value": 365}]}
		]`))
	})

	page1, err := client.ListFoods(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, "providera_1", page1[0].ID)

	empty, err := client.ListFoods(context.Background(), 3, 2)
	require.NoError(t, err)
	require.Empty(t, empty)
}
