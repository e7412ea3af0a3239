package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nutrisync/foodsearch/internal/food"
)

func TestClassifyCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  food.QueryCategory
	}{
		{"egg", food.CategoryWholeFood},
		{"Boiled Eggs", food.CategoryWholeFood},
		{"chicken breast", food.CategoryWholeFood},
		{"raw spinach", food.CategoryWholeFood},
		{"rolled oats", food.CategoryWholeFood},
		{"greek yogurt", food.CategoryWholeFood},
		{"protein bar", food.CategoryBranded},
		{"chocolate chip cookies", food.CategoryBranded},
		{"keto snack", food.CategoryBranded},
		{"gluten free crackers", food.CategoryBranded},
		{"energy drink", food.CategoryBranded},
		{"xyzzy", food.CategoryUnknown},
		{"", food.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.query)
			require.Equal(t, tt.want, got.Category, "query %q", tt.query)
		})
	}
}

func TestClassifyWholeFoodWinsOverBranded(t *testing.T) {
	t.Parallel()

	// "chicken nuggets" contains both a protein and a packaged-snack
	// noun; the whole-food group is checked first.
	got := Classify("chicken nuggets")
	require.Equal(t, food.CategoryWholeFood, got.Category)
	require.Equal(t, "chicken", got.MatchedKeyword)
}

func TestClassifyWordBoundaries(t *testing.T) {
	t.Parallel()

	// "crabapple smash" must not match "apple" mid-word.
	got := Classify("crabapple smash")
	require.Equal(t, food.CategoryUnknown, got.Category)

	got = Classify("apple pie")
	require.Equal(t, food.CategoryWholeFood, got.Category)
}

func TestClassifyExplicitBrandSearch(t *testing.T) {
	t.Parallel()

	got := Classify("Nutella")
	require.True(t, got.IsExplicitBrandSearch)

	got = Classify("nutella on toast")
	require.True(t, got.IsExplicitBrandSearch)

	// Brand detection is independent of category.
	got = Classify("quest bar")
	require.True(t, got.IsExplicitBrandSearch)
	require.Equal(t, food.CategoryBranded, got.Category)

	got = Classify("banana")
	require.False(t, got.IsExplicitBrandSearch)
	require.Equal(t, food.CategoryWholeFood, got.Category)
}
