package providera

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeItemEnergyPrecedence(t *testing.T) {
	t.Parallel()

	t.Run("direct kcal wins", func(t *testing.T) {
		t.Parallel()
		p := normalizeItem(item{
			FdcID:       1,
			Description: "Apple, raw",
			Nutrients: []nutrient{
				{NutrientID: nutrientIDEnergyKcal, Value: 52},
				{NutrientID: nutrientIDEnergyKJ, Value: 218},
			},
		})
		require.InDelta(t, 52, p.Nutrients.Calories, 0.001)
	})

	t.Run("label kcal before kJ", func(t *testing.T) {
		t.Parallel()
		p := normalizeItem(item{
			FdcID:         2,
			Description:   "Bar",
			LabelCalories: 210,
			Nutrients: []nutrient{
				{NutrientID: nutrientIDEnergyKJ, Value: 1000},
			},
		})
		require.InDelta(t, 210, p.Nutrients.Calories, 0.001)
	})

	t.Run("kJ only is converted", func(t *testing.T) {
		t.Parallel()
		p := normalizeItem(item{
			FdcID:       3,
			Description: "Apple, raw",
			Nutrients: []nutrient{
				{NutrientID: nutrientIDEnergyKJ, Value: 218},
			},
		})
		require.InDelta(t, 52, p.Nutrients.Calories, 0.001)
	})

	t.Run("no energy defaults to zero", func(t *testing.T) {
		t.Parallel()
		p := normalizeItem(item{FdcID: 4, Description: "Water"})
		require.Zero(t, p.Nutrients.Calories)
	})
}

func TestNormalizeItemBrand(t *testing.T) {
	t.Parallel()

	p := normalizeItem(item{
		FdcID:       5,
		Description: "Crunchy Peanut Butter",
		BrandOwner:  "Acme Foods",
	})
	require.NotNil(t, p.Brand)
	require.Equal(t, "Acme Foods", *p.Brand)

	// brandName takes precedence over brandOwner when both exist.
	p = normalizeItem(item{
		FdcID:       6,
		Description: "Crunchy Peanut Butter",
		BrandName:   "Acme",
		BrandOwner:  "Acme Foods Inc",
	})
	require.Equal(t, "Acme", *p.Brand)
}

func TestNormalizeItemQuality(t *testing.T) {
	t.Parallel()

	p := normalizeItem(item{
		FdcID:       7,
		Description: "Oats, rolled",
		Nutrients: []nutrient{
			{NutrientID: nutrientIDEnergyKcal, Value: 379},
			{NutrientID: nutrientIDProtein, Value: 13.2},
			{NutrientID: nutrientIDCarbs, Value: 67.7},
			{NutrientID: nutrientIDTotalFat, Value: 6.5},
			{NutrientID: nutrientIDFiber, Value: 10.1},
		},
	})
	// name 10 + energy 20 + macros 45 + fiber 10; no image.
	require.Equal(t, 85, p.Quality)
}
