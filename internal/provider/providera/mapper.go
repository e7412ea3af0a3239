package providera

import (
	"strconv"
	"strings"

	"github.com/nutrisync/foodsearch/internal/food"
)

// Upstream numeric nutrient IDs.
const (
	nutrientIDEnergyKcal = 1008
	nutrientIDProtein    = 1003
	nutrientIDTotalFat   = 1004
	nutrientIDCarbs      = 1005
	nutrientIDFiber      = 1079
	nutrientIDSugar      = 2000
	nutrientIDSodium     = 1093
	nutrientIDEnergyKJ   = 1062
)

// normalizeItem reduces an upstream record to the common shape.
// Energy precedence: kcal per 100g, then the label's per-serving kcal,
// then kJ per 100g.
func normalizeItem(f item) food.NormalizedProduct {
	externalID := strconv.FormatInt(f.FdcID, 10)

	p := food.NormalizedProduct{
		ID:          food.ProductID(food.SourceProviderA, externalID),
		Source:      food.SourceProviderA,
		ExternalID:  externalID,
		Name:        strings.TrimSpace(f.Description),
		ServingSize: f.ServingSize,
		ServingUnit: f.ServingSizeUnit,
		ServingText: f.HouseholdText,
	}

	if brand := firstNonEmpty(f.BrandName, f.BrandOwner); brand != "" {
		b := brand
		p.Brand = &b
	}

	p.Nutrients = food.Nutrients{
		Calories: food.ResolveEnergy([]food.EnergyCandidate{
			{Value: nutrientValue(f.Nutrients, nutrientIDEnergyKcal), Unit: food.UnitKcal},
			{Value: f.LabelCalories, Unit: food.UnitKcal},
			{Value: nutrientValue(f.Nutrients, nutrientIDEnergyKJ), Unit: food.UnitKJ},
		}),
		Protein: nutrientValue(f.Nutrients, nutrientIDProtein),
		Carbs:   nutrientValue(f.Nutrients, nutrientIDCarbs),
		Fat:     nutrientValue(f.Nutrients, nutrientIDTotalFat),
		Fiber:   nutrientValue(f.Nutrients, nutrientIDFiber),
		Sugar:   nutrientValue(f.Nutrients, nutrientIDSugar),
		// Upstream reports sodium in mg per 100g.
		Sodium: nutrientValue(f.Nutrients, nutrientIDSodium),
	}
	p.Quality = food.QualityScore(p)
	return p
}

func nutrientValue(nutrients []nutrient, id int) float64 {
	for _, n := range nutrients {
		if n.NutrientID == id && n.Value > 0 {
			return n.Value
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
