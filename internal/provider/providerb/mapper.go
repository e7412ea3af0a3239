package providerb

import (
	"strings"

	"github.com/nutrisync/foodsearch/internal/food"
)

// Nutriment keys. Energy keys without a kcal suffix report kJ.
const (
	keyEnergyKcal100g   = "energy-kcal_100g"
	keyEnergyKcalServe  = "energy-kcal_serving"
	keyEnergyKJ100g     = "energy_100g"
	keyEnergyKJServe    = "energy_serving"
	keyEnergyKJGeneric  = "energy"
	keyProteins100g     = "proteins_100g"
	keyCarbs100g        = "carbohydrates_100g"
	keyFat100g          = "fat_100g"
	keyFiber100g        = "fiber_100g"
	keySugars100g       = "sugars_100g"
	keySodium100g       = "sodium_100g"
)

// normalizeProduct reduces an upstream record to the common shape.
// Energy precedence: kcal per 100g, kcal per serving, then the kJ
// fields in the same order, generic last.
func normalizeProduct(p product) food.NormalizedProduct {
	n := food.NormalizedProduct{
		ID:          food.ProductID(food.SourceProviderB, p.Code),
		Source:      food.SourceProviderB,
		ExternalID:  p.Code,
		Name:        strings.TrimSpace(p.ProductName),
		ServingSize: p.ServingQuantity,
		ServingText: p.ServingSize,
	}

	if brand := firstBrand(p.Brands); brand != "" {
		b := brand
		n.Brand = &b
	}
	if p.ImageURL != "" {
		img := p.ImageURL
		n.ImageURL = &img
	}

	n.Nutrients = food.Nutrients{
		Calories: food.ResolveEnergy([]food.EnergyCandidate{
			{Value: p.Nutriments[keyEnergyKcal100g], Unit: food.UnitKcal},
			{Value: p.Nutriments[keyEnergyKcalServe], Unit: food.UnitKcal},
			{Value: p.Nutriments[keyEnergyKJ100g], Unit: food.UnitKJ},
			{Value: p.Nutriments[keyEnergyKJServe], Unit: food.UnitKJ},
			{Value: p.Nutriments[keyEnergyKJGeneric], Unit: food.UnitKJ},
		}),
		Protein: p.Nutriments[keyProteins100g],
		Carbs:   p.Nutriments[keyCarbs100g],
		Fat:     p.Nutriments[keyFat100g],
		Fiber:   p.Nutriments[keyFiber100g],
		Sugar:   p.Nutriments[keySugars100g],
		Sodium:  p.Nutriments[keySodium100g],
	}
	n.Quality = food.QualityScore(n)
	return n
}

// firstBrand takes the first entry of the upstream's comma-separated
// brand list.
func firstBrand(brands string) string {
	if brands == "" {
		return ""
	}
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}
