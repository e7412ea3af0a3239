package food

import "math"

// kJ per kcal, used when an upstream only reports joules.
const kilojoulesPerKcal = 4.184

// EnergyUnit tags an energy candidate's unit of measure.
type EnergyUnit string

// Energy units accepted by ResolveEnergy.
const (
	UnitKcal EnergyUnit = "kcal"
	UnitKJ   EnergyUnit = "kj"
)

// EnergyCandidate is one possible energy reading from an upstream
// payload, in precedence order.
type EnergyCandidate struct {
	Value float64
	Unit  EnergyUnit
}

// ResolveEnergy walks candidates in order and returns the first
// non-zero value as kcal, converting kJ readings. Each provider
// supplies its own candidate order: direct kcal per 100g first, then
// kcal per serving, then kJ fields. Returns 0 when nothing matches,
// which fails the valid-nutrition predicate downstream.
func ResolveEnergy(candidates []EnergyCandidate) float64 {
	for _, c := range candidates {
		if c.Value <= 0 {
			continue
		}
		if c.Unit == UnitKJ {
			return math.Round(c.Value / kilojoulesPerKcal)
		}
		return c.Value
	}
	return 0
}

// HasValidNutrition reports whether a product carries enough data to
// be worth storing: a name and a resolved energy value.
func HasValidNutrition(p NormalizedProduct) bool {
	return p.Name != "" && p.Nutrients.Calories > 0
}

// QualityScore rates record completeness 0-100. Informational only;
// nothing filters on it.
func QualityScore(p NormalizedProduct) int {
	score := 0
	if p.Name != "" {
		score += 10
	}
	if p.Nutrients.Calories > 0 {
		score += 20
	}
	if p.Nutrients.Protein > 0 {
		score += 15
	}
	if p.Nutrients.Carbs > 0 {
		score += 15
	}
	if p.Nutrients.Fat > 0 {
		score += 15
	}
	if p.Nutrients.Fiber > 0 {
		score += 10
	}
	if p.ImageURL != nil && *p.ImageURL != "" {
		score += 15
	}
	return score
}
