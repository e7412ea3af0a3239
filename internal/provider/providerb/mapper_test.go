package providerb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeProductEnergyPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		nutriments map[string]float64
		want       float64
	}{
		{
			name: "kcal per 100g wins",
			nutriments: map[string]float64{
				keyEnergyKcal100g:  539,
				keyEnergyKJ100g:    2255,
				keyEnergyKJGeneric: 2255,
			},
			want: 539,
		},
		{
			name: "kcal per serving before kJ",
			nutriments: map[string]float64{
				keyEnergyKcalServe: 81,
				keyEnergyKJ100g:    2255,
			},
			want: 81,
		},
		{
			name:       "kJ per 100g converted",
			nutriments: map[string]float64{keyEnergyKJ100g: 2255},
			want:       539, // round(2255 / 4.184)
		},
		{
			name:       "generic energy assumed kJ",
			nutriments: map[string]float64{keyEnergyKJGeneric: 1674},
			want:       400,
		},
		{
			name:       "nothing resolvable",
			nutriments: map[string]float64{},
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := normalizeProduct(product{
				Code:        "42",
				ProductName: "Test",
				Nutriments:  tt.nutriments,
			})
			require.InDelta(t, tt.want, p.Nutrients.Calories, 0.001)
		})
	}
}

func TestFirstBrand(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Ferrero", firstBrand("Ferrero,Nutella"))
	require.Equal(t, "Ferrero", firstBrand(" Ferrero "))
	require.Equal(t, "", firstBrand(""))
}

func TestNormalizeProductMacros(t *testing.T) {
	t.Parallel()

	p := normalizeProduct(product{
		Code:        "99",
		ProductName: "Granola",
		Nutriments: map[string]float64{
			keyEnergyKcal100g: 450,
			keyProteins100g:   10,
			keyCarbs100g:      60,
			keyFat100g:        18,
			keyFiber100g:      7,
			keySugars100g:     22,
			keySodium100g:     0.12,
		},
	})
	require.InDelta(t, 10, p.Nutrients.Protein, 0.001)
	require.InDelta(t, 60, p.Nutrients.Carbs, 0.001)
	require.InDelta(t, 18, p.Nutrients.Fat, 0.001)
	require.InDelta(t, 7, p.Nutrients.Fiber, 0.001)
	require.InDelta(t, 22, p.Nutrients.Sugar, 0.001)
	require.InDelta(t, 0.12, p.Nutrients.Sodium, 0.001)
}
