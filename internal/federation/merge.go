package federation

import "github.com/nutrisync/foodsearch/internal/food"

// mergeByCategory orders the two provider lists by the query verdict:
// whole-food queries lead with provider A, branded queries lead with
// provider B, and unknown queries alternate strictly.
func mergeByCategory(category food.QueryCategory, a, b []food.NormalizedProduct, limit int) []food.NormalizedProduct {
	switch category {
	case food.CategoryWholeFood:
		return concatTruncate(a, b, limit)
	case food.CategoryBranded:
		return concatTruncate(b, a, limit)
	default:
		return interleave(a, b, limit)
	}
}

func concatTruncate(first, second []food.NormalizedProduct, limit int) []food.NormalizedProduct {
	merged := make([]food.NormalizedProduct, 0, limit)
	for _, item := range first {
		if len(merged) == limit {
			return merged
		}
		merged = append(merged, item)
	}
	for _, item := range second {
		if len(merged) == limit {
			return merged
		}
		merged = append(merged, item)
	}
	return merged
}

// interleave alternates a[0], b[0], a[1], b[1] and appends whatever one
// list still has once the other runs dry.
func interleave(a, b []food.NormalizedProduct, limit int) []food.NormalizedProduct {
	merged := make([]food.NormalizedProduct, 0, limit)
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			if len(merged) == limit {
				return merged
			}
			merged = append(merged, a[i])
		}
		if i < len(b) {
			if len(merged) == limit {
				return merged
			}
			merged = append(merged, b[i])
		}
	}
	return merged
}
