// Package classify implements the query classification heuristic that
// decides merge order and brand filtering for federated searches.
package classify

import (
	"strings"

	"github.com/nutrisync/foodsearch/internal/food"
)

// Classification is the verdict for one query.
type Classification struct {
	Category food.QueryCategory
	// IsExplicitBrandSearch is set when the query contains a known
	// brand name. It overrides brand filtering regardless of category.
	IsExplicitBrandSearch bool
	MatchedKeyword        string
}

// Whole-food keywords are checked before branded ones; the first group
// with a hit wins.
var wholeFoodKeywords = []string{
	// proteins
	"chicken", "beef", "pork", "lamb", "turkey", "duck", "veal",
	"salmon", "tuna", "cod", "trout", "shrimp", "prawn", "sardine",
	"mackerel", "tilapia", "egg", "eggs", "tofu", "tempeh",
	// fruit
	"apple", "banana", "orange", "grape", "strawberry", "blueberry",
	"raspberry", "blackberry", "mango", "pineapple", "peach", "pear",
	"plum", "cherry", "melon", "watermelon", "kiwi", "apricot",
	"avocado", "lemon", "lime", "grapefruit", "pomegranate", "fig",
	"date", "papaya",
	// vegetables
	"broccoli", "spinach", "kale", "carrot", "potato", "tomato",
	"cucumber", "lettuce", "cabbage", "cauliflower", "zucchini",
	"pepper", "onion", "garlic", "celery", "asparagus", "mushroom",
	"eggplant", "beet", "radish", "pumpkin", "squash", "leek",
	"pea", "peas", "corn", "sweet potato",
	// grains and legumes
	"rice", "oat", "oats", "oatmeal", "quinoa", "barley", "buckwheat",
	"millet", "bulgur", "couscous", "lentil", "lentils", "chickpea",
	"chickpeas", "bean", "beans", "wheat", "rye", "spelt",
	// dairy basics
	"milk", "yogurt", "yoghurt", "kefir", "cottage cheese", "cream",
	"butter", "buttermilk",
	// nuts and seeds
	"almond", "walnut", "cashew", "pistachio", "hazelnut", "peanut",
	"pecan", "macadamia", "chia", "flax", "flaxseed", "sesame",
	"sunflower seed", "pumpkin seed",
	// cooking-state adjectives
	"raw", "boiled", "steamed", "grilled", "roasted", "baked",
	"poached", "fresh", "dried", "frozen",
}

var brandedKeywords = []string{
	// packaged-snack nouns
	"bar", "bars", "chips", "crisps", "cookie", "cookies", "biscuit",
	"cracker", "crackers", "cereal", "granola", "muesli", "shake",
	"smoothie", "soda", "cola", "candy", "chocolate", "gum", "wafer",
	"pretzel", "popcorn", "nugget", "nuggets", "pizza", "burger",
	"sausage", "ham", "salami", "jerky", "spread", "sauce", "dressing",
	"ketchup", "mayo", "mayonnaise", "syrup", "drink", "energy drink",
	"protein powder", "supplement", "snack", "dessert", "ice cream",
	"pudding", "jelly", "jam", "instant", "noodles", "ramen", "soup",
	// dietary-claim adjectives
	"protein", "keto", "vegan", "gluten free", "gluten-free", "sugar free",
	"sugar-free", "low fat", "low-fat", "low carb", "low-carb", "light",
	"lite", "diet", "zero", "organic certified", "fortified",
	// processing-state adjectives
	"flavored", "flavoured", "crispy", "crunchy", "creamy", "coated",
	"stuffed", "filled", "breaded", "smoked", "cured", "canned",
	"microwave", "ready meal", "ready-to-eat",
}

// Classify runs the ordered keyword heuristic and the independent
// known-brand containment check. It is a pure function.
func Classify(query string) Classification {
	normalized := strings.ToLower(strings.TrimSpace(query))
	c := Classification{
		Category:              food.CategoryUnknown,
		IsExplicitBrandSearch: containsKnownBrand(normalized),
	}
	if normalized == "" {
		return c
	}

	if kw, ok := matchKeyword(normalized, wholeFoodKeywords); ok {
		c.Category = food.CategoryWholeFood
		c.MatchedKeyword = kw
		return c
	}
	if kw, ok := matchKeyword(normalized, brandedKeywords); ok {
		c.Category = food.CategoryBranded
		c.MatchedKeyword = kw
		return c
	}
	return c
}

// matchKeyword reports the first keyword present in the query as a
// whole word (or word sequence).
func matchKeyword(query string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if containsWord(query, kw) {
			return kw, true
		}
	}
	return "", false
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func containsKnownBrand(normalizedQuery string) bool {
	for _, brand := range knownBrands {
		if strings.Contains(normalizedQuery, brand) {
			return true
		}
	}
	return false
}
