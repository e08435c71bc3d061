package analytics

import "strings"

// Food categories used for breakdowns and velocity buckets
const (
	CategoryVegetables = "vegetables"
	CategoryFruits     = "fruits"
	CategoryDairy      = "dairy"
	CategoryGrains     = "grains"
	CategoryMeatFish   = "meat/fish"
	CategoryOther      = "other"
)

type categoryRule struct {
	category string
	keywords []string
}

// Rules are tested in order; first match wins, CategoryOther is the
// catch-all. The keyword lists are a content decision and meant to be
// extended, not a taxonomy.
var categoryRules = []categoryRule{
	{CategoryVegetables, []string{
		"lettuce", "cabbage", "carrot", "tomato", "onion", "garlic", "pepper",
		"spinach", "broccoli", "cucumber", "eggplant", "squash", "potato",
		"kangkong", "pechay", "okra", "vegetable",
	}},
	{CategoryFruits, []string{
		"apple", "banana", "mango", "orange", "grape", "melon", "papaya",
		"pineapple", "strawberry", "avocado", "calamansi", "fruit",
	}},
	{CategoryDairy, []string{
		"milk", "cheese", "yogurt", "butter", "cream", "kesong",
	}},
	{CategoryGrains, []string{
		"rice", "bread", "pasta", "noodle", "oat", "flour", "cereal", "pandesal",
	}},
	{CategoryMeatFish, []string{
		"chicken", "pork", "beef", "fish", "shrimp", "squid", "tilapia",
		"bangus", "meat", "egg", "tuna", "sardine", "longganisa",
	}},
}

// Categorize maps an item name to exactly one food category by keyword
// matching. Unmatched names fall into CategoryOther.
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
