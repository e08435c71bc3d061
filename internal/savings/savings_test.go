package savings

import (
	"math"
	"testing"
	"time"

	"greenpantry/internal/models"

	"github.com/stretchr/testify/assert"
)

func pantryItem(cost float64, shelfLifeDays, daysLeft int, now time.Time) models.InventoryItem {
	return models.InventoryItem{
		ID:            "item-1",
		Name:          "Chicken breast",
		Quantity:      1,
		Unit:          "kg",
		AddedAt:       now.AddDate(0, 0, daysLeft-shelfLifeDays),
		ShelfLife:     models.ShelfLifeTable{models.LocationPantry: shelfLifeDays},
		EstimatedCost: cost,
		Location:      models.LocationPantry,
		State:         models.StateLive,
	}
}

func TestAvoidedExpirySavings_NearExpiry(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// Cost 100, 10-day shelf life, used 1 day before expiry: freshness 0.1
	// maps to spoil probability 0.9, cold-start waste probability 0.25.
	item := pantryItem(100, 10, 1, now)

	event, err := AvoidedExpirySavings(item, 1.0, 0, 0, now)
	assert.NoError(t, err)
	assert.NotNil(t, event)
	assert.Equal(t, 22.50, event.Amount)
	assert.Equal(t, models.SavingsAvoidedExpiry, event.Type)
	assert.Equal(t, "item-1", event.ItemID)
	assert.Contains(t, event.CalculationMethod, "cost 100.00")
	assert.Contains(t, event.CalculationMethod, "spoil probability 0.90")
	assert.Contains(t, event.CalculationMethod, "waste probability 0.25")
	assert.Contains(t, event.CalculationMethod, "usage efficiency 1.00")
}

func TestAvoidedExpirySavings_HistoricalRate(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	item := pantryItem(100, 10, 1, now)

	// With ten or more waste logs the caller's rate replaces the prior
	event, err := AvoidedExpirySavings(item, 1.0, 0.5, 12, now)
	assert.NoError(t, err)
	assert.NotNil(t, event)
	assert.Equal(t, 45.0, event.Amount)

	// Under ten logs the cold-start prior applies regardless
	event, err = AvoidedExpirySavings(item, 1.0, 0.5, 9, now)
	assert.NoError(t, err)
	assert.NotNil(t, event)
	assert.Equal(t, 22.50, event.Amount)
}

func TestAvoidedExpirySavings_MalformedRateEmitsNothing(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	item := pantryItem(100, 10, 1, now)

	// With enough history a malformed rate must never fall back to the
	// prior and produce money
	for _, rate := range []float64{math.NaN(), -0.1, 1.5} {
		event, err := AvoidedExpirySavings(item, 1.0, rate, 12, now)
		assert.NoError(t, err)
		assert.Nil(t, event, "rate %v emitted an event", rate)
	}
}

func TestAvoidedExpirySavings_ZeroRateIsLiteral(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	item := pantryItem(100, 10, 1, now)

	// A user who has never wasted anything earns no avoided-expiry
	// attribution: 0.0 is a real rate, not missing data
	event, err := AvoidedExpirySavings(item, 1.0, 0.0, 12, now)
	assert.NoError(t, err)
	assert.Nil(t, event)
}

func TestAvoidedExpirySavings_DataQualityGaps(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// Unknown cost
	event, err := AvoidedExpirySavings(pantryItem(0, 10, 1, now), 1.0, 0, 0, now)
	assert.NoError(t, err)
	assert.Nil(t, event)

	// NaN cost
	event, err = AvoidedExpirySavings(pantryItem(math.NaN(), 10, 1, now), 1.0, 0, 0, now)
	assert.NoError(t, err)
	assert.Nil(t, event)

	// Out-of-range efficiency
	event, err = AvoidedExpirySavings(pantryItem(100, 10, 1, now), 1.5, 0, 0, now)
	assert.NoError(t, err)
	assert.Nil(t, event)

	// Already expired
	event, err = AvoidedExpirySavings(pantryItem(100, 10, -2, now), 1.0, 0, 0, now)
	assert.NoError(t, err)
	assert.Nil(t, event)
}

func TestAvoidedExpirySavings_CorruptShelfLife(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	item := pantryItem(100, -5, 1, now)

	_, err := AvoidedExpirySavings(item, 1.0, 0, 0, now)
	assert.ErrorIs(t, err, ErrCorruptShelfLife)
}

func TestAvoidedExpirySavings_AmountNeverNegative(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// Fresh item, small efficiency: amount stays positive or no event
	event, err := AvoidedExpirySavings(pantryItem(0.01, 30, 29, now), 0.01, 0, 0, now)
	assert.NoError(t, err)
	if event != nil {
		assert.GreaterOrEqual(t, event.Amount, 0.0)
	}
}

func TestRecipeFollowedSavings_Capped(t *testing.T) {
	now := time.Now()
	recipe := models.Recipe{
		Name: "Garlic fried rice",
		Ingredients: []models.Ingredient{
			{Name: "Rice", Status: models.IngredientOwned},
			{Name: "Garlic", Status: models.IngredientStaple},
			{Name: "Spring onion", Status: models.IngredientMustPurchase, EstimatedCost: 10},
		},
	}

	// Raw savings of 140 clamp to the 100 peso cap
	event := RecipeFollowedSavings(recipe, now)
	assert.NotNil(t, event)
	assert.Equal(t, 100.0, event.Amount)
	assert.Equal(t, models.SavingsRecipeFollowed, event.Type)
}

func TestRecipeFollowedSavings_ExpensiveRecipe(t *testing.T) {
	recipe := models.Recipe{
		Name: "Wagyu steak",
		Ingredients: []models.Ingredient{
			{Name: "Wagyu beef", Status: models.IngredientMustPurchase, EstimatedCost: 200},
		},
	}

	// Needed cost above the alternative meal emits nothing
	assert.Nil(t, RecipeFollowedSavings(recipe, time.Now()))
}

func TestRecipeFollowedSavings_MalformedCost(t *testing.T) {
	recipe := models.Recipe{
		Name: "Broken recipe",
		Ingredients: []models.Ingredient{
			{Name: "Mystery", Status: models.IngredientMustPurchase, EstimatedCost: -5},
		},
	}

	assert.Nil(t, RecipeFollowedSavings(recipe, time.Now()))
}

func TestWeeklyReductionBonus(t *testing.T) {
	now := time.Now()

	event := WeeklyReductionBonus(300, 500, "2026-W35", now)
	assert.NotNil(t, event)
	assert.Equal(t, 200.0, event.Amount)
	assert.Equal(t, models.SavingsWeeklyBonus, event.Type)
	assert.Equal(t, "2026-W35", event.WeekID)
	assert.Contains(t, event.Description, "500.00")
	assert.Contains(t, event.Description, "300.00")

	// Waste went up: no bonus
	assert.Nil(t, WeeklyReductionBonus(500, 300, "2026-W35", now))

	// Malformed inputs degrade to nothing
	assert.Nil(t, WeeklyReductionBonus(math.NaN(), 500, "2026-W35", now))
	assert.Nil(t, WeeklyReductionBonus(-10, 500, "2026-W35", now))
}

func TestWeekID(t *testing.T) {
	// Aug 30 2026 is the Sunday closing ISO week 35
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-W35", WeekID(ts))
}
