package savings

import (
	"fmt"
	"math"
	"time"

	"greenpantry/internal/models"
)

// Reference constants for attribution formulas
const (
	// AlternativeMealCost is the typical cost of a takeout meal the recipe
	// replaced, in pesos.
	AlternativeMealCost = 150.0

	// RecipeSavingsCap bounds a single recipe attribution so very cheap
	// recipes cannot produce runaway savings.
	RecipeSavingsCap = 100.0

	// ColdStartWasteProbability is assumed for users with fewer than
	// MinWasteLogsForHistory prior waste logs.
	ColdStartWasteProbability = 0.25
	MinWasteLogsForHistory    = 10
)

// ErrCorruptShelfLife indicates a negative shelf-life entry, which is
// corrupted upstream data the engine cannot safely interpret.
var ErrCorruptShelfLife = fmt.Errorf("negative shelf life in item table")

// AvoidedExpirySavings estimates the peso value saved by consuming an item
// before it expired. Returns nil (no event) for data-quality gaps and
// precondition violations: zero or unknown cost, already-expired items,
// out-of-range efficiency, malformed numbers. Amounts are rounded to
// centavos and never negative.
func AvoidedExpirySavings(item models.InventoryItem, usageEfficiency, historicalWasteRate float64, wasteLogCount int, now time.Time) (*models.SavingsEvent, error) {
	shelfLife := item.ShelfLifeDays()
	if shelfLife < 0 {
		return nil, ErrCorruptShelfLife
	}
	if item.EstimatedCost <= 0 || math.IsNaN(item.EstimatedCost) {
		return nil, nil
	}
	if usageEfficiency <= 0 || usageEfficiency > 1 || math.IsNaN(usageEfficiency) {
		return nil, nil
	}

	expiry := item.ExpiryDate()
	if now.After(expiry) {
		// Already expired: nothing was saved by this action.
		return nil, nil
	}

	daysUntilExpiry := expiry.Sub(now).Hours() / 24
	if daysUntilExpiry < 0 {
		daysUntilExpiry = 0
	}
	freshnessRatio := daysUntilExpiry / float64(shelfLife)

	spoilProbability := spoilProbabilityFor(freshnessRatio)
	wasteProbability := ColdStartWasteProbability
	if wasteLogCount >= MinWasteLogsForHistory {
		// With enough history the caller's rate is used as-is; a rate of
		// zero legitimately attributes nothing. A malformed rate is a
		// data-quality gap and must not fall back to the prior.
		if math.IsNaN(historicalWasteRate) || historicalWasteRate < 0 || historicalWasteRate > 1 {
			return nil, nil
		}
		wasteProbability = historicalWasteRate
	}

	amount := roundCentavos(item.EstimatedCost * spoilProbability * wasteProbability * usageEfficiency)
	if amount <= 0 {
		return nil, nil
	}

	return &models.SavingsEvent{
		Timestamp:   now,
		Type:        models.SavingsAvoidedExpiry,
		Amount:      amount,
		Description: fmt.Sprintf("Used %s before it expired", item.Name),
		CalculationMethod: fmt.Sprintf("cost %.2f x spoil probability %.2f x waste probability %.2f x usage efficiency %.2f",
			item.EstimatedCost, spoilProbability, wasteProbability, usageEfficiency),
		ItemID: item.ID,
	}, nil
}

// spoilProbabilityFor maps remaining shelf-life fraction to the likelihood
// the item would have been wasted. Items used very close to expiry were at
// high risk; items with most shelf life left attribute little to the action.
func spoilProbabilityFor(freshnessRatio float64) float64 {
	switch {
	case freshnessRatio <= 0.10:
		return 0.90
	case freshnessRatio <= 0.25:
		return 0.70
	case freshnessRatio <= 0.50:
		return 0.40
	case freshnessRatio <= 0.75:
		return 0.20
	default:
		return 0.05
	}
}

// RecipeFollowedSavings computes the savings of cooking a recipe versus a
// typical alternative meal, counting only ingredients the user would have
// had to buy. Returns nil when the recipe needed more purchasing than the
// alternative would have cost, or when ingredient costs are malformed.
func RecipeFollowedSavings(recipe models.Recipe, now time.Time) *models.SavingsEvent {
	var neededCost float64
	for _, ing := range recipe.Ingredients {
		if ing.Status != models.IngredientMustPurchase {
			continue
		}
		if math.IsNaN(ing.EstimatedCost) || ing.EstimatedCost < 0 {
			return nil
		}
		neededCost += ing.EstimatedCost
	}

	amount := AlternativeMealCost - neededCost
	if amount > RecipeSavingsCap {
		amount = RecipeSavingsCap
	}
	amount = roundCentavos(amount)
	if amount <= 0 {
		return nil
	}

	return &models.SavingsEvent{
		Timestamp:   now,
		Type:        models.SavingsRecipeFollowed,
		Amount:      amount,
		Description: fmt.Sprintf("Cooked %s instead of buying a meal", recipe.Name),
		CalculationMethod: fmt.Sprintf("alternative meal cost %.2f - needed ingredient cost %.2f, capped at %.2f",
			AlternativeMealCost, neededCost, RecipeSavingsCap),
	}
}

// WeeklyReductionBonus rewards a week with less waste than the previous one.
// The engine is stateless and will emit again for the same week if called
// again; the event store enforces one claim per ISO week via weekID.
func WeeklyReductionBonus(thisWeekWasteValue, lastWeekWasteValue float64, weekID string, now time.Time) *models.SavingsEvent {
	if math.IsNaN(thisWeekWasteValue) || math.IsNaN(lastWeekWasteValue) ||
		thisWeekWasteValue < 0 || lastWeekWasteValue < 0 {
		return nil
	}

	difference := roundCentavos(lastWeekWasteValue - thisWeekWasteValue)
	if difference <= 0 {
		return nil
	}

	return &models.SavingsEvent{
		Timestamp: now,
		Type:      models.SavingsWeeklyBonus,
		Amount:    difference,
		Description: fmt.Sprintf("Reduced waste from %.2f to %.2f pesos week over week",
			lastWeekWasteValue, thisWeekWasteValue),
		CalculationMethod: fmt.Sprintf("last week waste %.2f - this week waste %.2f",
			lastWeekWasteValue, thisWeekWasteValue),
		WeekID: weekID,
	}
}

// WeekID returns the ISO week identifier used as the weekly bonus
// idempotency key, e.g. "2026-W35".
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func roundCentavos(amount float64) float64 {
	return math.Round(amount*100) / 100
}
