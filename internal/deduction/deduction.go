package deduction

import (
	"strings"
	"time"

	"greenpantry/internal/models"
	"greenpantry/internal/units"
)

// Result separates the satisfied requirements from the unsatisfied ones.
type Result struct {
	Deducted []*models.InventoryItem
	Missing  []models.Ingredient
}

// Deduct matches owned recipe ingredients against the live inventory,
// converts quantities to a common base unit and decrements the pantry.
// Matching is a case-insensitive substring check, first match wins.
// Conversion failures and quantity shortfalls move the ingredient to
// Missing rather than failing the whole call. An item drained to zero
// transitions to StateUsed; savings attribution for it happens upstream.
func Deduct(required []models.Ingredient, liveItems []*models.InventoryItem, now time.Time) Result {
	var result Result

	for _, ingredient := range required {
		if ingredient.Status != models.IngredientOwned {
			continue
		}

		item := findMatch(ingredient.Name, liveItems)
		if item == nil {
			result.Missing = append(result.Missing, ingredient)
			continue
		}

		neededBase, baseUnit, err := units.ToBase(ingredient.Quantity, ingredient.Unit, item.Name)
		if err != nil {
			result.Missing = append(result.Missing, ingredient)
			continue
		}
		haveBase, haveBaseUnit, err := units.ToBase(item.Quantity, item.Unit, item.Name)
		if err != nil || haveBaseUnit != baseUnit {
			result.Missing = append(result.Missing, ingredient)
			continue
		}
		if haveBase < neededBase {
			result.Missing = append(result.Missing, ingredient)
			continue
		}

		remainder, _, err := units.FromBase(haveBase-neededBase, baseUnit, item.Unit, item.Name)
		if err != nil {
			result.Missing = append(result.Missing, ingredient)
			continue
		}

		item.Quantity = remainder
		if item.Quantity <= 0 {
			item.Quantity = 0
			if item.State == models.StateLive {
				used := now
				item.State = models.StateUsed
				item.UsedDate = &used
			}
		}
		result.Deducted = append(result.Deducted, item)
	}

	return result
}

// findMatch returns the first live item whose name contains the ingredient
// name or vice versa. Ambiguous matches resolving to the first item are a
// known limitation, not an error.
func findMatch(name string, liveItems []*models.InventoryItem) *models.InventoryItem {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, item := range liveItems {
		if item.State != models.StateLive {
			continue
		}
		itemName := strings.ToLower(item.Name)
		if strings.Contains(itemName, needle) || strings.Contains(needle, itemName) {
			return item
		}
	}
	return nil
}
