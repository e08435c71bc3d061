package analytics

import (
	"math"
	"time"

	"greenpantry/internal/models"
)

// Aggregate recomputes the full analytics snapshot from the raw event
// collections. It is a pure function over immutable inputs: same inputs,
// same output, no cached state. Callers memoize if they need to.
func Aggregate(wasteEvents []models.WasteEvent, liveItems, archivedItems []models.InventoryItem, savingsEvents []models.SavingsEvent, now time.Time) models.AnalyticsSnapshot {
	snapshot := models.AnalyticsSnapshot{
		GeneratedAt:   now,
		CategoryValue: make(map[string]float64),
		CategoryCount: make(map[string]int),
		ReasonCount:   make(map[models.WasteReason]int),
	}

	weekStart := now.AddDate(0, 0, -7)
	lastWeekStart := now.AddDate(0, 0, -14)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	for _, event := range wasteEvents {
		snapshot.TotalWasteValue += event.TotalValue
		snapshot.TotalCarbonKg += event.TotalCarbonKg

		ts := event.Timestamp
		if inWindow(ts, weekStart, now) {
			snapshot.ThisWeekWasteValue += event.TotalValue
		} else if inWindow(ts, lastWeekStart, weekStart) {
			snapshot.LastWeekWasteValue += event.TotalValue
		}
		if inWindow(ts, monthStart, now) {
			snapshot.ThisMonthWasteValue += event.TotalValue
		} else if inWindow(ts, lastMonthStart, monthStart) {
			snapshot.LastMonthWasteValue += event.TotalValue
		}

		for _, item := range event.Items {
			category := itemCategory(item)
			snapshot.CategoryValue[category] += item.PesoValue
			snapshot.CategoryCount[category]++
		}
		if event.Reason != "" {
			snapshot.ReasonCount[event.Reason]++
		}
	}

	snapshot.WeekDelta = percentDelta(snapshot.ThisWeekWasteValue, snapshot.LastWeekWasteValue)
	snapshot.MonthDelta = percentDelta(snapshot.ThisMonthWasteValue, snapshot.LastMonthWasteValue)

	snapshot.TopByValue = topByValue(snapshot.CategoryValue)
	snapshot.TopByFrequency = topByCount(snapshot.CategoryCount)
	snapshot.TopReason = topReason(snapshot.ReasonCount)

	snapshot.Pantry = pantryHealth(liveItems, now)
	snapshot.VelocityDays = consumptionVelocity(archivedItems)
	snapshot.WasteRateByCategory = wasteRateByCategory(archivedItems)

	var usedCount, wastedCount int
	for _, item := range archivedItems {
		switch item.State {
		case models.StateUsed:
			usedCount++
		case models.StateWasted:
			wastedCount++
		}
	}
	if usedCount+wastedCount == 0 {
		// No archived history yet is not a failure.
		snapshot.UseRate = 1.0
	} else {
		snapshot.UseRate = float64(usedCount) / float64(usedCount+wastedCount)
	}

	for _, event := range savingsEvents {
		snapshot.TotalSavings += event.Amount
	}
	if snapshot.TotalWasteValue > 0 {
		snapshot.SavingsPerWastePeso = snapshot.TotalSavings / snapshot.TotalWasteValue
	} else {
		snapshot.SavingsPerWastePeso = snapshot.TotalSavings
	}

	return snapshot
}

// inWindow reports whether ts falls in [start, end).
func inWindow(ts, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}

// percentDelta returns the percentage change between windows, or nil when
// the previous window is empty. Callers must read nil as "insufficient
// history", never as zero change.
func percentDelta(this, last float64) *float64 {
	if last == 0 {
		return nil
	}
	delta := (this - last) / last * 100
	return &delta
}

func itemCategory(item models.WastedItem) string {
	if item.Category != "" {
		return item.Category
	}
	return Categorize(item.Name)
}

func topByValue(values map[string]float64) string {
	var top string
	var best float64
	for category, value := range values {
		if value > best {
			best = value
			top = category
		}
	}
	return top
}

func topByCount(counts map[string]int) string {
	var top string
	var best int
	for category, count := range counts {
		if count > best {
			best = count
			top = category
		}
	}
	return top
}

func topReason(counts map[models.WasteReason]int) models.WasteReason {
	var top models.WasteReason
	var best int
	for reason, count := range counts {
		if count > best {
			best = count
			top = reason
		}
	}
	return top
}

// pantryHealth buckets live items by days until expiry. An empty pantry
// scores 100 by convention.
func pantryHealth(liveItems []models.InventoryItem, now time.Time) models.PantryHealth {
	health := models.PantryHealth{Total: len(liveItems)}
	for _, item := range liveItems {
		days := item.ExpiryDate().Sub(now).Hours() / 24
		switch {
		case days < 0:
			health.Expired++
		case days <= 3:
			health.Expiring++
		default:
			health.Fresh++
		}
	}
	if health.Total == 0 {
		health.Score = 100
		return health
	}
	health.Score = int(math.Round(float64(health.Fresh*100+health.Expiring*50) / float64(health.Total)))
	return health
}

// consumptionVelocity averages days from acquisition to use per category.
// Categories with no used items are omitted: a zero would falsely imply
// instant consumption.
func consumptionVelocity(archivedItems []models.InventoryItem) map[string]float64 {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, item := range archivedItems {
		if item.State != models.StateUsed || item.UsedDate == nil {
			continue
		}
		days := item.UsedDate.Sub(item.AddedAt).Hours() / 24
		if days < 0 {
			continue
		}
		category := Categorize(item.Name)
		totals[category] += days
		counts[category]++
	}
	velocity := make(map[string]float64, len(totals))
	for category, total := range totals {
		velocity[category] = total / float64(counts[category])
	}
	return velocity
}

// wasteRateByCategory computes wasted/(used+wasted) per category over the
// archived items. Categories with no archived items are omitted.
func wasteRateByCategory(archivedItems []models.InventoryItem) map[string]float64 {
	used := make(map[string]int)
	wasted := make(map[string]int)
	for _, item := range archivedItems {
		category := Categorize(item.Name)
		switch item.State {
		case models.StateUsed:
			used[category]++
		case models.StateWasted:
			wasted[category]++
		}
	}
	rates := make(map[string]float64)
	for category := range used {
		rates[category] = float64(wasted[category]) / float64(used[category]+wasted[category])
	}
	for category := range wasted {
		if _, ok := rates[category]; !ok {
			rates[category] = 1.0
		}
	}
	return rates
}
