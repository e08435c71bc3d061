package analytics

import (
	"reflect"
	"testing"
	"time"

	"greenpantry/internal/models"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func wasteAt(ts time.Time, value float64, items ...models.WastedItem) models.WasteEvent {
	return models.WasteEvent{
		Timestamp:  ts,
		Items:      items,
		TotalValue: value,
	}
}

func TestAggregate_WindowPartition(t *testing.T) {
	events := []models.WasteEvent{
		wasteAt(now.AddDate(0, 0, -1), 100),  // this week
		wasteAt(now.AddDate(0, 0, -6), 50),   // this week
		wasteAt(now.AddDate(0, 0, -8), 200),  // last week
		wasteAt(now.AddDate(0, 0, -13), 75),  // last week
		wasteAt(now.AddDate(0, 0, -40), 500), // outside both
	}

	snapshot := Aggregate(events, nil, nil, nil, now)

	assert.Equal(t, 150.0, snapshot.ThisWeekWasteValue)
	assert.Equal(t, 275.0, snapshot.LastWeekWasteValue)
	assert.Equal(t, 925.0, snapshot.TotalWasteValue)

	// Events within the two-week horizon partition exactly into the windows
	var horizon float64
	for _, event := range events {
		if !event.Timestamp.Before(now.AddDate(0, 0, -14)) {
			horizon += event.TotalValue
		}
	}
	assert.Equal(t, horizon, snapshot.ThisWeekWasteValue+snapshot.LastWeekWasteValue)
}

func TestAggregate_WindowBoundary(t *testing.T) {
	// The windows are half-open: an event exactly at now-7d opens this
	// week, and one exactly at now is outside it.
	snapshot := Aggregate([]models.WasteEvent{wasteAt(now.AddDate(0, 0, -7), 100)}, nil, nil, nil, now)
	assert.Equal(t, 100.0, snapshot.ThisWeekWasteValue)
	assert.Equal(t, 0.0, snapshot.LastWeekWasteValue)

	snapshot = Aggregate([]models.WasteEvent{wasteAt(now, 100)}, nil, nil, nil, now)
	assert.Equal(t, 0.0, snapshot.ThisWeekWasteValue)
}

func TestAggregate_DeltaInsufficientHistory(t *testing.T) {
	// Only this-week data: delta is nil, not +infinity
	snapshot := Aggregate([]models.WasteEvent{wasteAt(now.AddDate(0, 0, -1), 100)}, nil, nil, nil, now)
	assert.Nil(t, snapshot.WeekDelta)

	// No data at all: still nil
	snapshot = Aggregate(nil, nil, nil, nil, now)
	assert.Nil(t, snapshot.WeekDelta)
	assert.Nil(t, snapshot.MonthDelta)
}

func TestAggregate_DeltaComputed(t *testing.T) {
	events := []models.WasteEvent{
		wasteAt(now.AddDate(0, 0, -1), 50),
		wasteAt(now.AddDate(0, 0, -8), 100),
	}
	snapshot := Aggregate(events, nil, nil, nil, now)

	if assert.NotNil(t, snapshot.WeekDelta) {
		assert.Equal(t, -50.0, *snapshot.WeekDelta)
	}
}

func TestAggregate_CategoryBreakdown(t *testing.T) {
	events := []models.WasteEvent{
		wasteAt(now.AddDate(0, 0, -1), 130,
			models.WastedItem{Name: "Chicken thigh", PesoValue: 120},
			models.WastedItem{Name: "Lettuce", PesoValue: 10},
		),
		wasteAt(now.AddDate(0, 0, -2), 20,
			models.WastedItem{Name: "Carrot", PesoValue: 10},
			models.WastedItem{Name: "Tomato", PesoValue: 10},
		),
	}

	snapshot := Aggregate(events, nil, nil, nil, now)

	assert.Equal(t, 120.0, snapshot.CategoryValue[CategoryMeatFish])
	assert.Equal(t, 30.0, snapshot.CategoryValue[CategoryVegetables])
	// Top by value and by frequency disagree here
	assert.Equal(t, CategoryMeatFish, snapshot.TopByValue)
	assert.Equal(t, CategoryVegetables, snapshot.TopByFrequency)
}

func TestAggregate_ReasonBreakdown(t *testing.T) {
	events := []models.WasteEvent{
		{Timestamp: now.AddDate(0, 0, -1), TotalValue: 10, Reason: models.ReasonExpired},
		{Timestamp: now.AddDate(0, 0, -2), TotalValue: 10, Reason: models.ReasonExpired},
		{Timestamp: now.AddDate(0, 0, -3), TotalValue: 10, Reason: models.ReasonLeftover},
	}

	snapshot := Aggregate(events, nil, nil, nil, now)
	assert.Equal(t, 2, snapshot.ReasonCount[models.ReasonExpired])
	assert.Equal(t, models.ReasonExpired, snapshot.TopReason)
}

func TestAggregate_PantryHealth(t *testing.T) {
	live := []models.InventoryItem{
		// Expired four days ago
		{Name: "Old milk", AddedAt: now.AddDate(0, 0, -34), Location: models.LocationRefrigerator, State: models.StateLive},
		// Expiring in two days
		{Name: "Yogurt", AddedAt: now.AddDate(0, 0, -28), Location: models.LocationRefrigerator, State: models.StateLive},
		// Fresh for another twenty days
		{Name: "Canned tuna", AddedAt: now.AddDate(0, 0, -10), Location: models.LocationPantry, State: models.StateLive},
	}

	snapshot := Aggregate(nil, live, nil, nil, now)
	assert.Equal(t, 1, snapshot.Pantry.Expired)
	assert.Equal(t, 1, snapshot.Pantry.Expiring)
	assert.Equal(t, 1, snapshot.Pantry.Fresh)
	// (1*100 + 1*50) / 3 = 50
	assert.Equal(t, 50, snapshot.Pantry.Score)
}

func TestAggregate_EmptyPantryIsHealthy(t *testing.T) {
	snapshot := Aggregate(nil, nil, nil, nil, now)
	assert.Equal(t, 100, snapshot.Pantry.Score)
}

func TestAggregate_ConsumptionVelocity(t *testing.T) {
	used2 := now.AddDate(0, 0, -2)
	used6 := now.AddDate(0, 0, -6)
	archived := []models.InventoryItem{
		{Name: "Banana", AddedAt: now.AddDate(0, 0, -4), UsedDate: &used2, State: models.StateUsed},
		{Name: "Mango", AddedAt: now.AddDate(0, 0, -12), UsedDate: &used6, State: models.StateUsed},
		{Name: "Cheese", AddedAt: now.AddDate(0, 0, -20), State: models.StateWasted},
	}

	snapshot := Aggregate(nil, nil, archived, nil, now)

	// Fruits averaged over two items: (2 + 6) / 2 = 4 days
	assert.Equal(t, 4.0, snapshot.VelocityDays[CategoryFruits])
	// Dairy has no used items and must be omitted, not zero-filled
	_, present := snapshot.VelocityDays[CategoryDairy]
	assert.False(t, present)
}

func TestAggregate_UseRateAndRatios(t *testing.T) {
	archived := []models.InventoryItem{
		{Name: "Rice", State: models.StateUsed},
		{Name: "Bread", State: models.StateUsed},
		{Name: "Bread roll", State: models.StateWasted},
	}
	savingsEvents := []models.SavingsEvent{
		{Amount: 50, Timestamp: now},
		{Amount: 25, Timestamp: now},
	}
	events := []models.WasteEvent{wasteAt(now.AddDate(0, 0, -1), 150)}

	snapshot := Aggregate(events, nil, archived, savingsEvents, now)

	assert.InDelta(t, 2.0/3.0, snapshot.UseRate, 1e-9)
	assert.Equal(t, 75.0, snapshot.TotalSavings)
	assert.InDelta(t, 0.5, snapshot.SavingsPerWastePeso, 1e-9)

	// Grains waste rate: 1 wasted of 3 archived grains
	assert.InDelta(t, 1.0/3.0, snapshot.WasteRateByCategory[CategoryGrains], 1e-9)
}

func TestAggregate_NoDataDefaults(t *testing.T) {
	snapshot := Aggregate(nil, nil, nil, nil, now)

	// No history is not a failure
	assert.Equal(t, 1.0, snapshot.UseRate)
	assert.Equal(t, 0.0, snapshot.SavingsPerWastePeso)
}

func TestAggregate_SavingsWithNoWaste(t *testing.T) {
	savingsEvents := []models.SavingsEvent{{Amount: 80, Timestamp: now}}
	snapshot := Aggregate(nil, nil, nil, savingsEvents, now)

	// With zero waste the ratio falls back to the savings total itself
	assert.Equal(t, 80.0, snapshot.SavingsPerWastePeso)
}

func TestAggregate_Idempotent(t *testing.T) {
	events := []models.WasteEvent{
		wasteAt(now.AddDate(0, 0, -1), 100, models.WastedItem{Name: "Chicken", PesoValue: 100}),
		wasteAt(now.AddDate(0, 0, -9), 60, models.WastedItem{Name: "Lettuce", PesoValue: 60}),
	}
	used := now.AddDate(0, 0, -3)
	archived := []models.InventoryItem{
		{Name: "Milk", AddedAt: now.AddDate(0, 0, -5), UsedDate: &used, State: models.StateUsed},
	}
	savingsEvents := []models.SavingsEvent{{Amount: 22.5, Timestamp: now}}

	first := Aggregate(events, nil, archived, savingsEvents, now)
	second := Aggregate(events, nil, archived, savingsEvents, now)

	if !reflect.DeepEqual(first, second) {
		t.Error("Aggregate() is not idempotent for identical inputs")
	}
}

func TestCategorize(t *testing.T) {
	cases := map[string]string{
		"Chicken breast":   CategoryMeatFish,
		"Fresh lettuce":    CategoryVegetables,
		"Ripe mango":       CategoryFruits,
		"Low-fat milk":     CategoryDairy,
		"Jasmine rice":     CategoryGrains,
		"Mystery leftover": CategoryOther,
	}
	for name, want := range cases {
		if got := Categorize(name); got != want {
			t.Errorf("Categorize(%q) = %q, want %q", name, got, want)
		}
	}
}
