package models

import "time"

// AnalyticsSnapshot is the derived output of the aggregation engine. It has
// no independent lifecycle: every field is recomputed from the raw event
// collections on each call.
type AnalyticsSnapshot struct {
	GeneratedAt time.Time `json:"generated_at"`

	TotalWasteValue float64 `json:"total_waste_value"`
	TotalCarbonKg   float64 `json:"total_carbon_kg"`
	TotalSavings    float64 `json:"total_savings"`

	ThisWeekWasteValue  float64 `json:"this_week_waste_value"`
	LastWeekWasteValue  float64 `json:"last_week_waste_value"`
	ThisMonthWasteValue float64 `json:"this_month_waste_value"`
	LastMonthWasteValue float64 `json:"last_month_waste_value"`

	// Percentage deltas; nil means insufficient history, never zero change.
	WeekDelta  *float64 `json:"week_delta"`
	MonthDelta *float64 `json:"month_delta"`

	CategoryValue  map[string]float64 `json:"category_value"`
	CategoryCount  map[string]int     `json:"category_count"`
	TopByValue     string             `json:"top_by_value"`
	TopByFrequency string             `json:"top_by_frequency"`

	ReasonCount map[WasteReason]int `json:"reason_count"`
	TopReason   WasteReason         `json:"top_reason"`

	Pantry PantryHealth `json:"pantry"`

	// Average days from acquisition to use, per category. Categories with
	// no used items are omitted rather than zero-filled.
	VelocityDays map[string]float64 `json:"velocity_days"`

	WasteRateByCategory map[string]float64 `json:"waste_rate_by_category"`

	UseRate             float64 `json:"use_rate"` // fraction in [0, 1]
	SavingsPerWastePeso float64 `json:"savings_per_waste_peso"`
}

// PantryHealth buckets the live inventory by days until expiry.
type PantryHealth struct {
	Expired  int `json:"expired"`  // days until expiry < 0
	Expiring int `json:"expiring"` // 0-3 days inclusive
	Fresh    int `json:"fresh"`    // more than 3 days
	Total    int `json:"total"`
	Score    int `json:"score"` // 0-100; an empty pantry scores 100
}

// GreenScoreSnapshot is the derived gamification score. The engine is the
// source of truth; consumers may cache it but never persist it as
// authoritative.
type GreenScoreSnapshot struct {
	GeneratedAt time.Time `json:"generated_at"`
	Score       int       `json:"score"` // always within [300, 1000]
	Behavioral  int       `json:"behavioral"`
	Financial   int       `json:"financial"`
	Engagement  int       `json:"engagement"`
	Badges      []string  `json:"badges"`
}
