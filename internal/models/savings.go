package models

import "time"

// SavingsEvent attributes a peso amount to one positive user action.
// Events are append-only; corrections are new events, never edits.
type SavingsEvent struct {
	ID                string
	Timestamp         time.Time
	Type              SavingsType
	Amount            float64 // pesos, non-negative
	Description       string
	CalculationMethod string // embeds the formula's literal inputs for auditing
	ItemID            string // optional link to the triggering inventory item
	WeekID            string // set for weekly reduction bonuses, e.g. "2026-W35"
	Transferred       bool   // maintained by the wallet collaborator, not computed here
}

// SavingsType represents the attribution mechanism behind a savings event
type SavingsType string

const (
	// Savings mechanisms
	SavingsAvoidedExpiry  SavingsType = "avoided_expiry"
	SavingsRecipeFollowed SavingsType = "recipe_followed"
	SavingsWeeklyBonus    SavingsType = "waste_reduction_bonus"
	SavingsSmartShopping  SavingsType = "smart_shopping" // reserved
)
