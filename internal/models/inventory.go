package models

import "time"

// InventoryItem represents a single food item tracked in the household pantry.
// The engines only read items; quantity mutations and lifecycle transitions
// go through the store.
type InventoryItem struct {
	ID            string
	Name          string
	Quantity      float64
	Unit          string
	AddedAt       time.Time
	ShelfLife     ShelfLifeTable
	EstimatedCost float64 // pesos, 0 = unknown
	Location      StorageLocation
	State         ItemState
	UsedDate      *time.Time // set exactly once, when State leaves StateLive
}

// ShelfLifeTable maps a storage location to the item's shelf life in days.
type ShelfLifeTable map[StorageLocation]int

// DefaultShelfLifeDays is used when an item has no shelf-life entry for its
// current storage location.
const DefaultShelfLifeDays = 30

// ShelfLifeDays returns the shelf life for the item's current location,
// falling back to DefaultShelfLifeDays when the table has no entry.
func (i *InventoryItem) ShelfLifeDays() int {
	if days, ok := i.ShelfLife[i.Location]; ok && days != 0 {
		return days
	}
	return DefaultShelfLifeDays
}

// ExpiryDate returns the projected expiry based on acquisition date and the
// shelf life at the current storage location.
func (i *InventoryItem) ExpiryDate() time.Time {
	return i.AddedAt.AddDate(0, 0, i.ShelfLifeDays())
}

// StorageLocation represents where an item is currently stored
type StorageLocation string

const (
	// Storage locations
	LocationCounter      StorageLocation = "counter"
	LocationPantry       StorageLocation = "pantry"
	LocationRefrigerator StorageLocation = "refrigerator"
	LocationFreezer      StorageLocation = "freezer"
)

// ItemState represents the lifecycle state of an inventory item
type ItemState string

const (
	// Lifecycle states; an item leaves StateLive at most once
	StateLive   ItemState = "live"
	StateUsed   ItemState = "used"
	StateWasted ItemState = "wasted"
)
