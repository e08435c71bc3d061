package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"greenpantry/internal/models"

	"github.com/jinzhu/gorm"
)

// ShelfLifeMap stores a location→days table as a JSON text column.
type ShelfLifeMap map[string]int

// Value converts the map to a JSON string for storage
func (m ShelfLifeMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan converts the database value back to a map
func (m *ShelfLifeMap) Scan(value interface{}) error {
	if value == nil {
		*m = ShelfLifeMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for ShelfLifeMap")
	}
}

// WastedItemSlice stores a waste session's items as a JSON text column.
type WastedItemSlice []models.WastedItem

// Value converts the slice to a JSON string for storage
func (s WastedItemSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan converts the database value back to a slice
func (s *WastedItemSlice) Scan(value interface{}) error {
	if value == nil {
		*s = WastedItemSlice{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for WastedItemSlice")
	}
}

// InventoryRecord is the persisted form of an inventory item
type InventoryRecord struct {
	gorm.Model
	UserID        string `gorm:"index"`
	Name          string
	Quantity      float64
	Unit          string
	AddedAt       time.Time
	ShelfLife     ShelfLifeMap `gorm:"type:text"`
	EstimatedCost float64
	Location      string
	State         string `gorm:"index"`
	UsedDate      *time.Time
}

// TableName sets the table name for InventoryRecord
func (InventoryRecord) TableName() string {
	return "inventory_items"
}

// WasteEventRecord is the persisted form of a waste logging session
type WasteEventRecord struct {
	gorm.Model
	UserID        string `gorm:"index"`
	Timestamp     time.Time
	Items         WastedItemSlice `gorm:"type:text"`
	Reason        string
	TotalValue    float64
	TotalCarbonKg float64
}

// TableName sets the table name for WasteEventRecord
func (WasteEventRecord) TableName() string {
	return "waste_events"
}

// SavingsEventRecord is the persisted form of a savings attribution
type SavingsEventRecord struct {
	gorm.Model
	UserID            string `gorm:"index"`
	Timestamp         time.Time
	Type              string
	Amount            float64
	Description       string
	CalculationMethod string `gorm:"type:text"`
	ItemID            string
	WeekID            string
	Transferred       bool
}

// TableName sets the table name for SavingsEventRecord
func (SavingsEventRecord) TableName() string {
	return "savings_events"
}

// WeeklyClaim is the idempotency guard for weekly reduction bonuses: the
// unique composite index makes the second claim for the same ISO week fail
// at the database, even across devices.
type WeeklyClaim struct {
	gorm.Model
	UserID string `gorm:"unique_index:idx_user_week"`
	WeekID string `gorm:"unique_index:idx_user_week"`
}

// TableName sets the table name for WeeklyClaim
func (WeeklyClaim) TableName() string {
	return "weekly_claims"
}
