package database

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"greenpantry/internal/models"

	"github.com/jinzhu/gorm"
)

var (
	// ErrWeeklyBonusClaimed indicates the ISO week already has a reduction
	// bonus on record for this user.
	ErrWeeklyBonusClaimed = errors.New("weekly bonus already claimed for this week")

	// ErrAlreadyArchived indicates a second lifecycle-exit attempt on the
	// same inventory item.
	ErrAlreadyArchived = errors.New("item has already left the live state")

	// ErrInconsistentTotals indicates a waste event whose aggregate values
	// do not equal the sum over its items.
	ErrInconsistentTotals = errors.New("waste event totals do not match item sums")
)

// Store is the persistence collaborator consumed by the API layer. The
// engines never see it; they work on plain snapshots the store loads.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an initialized database connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema for all persisted records.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&InventoryRecord{},
		&WasteEventRecord{},
		&SavingsEventRecord{},
		&WeeklyClaim{},
	).Error
}

// AddItem persists a new live inventory item and returns its id.
func (s *Store) AddItem(userID string, item models.InventoryItem) (string, error) {
	record := InventoryRecord{
		UserID:        userID,
		Name:          item.Name,
		Quantity:      item.Quantity,
		Unit:          item.Unit,
		AddedAt:       item.AddedAt,
		ShelfLife:     shelfLifeToMap(item.ShelfLife),
		EstimatedCost: item.EstimatedCost,
		Location:      string(item.Location),
		State:         string(models.StateLive),
	}
	if record.AddedAt.IsZero() {
		record.AddedAt = time.Now()
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", err
	}
	return formatID(record.ID), nil
}

// GetItem loads one of the user's inventory items.
func (s *Store) GetItem(userID, itemID string) (models.InventoryItem, error) {
	id, err := parseID(itemID)
	if err != nil {
		return models.InventoryItem{}, gorm.ErrRecordNotFound
	}
	var record InventoryRecord
	if err := s.db.Where("user_id = ? AND id = ?", userID, id).First(&record).Error; err != nil {
		return models.InventoryItem{}, err
	}
	return recordToItem(record), nil
}

// LiveItems returns the user's live inventory.
func (s *Store) LiveItems(userID string) ([]models.InventoryItem, error) {
	return s.itemsInState(userID, "state = ?", string(models.StateLive))
}

// ArchivedItems returns the user's used and wasted items.
func (s *Store) ArchivedItems(userID string) ([]models.InventoryItem, error) {
	return s.itemsInState(userID, "state <> ?", string(models.StateLive))
}

func (s *Store) itemsInState(userID, stateClause, state string) ([]models.InventoryItem, error) {
	var records []InventoryRecord
	if err := s.db.Where("user_id = ?", userID).Where(stateClause, state).Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]models.InventoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, recordToItem(record))
	}
	return items, nil
}

// SetInventoryQuantity updates a live item's quantity after deduction.
func (s *Store) SetInventoryQuantity(userID, itemID string, quantity float64) error {
	id, err := parseID(itemID)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	return s.db.Model(&InventoryRecord{}).
		Where("user_id = ? AND id = ? AND state = ?", userID, id, string(models.StateLive)).
		Update("quantity", quantity).Error
}

// MarkItemUsed transitions a live item to used, setting its used date
// exactly once. A second exit attempt fails with ErrAlreadyArchived.
func (s *Store) MarkItemUsed(userID, itemID string, when time.Time) error {
	return s.archiveItem(userID, itemID, models.StateUsed, when)
}

// MarkItemWasted transitions a live item to wasted.
func (s *Store) MarkItemWasted(userID, itemID string, when time.Time) error {
	return s.archiveItem(userID, itemID, models.StateWasted, when)
}

func (s *Store) archiveItem(userID, itemID string, state models.ItemState, when time.Time) error {
	id, err := parseID(itemID)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	result := s.db.Model(&InventoryRecord{}).
		Where("user_id = ? AND id = ? AND state = ?", userID, id, string(models.StateLive)).
		Updates(map[string]interface{}{"state": string(state), "used_date": when})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyArchived
	}
	return nil
}

// RecordWasteEvent persists a waste logging session. Aggregate totals must
// equal the sums over the session's items; zero totals are filled in from
// the items, mismatched ones are rejected.
func (s *Store) RecordWasteEvent(userID string, event models.WasteEvent) (string, error) {
	itemSum := event.ItemValueSum()
	if event.TotalValue == 0 {
		event.TotalValue = itemSum
	} else if math.Abs(event.TotalValue-itemSum) > 0.01 {
		return "", ErrInconsistentTotals
	}

	record := WasteEventRecord{
		UserID:        userID,
		Timestamp:     event.Timestamp,
		Items:         WastedItemSlice(event.Items),
		Reason:        string(event.Reason),
		TotalValue:    event.TotalValue,
		TotalCarbonKg: event.TotalCarbonKg,
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", err
	}
	return formatID(record.ID), nil
}

// ListWasteEvents returns all of the user's waste sessions.
func (s *Store) ListWasteEvents(userID string) ([]models.WasteEvent, error) {
	var records []WasteEventRecord
	if err := s.db.Where("user_id = ?", userID).Order("timestamp").Find(&records).Error; err != nil {
		return nil, err
	}
	events := make([]models.WasteEvent, 0, len(records))
	for _, record := range records {
		events = append(events, models.WasteEvent{
			ID:            formatID(record.ID),
			Timestamp:     record.Timestamp,
			Items:         []models.WastedItem(record.Items),
			Reason:        models.WasteReason(record.Reason),
			TotalValue:    record.TotalValue,
			TotalCarbonKg: record.TotalCarbonKg,
		})
	}
	return events, nil
}

// AppendSavingsEvent persists an attribution and returns its id. Weekly
// reduction bonuses additionally insert a WeeklyClaim inside the same
// transaction; the unique (user, week) index turns a duplicate claim into
// ErrWeeklyBonusClaimed.
func (s *Store) AppendSavingsEvent(userID string, event models.SavingsEvent) (string, error) {
	var id string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if event.WeekID != "" {
			var count int64
			if err := tx.Model(&WeeklyClaim{}).
				Where("user_id = ? AND week_id = ?", userID, event.WeekID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrWeeklyBonusClaimed
			}
			if err := tx.Create(&WeeklyClaim{UserID: userID, WeekID: event.WeekID}).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrWeeklyBonusClaimed
				}
				return err
			}
		}

		record := SavingsEventRecord{
			UserID:            userID,
			Timestamp:         event.Timestamp,
			Type:              string(event.Type),
			Amount:            event.Amount,
			Description:       event.Description,
			CalculationMethod: event.CalculationMethod,
			ItemID:            event.ItemID,
			WeekID:            event.WeekID,
			Transferred:       event.Transferred,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		id = formatID(record.ID)
		return nil
	})
	return id, err
}

// ListSavingsEvents returns all of the user's savings attributions.
func (s *Store) ListSavingsEvents(userID string) ([]models.SavingsEvent, error) {
	var records []SavingsEventRecord
	if err := s.db.Where("user_id = ?", userID).Order("timestamp").Find(&records).Error; err != nil {
		return nil, err
	}
	events := make([]models.SavingsEvent, 0, len(records))
	for _, record := range records {
		events = append(events, models.SavingsEvent{
			ID:                formatID(record.ID),
			Timestamp:         record.Timestamp,
			Type:              models.SavingsType(record.Type),
			Amount:            record.Amount,
			Description:       record.Description,
			CalculationMethod: record.CalculationMethod,
			ItemID:            record.ItemID,
			WeekID:            record.WeekID,
			Transferred:       record.Transferred,
		})
	}
	return events, nil
}

// WasteLogCount returns how many waste sessions the user has logged,
// used for the attribution cold-start rule.
func (s *Store) WasteLogCount(userID string) (int, error) {
	var count int64
	err := s.db.Model(&WasteEventRecord{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

func recordToItem(record InventoryRecord) models.InventoryItem {
	return models.InventoryItem{
		ID:            formatID(record.ID),
		Name:          record.Name,
		Quantity:      record.Quantity,
		Unit:          record.Unit,
		AddedAt:       record.AddedAt,
		ShelfLife:     mapToShelfLife(record.ShelfLife),
		EstimatedCost: record.EstimatedCost,
		Location:      models.StorageLocation(record.Location),
		State:         models.ItemState(record.State),
		UsedDate:      record.UsedDate,
	}
}

func shelfLifeToMap(table models.ShelfLifeTable) ShelfLifeMap {
	m := make(ShelfLifeMap, len(table))
	for location, days := range table {
		m[string(location)] = days
	}
	return m
}

func mapToShelfLife(m ShelfLifeMap) models.ShelfLifeTable {
	table := make(models.ShelfLifeTable, len(m))
	for location, days := range m {
		table[models.StorageLocation(location)] = days
	}
	return table
}

// isUniqueViolation recognizes a duplicate-key insert on the sqlite and
// postgres dialects. Only those map to ErrWeeklyBonusClaimed; every other
// insert failure is a real database error and surfaces unchanged.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseID(id string) (uint, error) {
	parsed, err := strconv.ParseUint(id, 10, 64)
	return uint(parsed), err
}
