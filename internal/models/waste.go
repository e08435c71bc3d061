package models

import "time"

// WastedItem is one entry inside a waste logging session.
type WastedItem struct {
	Name      string  `json:"name"`
	PesoValue float64 `json:"peso_value"`
	Category  string  `json:"category"`
}

// WasteEvent records one waste logging session. Immutable once created;
// TotalValue and TotalCarbonKg must equal the sums over Items.
type WasteEvent struct {
	ID            string
	Timestamp     time.Time
	Items         []WastedItem
	Reason        WasteReason // optional, session level
	TotalValue    float64
	TotalCarbonKg float64
}

// ItemValueSum returns the sum of peso values over the session's items.
func (e *WasteEvent) ItemValueSum() float64 {
	var sum float64
	for _, item := range e.Items {
		sum += item.PesoValue
	}
	return sum
}

// WasteReason represents why a session's items were wasted
type WasteReason string

const (
	// Waste reason codes
	ReasonExpired    WasteReason = "expired"
	ReasonSpoiled    WasteReason = "spoiled"
	ReasonOvercooked WasteReason = "overcooked"
	ReasonLeftover   WasteReason = "leftover"
	ReasonForgotten  WasteReason = "forgotten"
	ReasonOther      WasteReason = "other"
)
