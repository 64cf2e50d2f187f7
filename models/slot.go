package models

// RawSlot is one bookable time unit for one court, as returned by the
// upstream availability endpoint. A nil QuantityID means the entry stands
// for the field as a whole rather than a specific court.
type RawSlot struct {
	SlotID         int    `json:"slot_id"`
	FieldCode      string `json:"field_code"`
	PlayDate       string `json:"play_date"`   // e.g., "2026-09-01"
	StartTime      string `json:"start_time"`  // "HH:MM"
	EndTime        string `json:"end_time"`    // "HH:MM"
	QuantityID     *int   `json:"quantity_id"`
	QuantityNumber *int   `json:"quantity_number"`
	Status         string `json:"status"` // raw, server-defined vocabulary

	// Hold metadata. The epoch field is authoritative when present; the
	// string field may be missing its timezone marker.
	HoldExpiresAt   *string  `json:"hold_expires_at"`
	HoldExpiresAtTs *float64 `json:"hold_expires_at_ts"`

	// Legacy/alternate availability signals emitted by some endpoints.
	IsAvailable        *bool  `json:"is_available,omitempty"`
	AvailabilityState  string `json:"availability_state,omitempty"`
	AvailabilityStatus string `json:"availability_status,omitempty"`

	// Synthetic marks a client-fabricated placeholder for a court the
	// upstream did not report. Synthetic slots carry negative SlotIDs.
	Synthetic bool `json:"synthetic,omitempty"`
}

// CourtStatus is the canonical 3-state classification of a court's slot.
type CourtStatus string

const (
	CourtAvailable CourtStatus = "available"
	CourtHeld      CourtStatus = "held"
	CourtBooked    CourtStatus = "booked"
)

// SlotState is the richer classification used by slot-grid rendering,
// combining the raw status with the alternate availability signals.
type SlotState struct {
	IsAvailable bool `json:"isAvailable"`
	IsHeld      bool `json:"isHeld"`
	IsBooked    bool `json:"isBooked"`
	IsBlocked   bool `json:"isBlocked"`
}

// TimeGroup aggregates one time window's base slot plus all per-court
// entries for it.
type TimeGroup struct {
	Key           string    `json:"key"` // "date|start|end"
	PlayDate      string    `json:"play_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	BaseSlot      RawSlot   `json:"base_slot"`
	Courts        []RawSlot `json:"courts"`
	IsFullyBooked bool      `json:"is_fully_booked"`
}

// FieldQuantity is one court in a field's authoritative roster.
type FieldQuantity struct {
	QuantityID     int    `json:"quantity_id"`
	QuantityNumber int    `json:"quantity_number"`
	Status         string `json:"status,omitempty"`
}

// CourtOption is the aggregate status of one court across every selected
// time window. A court is offered as available only when it is available in
// all of them.
type CourtOption struct {
	QuantityID      int         `json:"quantity_id"`
	QuantityNumber  int         `json:"quantity_number"`
	Status          CourtStatus `json:"status"`
	HoldExpiresAt   *string     `json:"hold_expires_at,omitempty"`
	HoldExpiresAtTs *float64    `json:"hold_expires_at_ts,omitempty"`
}

// WindowQuantities is the upstream's per-window court availability report.
type WindowQuantities struct {
	AvailableQuantities []FieldQuantity  `json:"availableQuantities"`
	BookedQuantities    []BookedQuantity `json:"bookedQuantities"`
}

// BookedQuantity is one non-available court within a single time window.
type BookedQuantity struct {
	QuantityID      int      `json:"quantity_id"`
	QuantityNumber  int      `json:"quantity_number"`
	Status          string   `json:"status"`
	HoldExpiresAt   *string  `json:"hold_expires_at"`
	HoldExpiresAtTs *float64 `json:"hold_expires_at_ts"`
}
