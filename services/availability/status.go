package availability

import (
	"strings"
	"time"

	"thuere/models"
)

// heldStatuses is the organically-grown vocabulary the upstream uses for
// temporarily held courts.
var heldStatuses = map[string]struct{}{
	"held":                 {},
	"holding":              {},
	"on_hold":              {},
	"pending":              {},
	"pending_hold":         {},
	"pending_booking":      {},
	"pending_payment":      {},
	"pending_confirmation": {},
	"pending_confirm":      {},
}

// bookedStatuses covers every status that means "not bookable for good".
var bookedStatuses = map[string]struct{}{
	"booked":      {},
	"confirmed":   {},
	"reserved":    {},
	"paid":        {},
	"success":     {},
	"completed":   {},
	"done":        {},
	"inactive":    {},
	"maintenance": {},
	"blocked":     {},
	"cancelled":   {},
	"cancel":      {},
}

// epochMillisThreshold distinguishes epoch seconds from values that already
// are milliseconds.
const epochMillisThreshold = 1e12

// resolveHoldExpiry turns the pair of hold-expiry fields into a concrete
// time. The epoch field wins when present; the string field may lack a
// timezone marker and is coerced by replacing the first space with "T".
func resolveHoldExpiry(holdExpiresAt *string, holdExpiresAtTs *float64) (time.Time, bool) {
	if holdExpiresAtTs != nil {
		v := *holdExpiresAtTs
		if v > epochMillisThreshold {
			return time.UnixMilli(int64(v)), true
		}
		return time.Unix(int64(v), 0), true
	}
	if holdExpiresAt != nil && *holdExpiresAt != "" {
		s := strings.Replace(*holdExpiresAt, " ", "T", 1)
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// holdStillActiveAt reports whether a hold has not yet expired. An
// unresolvable expiry is treated as active rather than silently freeing a
// court someone may still be paying for.
func holdStillActiveAt(holdExpiresAt *string, holdExpiresAtTs *float64, now time.Time) bool {
	expiry, ok := resolveHoldExpiry(holdExpiresAt, holdExpiresAtTs)
	if !ok {
		return true
	}
	return expiry.After(now)
}

// IsHoldStillActive reports whether a hold is still in effect.
func IsHoldStillActive(holdExpiresAt *string, holdExpiresAtTs *float64) bool {
	return holdStillActiveAt(holdExpiresAt, holdExpiresAtTs, time.Now())
}

// NormalizeCourtStatusAt maps a raw upstream status to the canonical
// 3-state model, demoting expired holds back to available. Unknown
// vocabulary fails safe toward booked.
func NormalizeCourtStatusAt(rawStatus string, holdExpiresAt *string, holdExpiresAtTs *float64, now time.Time) models.CourtStatus {
	status := strings.ToLower(strings.TrimSpace(rawStatus))
	if _, ok := heldStatuses[status]; ok {
		if holdStillActiveAt(holdExpiresAt, holdExpiresAtTs, now) {
			return models.CourtHeld
		}
		return models.CourtAvailable
	}
	if _, ok := bookedStatuses[status]; ok {
		return models.CourtBooked
	}
	if status == "available" {
		return models.CourtAvailable
	}
	return models.CourtBooked
}

// NormalizeCourtStatus is NormalizeCourtStatusAt against the wall clock.
func NormalizeCourtStatus(rawStatus string, holdExpiresAt *string, holdExpiresAtTs *float64) models.CourtStatus {
	return NormalizeCourtStatusAt(rawStatus, holdExpiresAt, holdExpiresAtTs, time.Now())
}

// DeriveSlotState combines the raw status with the alternate availability
// signals different upstream endpoints emit. Tie-break order: explicit
// false-availability, explicit unavailable state, status-derived
// held/booked/blocked, explicit true-availability, default available.
func DeriveSlotState(slot models.RawSlot) models.SlotState {
	raw := strings.ToLower(strings.TrimSpace(slot.Status))
	hint := strings.ToLower(strings.TrimSpace(slot.AvailabilityState))
	if hint == "" {
		hint = strings.ToLower(strings.TrimSpace(slot.AvailabilityStatus))
	}

	var state models.SlotState
	if _, ok := heldStatuses[raw]; ok && IsHoldStillActive(slot.HoldExpiresAt, slot.HoldExpiresAtTs) {
		state.IsHeld = true
	}
	if _, ok := bookedStatuses[raw]; ok {
		state.IsBooked = true
	}
	switch raw {
	case "blocked", "maintenance", "inactive":
		state.IsBlocked = true
	}

	switch {
	case slot.IsAvailable != nil && !*slot.IsAvailable:
		state.IsAvailable = false
	case hint == "unavailable" || hint == "held" || hint == "booked" || hint == "blocked":
		state.IsAvailable = false
	case state.IsHeld || state.IsBooked || state.IsBlocked:
		state.IsAvailable = false
	default:
		state.IsAvailable = true
	}
	return state
}
