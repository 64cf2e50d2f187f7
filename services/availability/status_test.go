package availability

import (
	"testing"
	"time"

	"thuere/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }
func boolPtr(b bool) *bool      { return &b }

func TestNormalizeCourtStatusVocabulary(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	future := f64Ptr(float64(now.Add(time.Hour).Unix()))

	tests := []struct {
		raw  string
		want models.CourtStatus
	}{
		{"available", models.CourtAvailable},
		{"Available", models.CourtAvailable},
		{"  available  ", models.CourtAvailable},
		{"held", models.CourtHeld},
		{"holding", models.CourtHeld},
		{"on_hold", models.CourtHeld},
		{"pending", models.CourtHeld},
		{"pending_payment", models.CourtHeld},
		{"pending_confirmation", models.CourtHeld},
		{"booked", models.CourtBooked},
		{"confirmed", models.CourtBooked},
		{"reserved", models.CourtBooked},
		{"paid", models.CourtBooked},
		{"maintenance", models.CourtBooked},
		{"cancelled", models.CourtBooked},
		// Unknown vocabulary must not free a court.
		{"banana", models.CourtBooked},
		{"", models.CourtBooked},
	}
	for _, tc := range tests {
		got := NormalizeCourtStatusAt(tc.raw, nil, future, now)
		if got != tc.want {
			t.Errorf("NormalizeCourtStatusAt(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestExpiredHoldDemotesToAvailable(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	expired := f64Ptr(float64(now.Add(-time.Minute).Unix()))
	if got := NormalizeCourtStatusAt("held", nil, expired, now); got != models.CourtAvailable {
		t.Errorf("expired hold = %q, want available", got)
	}

	active := f64Ptr(float64(now.Add(time.Minute).Unix()))
	if got := NormalizeCourtStatusAt("held", nil, active, now); got != models.CourtHeld {
		t.Errorf("active hold = %q, want held", got)
	}
}

func TestResolveHoldExpiryEpochUnits(t *testing.T) {
	want := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	// Seconds.
	got, ok := resolveHoldExpiry(nil, f64Ptr(float64(want.Unix())))
	if !ok || !got.Equal(want) {
		t.Errorf("seconds: got %v ok=%v, want %v", got, ok, want)
	}

	// Milliseconds are detected by magnitude.
	got, ok = resolveHoldExpiry(nil, f64Ptr(float64(want.UnixMilli())))
	if !ok || !got.Equal(want) {
		t.Errorf("millis: got %v ok=%v, want %v", got, ok, want)
	}
}

func TestResolveHoldExpiryStringFormats(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"rfc3339", "2026-03-14T10:00:00Z", true},
		{"space separated", "2026-03-14 10:00:00", true},
		{"no timezone", "2026-03-14T10:00:00", true},
		{"garbage", "not-a-time", false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := resolveHoldExpiry(strPtr(tc.value), nil)
			if ok != tc.ok {
				t.Errorf("resolveHoldExpiry(%q) ok = %v, want %v", tc.value, ok, tc.ok)
			}
		})
	}
}

func TestUnresolvableExpiryKeepsHoldActive(t *testing.T) {
	now := time.Now()
	if !holdStillActiveAt(strPtr("garbled"), nil, now) {
		t.Error("unparseable expiry should keep the hold active")
	}
	if !holdStillActiveAt(nil, nil, now) {
		t.Error("absent expiry should keep the hold active")
	}
}

func TestDeriveSlotStateTieBreaks(t *testing.T) {
	future := f64Ptr(float64(time.Now().Add(time.Hour).Unix()))

	tests := []struct {
		name string
		slot models.RawSlot
		want models.SlotState
	}{
		{
			name: "explicit false availability wins over available status",
			slot: models.RawSlot{Status: "available", IsAvailable: boolPtr(false)},
			want: models.SlotState{IsAvailable: false},
		},
		{
			name: "availability state hint blocks",
			slot: models.RawSlot{Status: "available", AvailabilityState: "unavailable"},
			want: models.SlotState{IsAvailable: false},
		},
		{
			name: "active hold",
			slot: models.RawSlot{Status: "held", HoldExpiresAtTs: future},
			want: models.SlotState{IsHeld: true, IsAvailable: false},
		},
		{
			name: "booked",
			slot: models.RawSlot{Status: "booked"},
			want: models.SlotState{IsBooked: true, IsAvailable: false},
		},
		{
			name: "maintenance is booked and blocked",
			slot: models.RawSlot{Status: "maintenance"},
			want: models.SlotState{IsBooked: true, IsBlocked: true, IsAvailable: false},
		},
		{
			name: "plain available",
			slot: models.RawSlot{Status: "available", IsAvailable: boolPtr(true)},
			want: models.SlotState{IsAvailable: true},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveSlotState(tc.slot)
			if got != tc.want {
				t.Errorf("DeriveSlotState = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNextHoldExpiryPicksSoonestFuture(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	slots := []models.RawSlot{
		{Status: "held", HoldExpiresAtTs: f64Ptr(float64(now.Add(5 * time.Minute).Unix()))},
		{Status: "held", HoldExpiresAtTs: f64Ptr(float64(now.Add(-time.Minute).Unix()))},
		{Status: "held", HoldExpiresAtTs: f64Ptr(float64(now.Add(2 * time.Minute).Unix()))},
		{Status: "available"},
	}

	got, ok := NextHoldExpiryAt(slots, now)
	if !ok {
		t.Fatal("expected an upcoming expiry")
	}
	want := now.Add(2 * time.Minute)
	if !got.Equal(want) {
		t.Errorf("NextHoldExpiryAt = %v, want %v", got, want)
	}

	if _, ok := NextHoldExpiryAt([]models.RawSlot{{Status: "available"}}, now); ok {
		t.Error("expected no expiry for hold-free slots")
	}
}

func TestHeldStatusesAndBookedStatusesDisjoint(t *testing.T) {
	for s := range heldStatuses {
		if _, ok := bookedStatuses[s]; ok {
			t.Errorf("status %q appears in both vocabularies", s)
		}
	}
}
