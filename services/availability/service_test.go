package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"thuere/models"
)

type mockSlotSource struct {
	slots      []models.RawSlot
	slotsErr   error
	quantities []models.FieldQuantity
	quantErr   error

	availabilityCalls int
}

func (m *mockSlotSource) FieldAvailability(ctx context.Context, fieldCode, date string) ([]models.RawSlot, error) {
	m.availabilityCalls++
	return m.slots, m.slotsErr
}

func (m *mockSlotSource) FieldQuantities(ctx context.Context, fieldCode string) ([]models.FieldQuantity, error) {
	return m.quantities, m.quantErr
}

func TestGetTimeGroupsEmptyDay(t *testing.T) {
	svc := &DefaultAvailabilityService{
		Source: &mockSlotSource{},
		Logger: zap.NewNop(),
	}

	result, err := svc.GetTimeGroups(context.Background(), "F01", "2026-03-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AvailabilityError != "No schedule opened for the selected date" {
		t.Errorf("availability error = %q", result.AvailabilityError)
	}
	if len(result.Groups) != 0 {
		t.Errorf("got %d groups, want 0", len(result.Groups))
	}
}

func TestGetTimeGroupsDegradesWithoutRoster(t *testing.T) {
	source := &mockSlotSource{
		slots:    []models.RawSlot{courtSlot(1, 10, 1, "available")},
		quantErr: errors.New("upstream down"),
	}
	svc := &DefaultAvailabilityService{Source: source, Logger: zap.NewNop()}

	result, err := svc.GetTimeGroups(context.Background(), "F01", "2026-03-14")
	if err != nil {
		t.Fatalf("roster failure must not fail the view: %v", err)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if len(result.Groups[0].Courts) != 1 {
		t.Errorf("synthesis should be skipped without a roster, got %d courts", len(result.Groups[0].Courts))
	}
}

func TestGetTimeGroupsReportsNextHoldExpiry(t *testing.T) {
	expiry := time.Now().Add(5 * time.Minute)
	ts := float64(expiry.Unix())
	source := &mockSlotSource{
		slots: []models.RawSlot{
			courtSlot(1, 10, 1, "available"),
			{
				SlotID: 2, FieldCode: "F01", PlayDate: "2026-03-14",
				StartTime: "10:00", EndTime: "11:00",
				QuantityID: intPtr(11), QuantityNumber: intPtr(2),
				Status: "held", HoldExpiresAtTs: &ts,
			},
		},
	}
	svc := &DefaultAvailabilityService{Source: source, Logger: zap.NewNop()}

	result, err := svc.GetTimeGroups(context.Background(), "F01", "2026-03-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NextHoldExpiry == nil {
		t.Fatal("expected a next hold expiry")
	}
	if result.NextHoldExpiry.Unix() != expiry.Unix() {
		t.Errorf("next expiry = %v, want %v", result.NextHoldExpiry, expiry)
	}
}

func TestRefreshNotifiesWatcher(t *testing.T) {
	source := &mockSlotSource{
		slots: []models.RawSlot{courtSlot(1, 10, 1, "available")},
	}
	svc := &DefaultAvailabilityService{Source: source, Logger: zap.NewNop()}
	svc.Watcher = NewWatcher(func(fieldCode, date string) {}, zap.NewNop())
	defer svc.Watcher.Stop()

	if err := svc.Refresh(context.Background(), "F01", "2026-03-14"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.availabilityCalls != 1 {
		t.Errorf("availability fetched %d times, want 1", source.availabilityCalls)
	}
}
