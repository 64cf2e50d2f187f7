package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"thuere/models"
)

// SlotSource is the upstream view this service needs.
type SlotSource interface {
	FieldAvailability(ctx context.Context, fieldCode, date string) ([]models.RawSlot, error)
	FieldQuantities(ctx context.Context, fieldCode string) ([]models.FieldQuantity, error)
}

// Service reconciles raw upstream slot data into time groups.
type Service interface {
	GetTimeGroups(ctx context.Context, fieldCode, date string) (Result, error)
	GetQuantities(ctx context.Context, fieldCode string) ([]models.FieldQuantity, error)
	Refresh(ctx context.Context, fieldCode, date string) error
}

// Result is the reconciled availability for one field and date.
type Result struct {
	Groups            []models.TimeGroup `json:"groups"`
	RawSlots          []models.RawSlot   `json:"-"`
	AvailabilityError string             `json:"availabilityError,omitempty"`
	NextHoldExpiry    *time.Time         `json:"nextHoldExpiry,omitempty"`
}

// DefaultAvailabilityService is the production implementation.
type DefaultAvailabilityService struct {
	Source      SlotSource
	Cache       *redis.Client
	QuantityTTL time.Duration
	Watcher     *Watcher
	Logger      *zap.Logger
}

const defaultQuantityTTL = 15 * time.Minute

// GetTimeGroups fetches the day's raw slots plus the court roster and
// builds the reconciled groups. A roster fetch failure degrades to
// no-synthesis rather than failing the whole view.
func (s *DefaultAvailabilityService) GetTimeGroups(ctx context.Context, fieldCode, date string) (Result, error) {
	slots, err := s.Source.FieldAvailability(ctx, fieldCode, date)
	if err != nil {
		return Result{}, err
	}
	if len(slots) == 0 {
		return Result{AvailabilityError: "No schedule opened for the selected date"}, nil
	}

	quantities, err := s.GetQuantities(ctx, fieldCode)
	if err != nil {
		s.Logger.Warn("court roster unavailable, skipping synthesis",
			zap.String("fieldCode", fieldCode), zap.Error(err))
		quantities = nil
	}

	result := Result{
		Groups:   BuildTimeGroups(slots, quantities),
		RawSlots: slots,
	}
	if expiry, ok := NextHoldExpiry(slots); ok {
		result.NextHoldExpiry = &expiry
	}
	if s.Watcher != nil {
		s.Watcher.Observe(fieldCode, date, slots)
	}
	return result, nil
}

// GetQuantities returns the authoritative court roster, cached per field.
func (s *DefaultAvailabilityService) GetQuantities(ctx context.Context, fieldCode string) ([]models.FieldQuantity, error) {
	cacheKey := "field:quantities:" + fieldCode

	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var quantities []models.FieldQuantity
			if err := json.Unmarshal([]byte(cached), &quantities); err == nil {
				return quantities, nil
			}
		}
	}

	quantities, err := s.Source.FieldQuantities(ctx, fieldCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch court roster: %w", err)
	}

	if s.Cache != nil {
		ttl := s.QuantityTTL
		if ttl <= 0 {
			ttl = defaultQuantityTTL
		}
		if data, err := json.Marshal(quantities); err == nil {
			if err := s.Cache.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
				s.Logger.Warn("failed to cache court roster", zap.Error(err))
			}
		}
	}
	return quantities, nil
}

// Refresh drops the cached roster and re-fetches the day's slots, used
// after a booking conflict to pick up the now-stale availability.
func (s *DefaultAvailabilityService) Refresh(ctx context.Context, fieldCode, date string) error {
	if s.Cache != nil {
		if err := s.Cache.Del(ctx, "field:quantities:"+fieldCode).Err(); err != nil {
			s.Logger.Warn("failed to invalidate roster cache", zap.Error(err))
		}
	}
	slots, err := s.Source.FieldAvailability(ctx, fieldCode, date)
	if err != nil {
		return err
	}
	if s.Watcher != nil {
		s.Watcher.Observe(fieldCode, date, slots)
	}
	return nil
}
