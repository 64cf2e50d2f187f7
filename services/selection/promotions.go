package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"thuere/models"
)

// PromotionSource fetches a shop's active promotions from the upstream.
type PromotionSource interface {
	ActiveShopPromotions(ctx context.Context, shopCode string) ([]models.Promotion, error)
}

// PromotionService resolves promotion codes against the shop's active
// promotions. Authoritative validation still happens upstream at booking
// confirmation; this only drives the client-side discount preview.
type PromotionService interface {
	GetActivePromotions(ctx context.Context, shopCode string) ([]models.Promotion, error)
	FindPromotion(ctx context.Context, shopCode, code string) (*models.Promotion, error)
}

// DefaultPromotionService caches the promotion list per shop.
type DefaultPromotionService struct {
	Source PromotionSource
	Cache  *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

const defaultPromotionTTL = 5 * time.Minute

func (s *DefaultPromotionService) GetActivePromotions(ctx context.Context, shopCode string) ([]models.Promotion, error) {
	cacheKey := "shop:promotions:" + shopCode

	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var promotions []models.Promotion
			if err := json.Unmarshal([]byte(cached), &promotions); err == nil {
				return promotions, nil
			}
		}
	}

	promotions, err := s.Source.ActiveShopPromotions(ctx, shopCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shop promotions: %w", err)
	}

	if s.Cache != nil {
		ttl := s.TTL
		if ttl <= 0 {
			ttl = defaultPromotionTTL
		}
		if data, err := json.Marshal(promotions); err == nil {
			if err := s.Cache.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
				s.Logger.Warn("failed to cache promotions", zap.Error(err))
			}
		}
	}
	return promotions, nil
}

// FindPromotion returns the active promotion matching the code
// (case-insensitive), or nil when no promotion matches.
func (s *DefaultPromotionService) FindPromotion(ctx context.Context, shopCode, code string) (*models.Promotion, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	promotions, err := s.GetActivePromotions(ctx, shopCode)
	if err != nil {
		return nil, err
	}
	for i := range promotions {
		if strings.EqualFold(promotions[i].PromotionCode, code) {
			return &promotions[i], nil
		}
	}
	return nil, nil
}
