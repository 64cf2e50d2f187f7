package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thuere/models"
	"thuere/services/availability"
	"thuere/services/selection"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAvailabilityService struct {
	result availability.Result
	err    error
	roster []models.FieldQuantity
}

func (m *mockAvailabilityService) GetTimeGroups(ctx context.Context, fieldCode, date string) (availability.Result, error) {
	return m.result, m.err
}

func (m *mockAvailabilityService) GetQuantities(ctx context.Context, fieldCode string) ([]models.FieldQuantity, error) {
	return m.roster, m.err
}

func (m *mockAvailabilityService) Refresh(ctx context.Context, fieldCode, date string) error {
	return m.err
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetFieldAvailabilityRequiresDate(t *testing.T) {
	h := NewAvailabilityHandler(&mockAvailabilityService{})
	router := gin.New()
	router.GET("/fields/:fieldCode/availability", h.GetFieldAvailability)

	w := performRequest(router, http.MethodGet, "/fields/F01/availability")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetFieldAvailabilityReturnsGroups(t *testing.T) {
	svc := &mockAvailabilityService{result: availability.Result{
		Groups: []models.TimeGroup{{Key: "2026-03-14|10:00|11:00", PlayDate: "2026-03-14"}},
	}}
	h := NewAvailabilityHandler(svc)
	router := gin.New()
	router.GET("/fields/:fieldCode/availability", h.GetFieldAvailability)

	w := performRequest(router, http.MethodGet, "/fields/F01/availability?date=2026-03-14")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body availability.Result
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Groups) != 1 || body.Groups[0].Key != "2026-03-14|10:00|11:00" {
		t.Errorf("groups = %+v", body.Groups)
	}
}

func TestGetFieldAvailabilityUpstreamFailure(t *testing.T) {
	svc := &mockAvailabilityService{err: errors.New("upstream down")}
	h := NewAvailabilityHandler(svc)
	router := gin.New()
	router.GET("/fields/:fieldCode/availability", h.GetFieldAvailability)

	w := performRequest(router, http.MethodGet, "/fields/F01/availability?date=2026-03-14")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

type mockPaymentAPI struct {
	status string
	err    error
}

func (m *mockPaymentAPI) CheckPaymentStatus(ctx context.Context, bookingCode string) (string, error) {
	return m.status, m.err
}

func TestGetPaymentStatus(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentAPI{status: "paid"})
	router := gin.New()
	router.GET("/payments/:bookingCode/status", h.GetPaymentStatus)

	w := performRequest(router, http.MethodGet, "/payments/BK-1/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "paid" {
		t.Errorf("body = %v", body)
	}
}

type mockNotificationAPI struct {
	list    *models.NotificationList
	err     error
	gotRead string
	gotLim  int
	gotOff  int
}

func (m *mockNotificationAPI) Notifications(ctx context.Context, isRead string, limit, offset int) (*models.NotificationList, error) {
	m.gotRead, m.gotLim, m.gotOff = isRead, limit, offset
	return m.list, m.err
}

func TestGetNotificationsDefaultsAndFilters(t *testing.T) {
	api := &mockNotificationAPI{list: &models.NotificationList{UnreadCount: 2}}
	h := NewNotificationHandler(api)
	router := gin.New()
	router.GET("/notifications", h.GetNotifications)

	w := performRequest(router, http.MethodGet, "/notifications?is_read=N&limit=bogus&offset=-3")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if api.gotRead != "N" || api.gotLim != 20 || api.gotOff != 0 {
		t.Errorf("forwarded query = (%q, %d, %d), want (N, 20, 0)", api.gotRead, api.gotLim, api.gotOff)
	}
}

type mockPromotionService struct {
	promo *models.Promotion
	err   error
}

func (m *mockPromotionService) GetActivePromotions(ctx context.Context, shopCode string) ([]models.Promotion, error) {
	if m.promo == nil {
		return nil, m.err
	}
	return []models.Promotion{*m.promo}, m.err
}

func (m *mockPromotionService) FindPromotion(ctx context.Context, shopCode, code string) (*models.Promotion, error) {
	return m.promo, m.err
}

func TestQuoteForAppliesSessionPromotion(t *testing.T) {
	h := &BookingHandler{
		Promotions: &mockPromotionService{promo: &models.Promotion{
			PromotionCode: "SAVE10", DiscountType: "percent", DiscountValue: 10,
		}},
		Logger: zap.NewNop(),
	}
	session := &models.BookingSession{HourlyPrice: 100000, PromotionCode: "SAVE10"}
	view := selection.View{TotalHours: 2}

	quote := h.quoteFor(context.Background(), session, view, true)
	if quote.Before != 200000 || quote.Discount != 20000 || quote.Final != 180000 {
		t.Errorf("quote = %+v", quote)
	}
}

func TestQuoteForLookupFailureFallsBackToNoPromotion(t *testing.T) {
	h := &BookingHandler{
		Promotions: &mockPromotionService{err: errors.New("promotions down")},
		Logger:     zap.NewNop(),
	}
	session := &models.BookingSession{HourlyPrice: 100000, PromotionCode: "SAVE10"}
	view := selection.View{TotalHours: 1}

	quote := h.quoteFor(context.Background(), session, view, true)
	if quote.Discount != 0 || quote.Final != 100000 {
		t.Errorf("quote = %+v", quote)
	}
	// The code was set but could not be resolved.
	if quote.FeedbackClass != "error" {
		t.Errorf("feedback class = %q, want error", quote.FeedbackClass)
	}
}
