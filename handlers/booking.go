package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"thuere/models"
	"thuere/services/availability"
	"thuere/services/selection"
	"thuere/upstream"
	"thuere/utils"
)

const sessionTTL = 30 * time.Minute

// BookingHandler drives the redis-backed booking session flow: create a
// session, toggle slots and courts against live availability, confirm.
type BookingHandler struct {
	Avail      availability.Service
	Windows    selection.WindowSource
	Promotions selection.PromotionService
	Confirmer  *selection.Confirmer
	Cache      *redis.Client
	ShopCode   string
	Logger     *zap.Logger

	// WatchPayment, when set, starts background payment polling for a
	// confirmed booking.
	WatchPayment func(bookingCode string)
}

// StartBookingSession creates a new booking session for a field and date.
func (h *BookingHandler) StartBookingSession(c *gin.Context) {
	var input struct {
		FieldCode   string  `json:"field_code" binding:"required"`
		PlayDate    string  `json:"play_date" binding:"required"`
		HourlyPrice float64 `json:"hourly_price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session := models.BookingSession{
		SessionID:   uuid.New().String(),
		FieldCode:   input.FieldCode,
		PlayDate:    input.PlayDate,
		HourlyPrice: input.HourlyPrice,
		CreatedAt:   time.Now(),
	}
	if err := h.saveSession(c.Request.Context(), &session); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to cache booking session", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionID": session.SessionID})
}

type updateSessionInput struct {
	ToggleSlotID  *int    `json:"toggle_slot_id"`
	QuantityID    *int    `json:"quantity_id"`
	PromotionCode *string `json:"promotion_code"`
	Prefill       *struct {
		StartTime     string  `json:"start_time"`
		DurationHours float64 `json:"duration_hours"`
	} `json:"prefill"`
}

// UpdateBookingSession applies a selection change and returns the
// recomputed view: selected slots, contiguity, unified court options and
// the price quote.
func (h *BookingHandler) UpdateBookingSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input updateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ctx := c.Request.Context()
	session, err := h.loadSession(ctx, sessionID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "booking session not found or expired", "")
		return
	}

	result, err := h.Avail.GetTimeGroups(ctx, session.FieldCode, session.PlayDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to fetch availability", utils.ErrorMessage(err))
		return
	}

	engine := selection.NewEngine()
	engine.SetGroups(result.Groups)
	engine.SetSelected(session.SelectedSlotIDs)

	if input.Prefill != nil {
		engine.Prefill(session.PlayDate, input.Prefill.StartTime, input.Prefill.DurationHours)
	}
	if input.ToggleSlotID != nil {
		engine.Toggle(*input.ToggleSlotID)
	}
	if input.PromotionCode != nil {
		session.PromotionCode = *input.PromotionCode
	}
	if input.QuantityID != nil {
		session.SelectedQuantityID = input.QuantityID
	}

	view := engine.View()
	session.SelectedSlotIDs = engine.SelectedIDs()

	var courtOptions []models.CourtOption
	if view.NeedsCourt && len(view.Slots) > 0 {
		roster, rosterErr := h.Avail.GetQuantities(ctx, session.FieldCode)
		if rosterErr != nil {
			h.Logger.Warn("court roster unavailable during session update", zap.Error(rosterErr))
		}
		courtOptions, err = selection.ResolveCourtOptions(ctx, h.Windows, session.FieldCode, view.Windows, result.RawSlots, roster)
		if err != nil {
			utils.JSONError(c, http.StatusBadGateway, "failed to resolve court availability", utils.ErrorMessage(err))
			return
		}
		session.SelectedQuantityID = selection.PickDefaultCourt(courtOptions, session.SelectedQuantityID)
	} else {
		session.SelectedQuantityID = nil
	}

	quote := h.quoteFor(ctx, session, view, c.GetHeader("Authorization") != "")

	if err := h.saveSession(ctx, session); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update booking session", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":        session,
		"selection":      view,
		"courtOptions":   courtOptions,
		"quote":          quote,
		"nextHoldExpiry": result.NextHoldExpiry,
	})
}

// ConfirmBooking submits the session to the upstream. Conflicts clear the
// court selection, trigger a slot re-fetch and come back as 409 so the
// client can re-pick against fresh availability.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input struct {
		PaymentMethod string `json:"payment_method"`
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
		CustomerEmail string `json:"customer_email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ctx := c.Request.Context()
	session, err := h.loadSession(ctx, sessionID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "booking session not found or expired", "")
		return
	}

	result, err := h.Avail.GetTimeGroups(ctx, session.FieldCode, session.PlayDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to fetch availability", utils.ErrorMessage(err))
		return
	}

	engine := selection.NewEngine()
	engine.SetGroups(result.Groups)
	engine.SetSelected(session.SelectedSlotIDs)
	view := engine.View()

	if len(view.Slots) == 0 {
		utils.JSONError(c, http.StatusBadRequest, "no slots selected", "")
		return
	}
	if view.NeedsCourt && session.SelectedQuantityID == nil {
		utils.JSONError(c, http.StatusBadRequest, "no court selected", "a court must be chosen for the selected time slots")
		return
	}

	quote := h.quoteFor(ctx, session, view, c.GetHeader("Authorization") != "")

	var quantityNumber *int
	if session.SelectedQuantityID != nil {
		if roster, rosterErr := h.Avail.GetQuantities(ctx, session.FieldCode); rosterErr == nil {
			for _, q := range roster {
				if q.QuantityID == *session.SelectedQuantityID {
					n := q.QuantityNumber
					quantityNumber = &n
					break
				}
			}
		}
	}

	req := models.BookingConfirmationRequest{
		PaymentMethod: input.PaymentMethod,
		TotalAmount:   quote.Final,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CustomerEmail: input.CustomerEmail,
		PromotionCode: session.PromotionCode,
	}
	for _, s := range view.Slots {
		req.Slots = append(req.Slots, models.SelectedSlot{
			SlotID:         s.SlotID,
			PlayDate:       s.PlayDate,
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			QuantityID:     session.SelectedQuantityID,
			QuantityNumber: quantityNumber,
		})
	}

	resp, err := h.Confirmer.Confirm(ctx, session, req)
	if err != nil {
		// Persist the (possibly cleared) court selection before surfacing.
		if saveErr := h.saveSession(ctx, session); saveErr != nil {
			h.Logger.Warn("failed to persist session after confirm failure", zap.Error(saveErr))
		}
		if upstream.IsConflict(err) {
			utils.JSONError(c, http.StatusConflict, "selected court is no longer available", utils.ErrorMessage(err))
			return
		}
		utils.JSONError(c, http.StatusBadGateway, "failed to confirm booking", utils.ErrorMessage(err))
		return
	}

	h.Cache.Del(ctx, sessionKey(sessionID))
	if h.WatchPayment != nil && resp.BookingCode != "" {
		h.WatchPayment(resp.BookingCode)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) quoteFor(ctx context.Context, session *models.BookingSession, view selection.View, authenticated bool) models.PriceQuote {
	var promo *models.Promotion
	if session.PromotionCode != "" && h.Promotions != nil {
		found, err := h.Promotions.FindPromotion(ctx, h.ShopCode, session.PromotionCode)
		if err != nil {
			h.Logger.Warn("promotion lookup failed", zap.String("code", session.PromotionCode), zap.Error(err))
		} else {
			promo = found
		}
	}
	return selection.ComputeQuote(selection.QuoteInput{
		Hours:         view.TotalHours,
		HourlyRate:    session.HourlyPrice,
		PromotionCode: session.PromotionCode,
		Promotion:     promo,
		Authenticated: authenticated,
	})
}

func sessionKey(sessionID string) string {
	return "booking:session:" + sessionID
}

func (h *BookingHandler) loadSession(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	data, err := h.Cache.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	var session models.BookingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (h *BookingHandler) saveSession(ctx context.Context, session *models.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return h.Cache.Set(ctx, sessionKey(session.SessionID), data, sessionTTL).Err()
}
