package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"thuere/models"
)

type availabilityResponse struct {
	Slots []models.RawSlot `json:"slots"`
}

// FieldAvailability returns all slots (aggregate + per-court) for a field
// on a date.
func (c *Client) FieldAvailability(ctx context.Context, fieldCode, date string) ([]models.RawSlot, error) {
	query := url.Values{"date": {date}}
	var resp availabilityResponse
	if err := c.do(ctx, http.MethodGet, "/fields/"+url.PathEscape(fieldCode)+"/availability", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch availability for field %s: %w", fieldCode, err)
	}
	return resp.Slots, nil
}

type quantitiesResponse struct {
	Quantities []models.FieldQuantity `json:"quantities"`
}

// FieldQuantities returns the authoritative court roster for a field.
func (c *Client) FieldQuantities(ctx context.Context, fieldCode string) ([]models.FieldQuantity, error) {
	var resp quantitiesResponse
	if err := c.do(ctx, http.MethodGet, "/fields/"+url.PathEscape(fieldCode)+"/quantities", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch quantities for field %s: %w", fieldCode, err)
	}
	return resp.Quantities, nil
}

// AvailableQuantities returns per-window court availability, used for
// multi-window court resolution.
func (c *Client) AvailableQuantities(ctx context.Context, fieldCode, date, startTime, endTime string) (*models.WindowQuantities, error) {
	query := url.Values{
		"date":       {date},
		"start_time": {startTime},
		"end_time":   {endTime},
	}
	var resp models.WindowQuantities
	if err := c.do(ctx, http.MethodGet, "/fields/"+url.PathEscape(fieldCode)+"/available-quantities", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch window availability for field %s: %w", fieldCode, err)
	}
	return &resp, nil
}

// ActiveShopPromotions returns the shop's currently active promotions.
func (c *Client) ActiveShopPromotions(ctx context.Context, shopCode string) ([]models.Promotion, error) {
	var resp []models.Promotion
	if err := c.do(ctx, http.MethodGet, "/shops/"+url.PathEscape(shopCode)+"/promotions", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch promotions for shop %s: %w", shopCode, err)
	}
	return resp, nil
}

// ConfirmFieldBooking submits the booking. A conflict-style error is
// returned when a selected court/slot is no longer free.
func (c *Client) ConfirmFieldBooking(ctx context.Context, fieldCode string, req models.BookingConfirmationRequest) (*models.BookingConfirmationResponse, error) {
	var resp models.BookingConfirmationResponse
	if err := c.do(ctx, http.MethodPost, "/fields/"+url.PathEscape(fieldCode)+"/bookings", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type paymentStatusResponse struct {
	Status string `json:"status"`
}

// CheckPaymentStatus returns the current payment status for a booking code.
func (c *Client) CheckPaymentStatus(ctx context.Context, bookingCode string) (string, error) {
	var resp paymentStatusResponse
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(bookingCode)+"/status", nil, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to check payment status for %s: %w", bookingCode, err)
	}
	return resp.Status, nil
}

// Notifications returns a notification page plus the unread counter.
// isRead filters by the upstream's "Y"/"N" convention; empty means all.
func (c *Client) Notifications(ctx context.Context, isRead string, limit, offset int) (*models.NotificationList, error) {
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	if isRead != "" {
		query.Set("is_read", isRead)
	}
	var resp models.NotificationList
	if err := c.do(ctx, http.MethodGet, "/notifications", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return &resp, nil
}
