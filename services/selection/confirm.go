package selection

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"thuere/models"
	"thuere/upstream"
)

// BookingAPI submits a booking to the upstream.
type BookingAPI interface {
	ConfirmFieldBooking(ctx context.Context, fieldCode string, req models.BookingConfirmationRequest) (*models.BookingConfirmationResponse, error)
}

// Refetcher re-fetches slot data for a field/date, used to pick up stale
// availability after a conflict.
type Refetcher interface {
	Refresh(ctx context.Context, fieldCode, date string) error
}

// Confirmer finalizes a booking session against the upstream and runs the
// conflict recovery flow when a selected court was taken in the meantime.
type Confirmer struct {
	API     BookingAPI
	Refetch Refetcher
	Logger  *zap.Logger
}

// Confirm validates the request, submits it and, on a conflict-style
// rejection, clears the session's court selection and issues exactly one
// slot re-fetch for the session's date before surfacing the error.
func (c *Confirmer) Confirm(ctx context.Context, session *models.BookingSession, req models.BookingConfirmationRequest) (*models.BookingConfirmationResponse, error) {
	if len(req.Slots) == 0 {
		return nil, fmt.Errorf("no slots selected")
	}
	if req.PaymentMethod == "" {
		return nil, fmt.Errorf("payment method is required")
	}
	if req.CustomerName == "" || req.CustomerPhone == "" {
		return nil, fmt.Errorf("customer name and phone are required")
	}

	resp, err := c.API.ConfirmFieldBooking(ctx, session.FieldCode, req)
	if err != nil {
		if upstream.IsConflict(err) {
			c.Logger.Warn("booking conflict, clearing court selection",
				zap.String("fieldCode", session.FieldCode),
				zap.String("playDate", session.PlayDate),
				zap.Error(err))
			session.SelectedQuantityID = nil
			if c.Refetch != nil {
				if refetchErr := c.Refetch.Refresh(ctx, session.FieldCode, session.PlayDate); refetchErr != nil {
					c.Logger.Warn("post-conflict slot refetch failed", zap.Error(refetchErr))
				}
			}
		}
		return nil, err
	}
	return resp, nil
}
