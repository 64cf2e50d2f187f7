package models

import "time"

// BookingSession is the redis-cached state of one in-progress booking.
type BookingSession struct {
	SessionID          string    `json:"sessionId"`
	FieldCode          string    `json:"fieldCode"`
	PlayDate           string    `json:"playDate"`
	HourlyPrice        float64   `json:"hourlyPrice"`
	SelectedSlotIDs    []int     `json:"selectedSlotIds"`
	SelectedQuantityID *int      `json:"selectedQuantityId,omitempty"`
	PromotionCode      string    `json:"promotionCode,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}
