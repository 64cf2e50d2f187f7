package models

// SelectedSlot is one slot inside a booking confirmation payload, with the
// chosen court resolved.
type SelectedSlot struct {
	SlotID         int    `json:"slot_id"`
	PlayDate       string `json:"play_date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	QuantityID     *int   `json:"quantity_id,omitempty"`
	QuantityNumber *int   `json:"quantity_number,omitempty"`
}

// BookingConfirmationRequest is the payload sent to the upstream
// confirmation endpoint.
type BookingConfirmationRequest struct {
	Slots         []SelectedSlot `json:"slots"`
	PaymentMethod string         `json:"payment_method"`
	TotalAmount   float64        `json:"total_amount"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	CustomerEmail string         `json:"customer_email,omitempty"`
	PromotionCode string         `json:"promotion_code,omitempty"`
}

// BookingConfirmationResponse is the upstream's confirmation result.
type BookingConfirmationResponse struct {
	BookingCode   string  `json:"booking_code"`
	TransactionID string  `json:"transaction_id"`
	QRCode        string  `json:"qr_code,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
}
