package models

// Promotion is a read-only shop promotion; client-side application is a
// preview only, the upstream re-validates at booking confirmation.
type Promotion struct {
	PromotionCode     string   `json:"promotion_code"`
	DiscountType      string   `json:"discount_type"` // "percent" or "fixed"
	DiscountValue     float64  `json:"discount_value"`
	MinOrderAmount    float64  `json:"min_order_amount"`
	MaxDiscountAmount *float64 `json:"max_discount_amount"`
}

// PriceQuote is the computed price preview for a selection.
type PriceQuote struct {
	Before        float64 `json:"before"`
	Discount      float64 `json:"discount"`
	Final         float64 `json:"final"`
	Feedback      string  `json:"feedback,omitempty"`
	FeedbackClass string  `json:"feedbackClass,omitempty"`
}
