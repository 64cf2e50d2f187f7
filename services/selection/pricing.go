package selection

import (
	"fmt"
	"math"

	"thuere/models"
)

// QuoteInput carries everything the price computation depends on, so the
// computation itself stays pure and idempotent.
type QuoteInput struct {
	Hours         float64
	HourlyRate    float64
	PromotionCode string
	Promotion     *models.Promotion
	Authenticated bool
}

// ComputeQuote prices a selection and previews the promotion discount.
// The discount is clamped to the promotion's max cap (percent type only),
// then to [0, before], and rounded to 2 decimals; the final price never
// goes negative.
func ComputeQuote(in QuoteInput) models.PriceQuote {
	quote := models.PriceQuote{Before: in.Hours * in.HourlyRate}
	quote.Final = quote.Before

	if in.PromotionCode == "" {
		return quote
	}
	if !in.Authenticated {
		quote.Feedback = "Sign in to apply promotion codes"
		quote.FeedbackClass = "warning"
		return quote
	}
	if in.Promotion == nil {
		quote.Feedback = fmt.Sprintf("Promotion code %q is not active", in.PromotionCode)
		quote.FeedbackClass = "error"
		return quote
	}

	promo := in.Promotion
	if promo.MinOrderAmount > quote.Before {
		quote.Feedback = fmt.Sprintf("Order must be at least %.0f to use %s", promo.MinOrderAmount, promo.PromotionCode)
		quote.FeedbackClass = "error"
		return quote
	}

	var discount float64
	switch promo.DiscountType {
	case "percent":
		discount = quote.Before * promo.DiscountValue / 100
		if promo.MaxDiscountAmount != nil && *promo.MaxDiscountAmount >= 0 && discount > *promo.MaxDiscountAmount {
			discount = *promo.MaxDiscountAmount
		}
	default: // "fixed"
		discount = promo.DiscountValue
	}

	if discount < 0 {
		discount = 0
	}
	if discount > quote.Before {
		discount = quote.Before
	}
	discount = math.Round(discount*100) / 100

	quote.Discount = discount
	quote.Final = quote.Before - discount
	if quote.Final < 0 {
		quote.Final = 0
	}
	quote.Feedback = fmt.Sprintf("Promotion %s applied: -%.2f", promo.PromotionCode, discount)
	quote.FeedbackClass = "success"
	return quote
}
