package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"thuere/utils"
)

// PaymentStatusAPI is the upstream payment-status view.
type PaymentStatusAPI interface {
	CheckPaymentStatus(ctx context.Context, bookingCode string) (string, error)
}

// PaymentHandler serves one-shot payment status checks; continuous
// tracking is done by the background payment poller.
type PaymentHandler struct {
	API PaymentStatusAPI
}

func NewPaymentHandler(api PaymentStatusAPI) *PaymentHandler {
	return &PaymentHandler{API: api}
}

// GetPaymentStatus proxies the current payment status for a booking code.
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	bookingCode := c.Param("bookingCode")

	status, err := h.API.CheckPaymentStatus(c.Request.Context(), bookingCode)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to check payment status", utils.ErrorMessage(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
