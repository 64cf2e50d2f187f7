package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thuere/handlers"
)

// HandlerBundle groups every handler the router needs.
type HandlerBundle struct {
	Availability  *handlers.AvailabilityHandler
	Booking       *handlers.BookingHandler
	Payments      *handlers.PaymentHandler
	Notifications *handlers.NotificationHandler
}

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(r *gin.Engine, h *HandlerBundle) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	fields := r.Group("/api/fields")
	{
		fields.GET("/:fieldCode/availability", h.Availability.GetFieldAvailability)
		fields.GET("/:fieldCode/quantities", h.Availability.GetFieldQuantities)
	}

	booking := r.Group("/api/booking")
	{
		booking.POST("/session", h.Booking.StartBookingSession)
		booking.PUT("/session/:sessionID", h.Booking.UpdateBookingSession)
		booking.POST("/session/:sessionID/confirm", h.Booking.ConfirmBooking)
	}

	r.GET("/api/payments/:bookingCode/status", h.Payments.GetPaymentStatus)
	r.GET("/api/notifications", h.Notifications.GetNotifications)
}
