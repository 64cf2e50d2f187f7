package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thuere/services/availability"
	"thuere/utils"
)

// AvailabilityHandler serves reconciled field availability.
type AvailabilityHandler struct {
	Service availability.Service
}

func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc}
}

// GetFieldAvailability returns the aggregated time groups for a field on a
// date, with synthesized court coverage and full-booked flags.
func (h *AvailabilityHandler) GetFieldAvailability(c *gin.Context) {
	fieldCode := c.Param("fieldCode")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "date query parameter is required")
		return
	}

	result, err := h.Service.GetTimeGroups(c.Request.Context(), fieldCode, date)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to fetch availability", utils.ErrorMessage(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFieldQuantities returns the authoritative court roster for a field.
func (h *AvailabilityHandler) GetFieldQuantities(c *gin.Context) {
	fieldCode := c.Param("fieldCode")

	quantities, err := h.Service.GetQuantities(c.Request.Context(), fieldCode)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to fetch court roster", utils.ErrorMessage(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"quantities": quantities})
}
