package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"thuere/models"
	"thuere/utils"
)

// NotificationAPI is the upstream notification view.
type NotificationAPI interface {
	Notifications(ctx context.Context, isRead string, limit, offset int) (*models.NotificationList, error)
}

// NotificationHandler proxies the notification list + unread counter.
type NotificationHandler struct {
	API NotificationAPI
}

func NewNotificationHandler(api NotificationAPI) *NotificationHandler {
	return &NotificationHandler{API: api}
}

// GetNotifications returns a notification page. Query params: is_read
// ("Y"/"N", optional), limit (default 20), offset (default 0).
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	list, err := h.API.Notifications(c.Request.Context(), c.Query("is_read"), limit, offset)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to fetch notifications", utils.ErrorMessage(err))
		return
	}
	c.JSON(http.StatusOK, list)
}
