package models

// Notification mirrors the upstream notification entry. IsRead uses the
// upstream's "Y"/"N" convention.
type Notification struct {
	NotificationID int    `json:"notification_id"`
	Type           string `json:"type,omitempty"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	IsRead         string `json:"IsRead"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// NotificationList is the polled notification page plus the unread counter.
type NotificationList struct {
	Data        []Notification `json:"data"`
	UnreadCount int            `json:"unread_count"`
}
