package dto

import "time"

type NotificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type MarkReadResponse struct {
	OK bool `json:"ok"`
}
