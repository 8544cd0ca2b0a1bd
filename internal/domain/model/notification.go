package model

import (
	"time"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/enums"
)

type Notification struct {
	ID        int64                  `json:"id"`
	UserID    int64                  `json:"user_id"`
	Type      enums.NotificationType `json:"type"`
	Message   string                 `json:"message"`
	IsRead    bool                   `json:"is_read"`
	CreatedAt time.Time              `json:"created_at"`
}
