package model

import (
	"time"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/enums"
)

type Report struct {
	ID             int64              `json:"id"`
	ReporterID     int64              `json:"reporter_id"`
	ReportedUserID int64              `json:"reported_user_id"`
	Reason         string             `json:"reason"`
	Status         enums.ReportStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
