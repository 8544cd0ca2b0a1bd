package dto

import "time"

type CreateReportRequest struct {
	ReportedUserID int64  `json:"reportedUserId"`
	Reason         string `json:"reason"`
}

type ReportResponse struct {
	ID             int64     `json:"id"`
	ReporterID     int64     `json:"reporterId"`
	ReportedUserID int64     `json:"reportedUserId"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ReportsResponse struct {
	Reports []ReportResponse `json:"reports"`
}

type ReportDecisionResponse struct {
	OK bool `json:"ok"`
}
