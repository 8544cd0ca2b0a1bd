package dto

import "time"

type MatchItemResponse struct {
	MatchID   int64     `json:"matchId"`
	UserID    int64     `json:"userId"`
	FullName  string    `json:"fullName"`
	Photos    []string  `json:"photos"`
	MatchedAt time.Time `json:"matchedAt"`
}

type MatchesResponse struct {
	Matches []MatchItemResponse `json:"matches"`
}
