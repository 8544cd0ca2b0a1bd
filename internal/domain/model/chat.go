package model

import "time"

type ChatMessage struct {
	ID           int64     `json:"id"`
	MatchID      int64     `json:"match_id"`
	FromUserID   int64     `json:"from_user_id"`
	ToUserID     int64     `json:"to_user_id"`
	FromUserName string    `json:"from_user_name"`
	ToUserName   string    `json:"to_user_name"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}
