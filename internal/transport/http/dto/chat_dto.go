package dto

import "time"

type SendMessageRequest struct {
	MatchID int64  `json:"matchId"`
	Message string `json:"message"`
}

type ChatMessageResponse struct {
	ID           int64     `json:"id"`
	MatchID      int64     `json:"matchId"`
	FromUserID   int64     `json:"fromUserId"`
	ToUserID     int64     `json:"toUserId"`
	FromUserName string    `json:"fromUserName"`
	ToUserName   string    `json:"toUserName"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
}
