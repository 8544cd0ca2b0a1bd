package dto

type SwipeRequest struct {
	ToUserID int64  `json:"toUserId"`
	Status   string `json:"status"`
}

type SwipeResponse struct {
	SwipeID int64  `json:"swipeId"`
	Status  string `json:"status"`
	IsMatch bool   `json:"isMatch"`
	MatchID int64  `json:"matchId,omitempty"`
}
