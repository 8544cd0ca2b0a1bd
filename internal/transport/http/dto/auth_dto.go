package dto

import "encoding/json"

// RegisterRequest accepts preferred_culture as either a JSON array, a
// single string, or a JSON array packed into a string; the handler
// normalizes all three forms.
type RegisterRequest struct {
	Email            string          `json:"email"`
	Password         string          `json:"password"`
	FullName         string          `json:"fullName"`
	Gender           string          `json:"gender"`
	Culture          string          `json:"culture"`
	InterestedIn     string          `json:"interestedIn"`
	PreferredCulture json.RawMessage `json:"preferredCulture"`
	MinPreferredAge  int             `json:"minPreferredAge"`
	MaxPreferredAge  int             `json:"maxPreferredAge"`
	DateOfBirth      string          `json:"dateOfBirth"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthMeResponse struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

type AuthTokensResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresInSec int64          `json:"expiresInSec"`
	Me           AuthMeResponse `json:"me"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
