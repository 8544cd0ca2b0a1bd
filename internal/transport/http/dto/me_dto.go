package dto

import "encoding/json"

type ProfileResponse struct {
	ID               int64    `json:"id"`
	Email            string   `json:"email"`
	FullName         string   `json:"fullName"`
	Gender           string   `json:"gender"`
	Culture          string   `json:"culture,omitempty"`
	InterestedIn     string   `json:"interestedIn"`
	PreferredCulture []string `json:"preferredCulture,omitempty"`
	MinPreferredAge  int      `json:"minPreferredAge,omitempty"`
	MaxPreferredAge  int      `json:"maxPreferredAge,omitempty"`
	DateOfBirth      string   `json:"dateOfBirth,omitempty"`
	Photos           []string `json:"photos"`
}

type UpdatePreferencesRequest struct {
	InterestedIn     string          `json:"interestedIn"`
	PreferredCulture json.RawMessage `json:"preferredCulture"`
	MinPreferredAge  int             `json:"minPreferredAge"`
	MaxPreferredAge  int             `json:"maxPreferredAge"`
}

type PhotoResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type PhotosResponse struct {
	Photos []PhotoResponse `json:"photos"`
}
