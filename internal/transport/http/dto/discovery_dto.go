package dto

type CandidateResponse struct {
	ID               int64    `json:"id"`
	FullName         string   `json:"fullName"`
	Gender           string   `json:"gender"`
	Culture          string   `json:"culture,omitempty"`
	InterestedIn     string   `json:"interestedIn"`
	PreferredCulture []string `json:"preferredCulture,omitempty"`
	Age              int      `json:"age,omitempty"`
	Photos           []string `json:"photos"`
}

type DiscoveryResponse struct {
	Users []CandidateResponse `json:"users"`
}
