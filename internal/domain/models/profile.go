package models

// Profile is the static sidebar data of the wall owner.
type Profile struct {
	Name      string `json:"name"`
	Caption   string `json:"caption"`
	AvatarUrl string `json:"avatar_url,omitempty"`
	Networks  string `json:"networks,omitempty"`
	City      string `json:"city,omitempty"`
}
