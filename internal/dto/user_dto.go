package dto

// SyncUserRequest carries the identity-provider profile for the first-login
// upsert. The token identifier itself comes from the verified JWT, never the
// body.
type SyncUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type UsageResponse struct {
	PunchItemsCreatedThisMonth int `json:"punch_items_created_this_month"`
	PunchItemLimit             int `json:"punch_item_limit"`
}
