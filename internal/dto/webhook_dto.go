package dto

// PolarWebhookEvent is the subscription lifecycle event Polar delivers.
type PolarWebhookEvent struct {
	Type string            `json:"type"`
	Data PolarSubscription `json:"data"`
}

type PolarSubscription struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"product_id"`
	CustomerID string            `json:"customer_id"`
	Status     string            `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
