package dto

// ProviderEventRequest mirrors the payment provider's webhook payload.
type ProviderEventRequest struct {
	ID              string `json:"id" binding:"required"`
	Type            string `json:"type" binding:"required"`
	AuthorizationID string `json:"authorization_id"`
}
