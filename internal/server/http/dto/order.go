package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest describes an order placement payload. The offer snapshot
// fields are copied onto the order so later catalog edits don't change terms.
type CreateOrderRequest struct {
	InfluencerID int64           `json:"influencer_id" binding:"required"`
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	DeliveryDays int             `json:"delivery_days" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Payer        string          `json:"payer"`
}

// ActionRequest carries the optional note of a lifecycle action. Contest
// requires it as evidence.
type ActionRequest struct {
	Note string `json:"note"`
}

// OrderResponse represents an order towards its parties.
type OrderResponse struct {
	ID              string          `json:"id"`
	MerchantID      int64           `json:"merchant_id"`
	InfluencerID    int64           `json:"influencer_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	DeliveryDays    int             `json:"delivery_days"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	AcceptedAt      *time.Time      `json:"accepted_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	ContestedAt     *time.Time      `json:"contested_at,omitempty"`
	Evidence        string          `json:"evidence,omitempty"`
	AdminDecision   string          `json:"admin_decision,omitempty"`
	AdminDecisionAt *time.Time      `json:"admin_decision_at,omitempty"`
}
