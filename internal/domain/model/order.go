package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus describes the escrow lifecycle of a promotion order.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusAccepted      OrderStatus = "ACCEPTED"
	OrderStatusDelivered     OrderStatus = "DELIVERED"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
	OrderStatusRefused       OrderStatus = "REFUSED"
	OrderStatusContested     OrderStatus = "CONTESTED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
	OrderStatusAutoCancelled OrderStatus = "AUTO_CANCELLED"
	OrderStatusAutoCompleted OrderStatus = "AUTO_COMPLETED"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusRefused, OrderStatusCancelled,
		OrderStatusAutoCancelled, OrderStatusAutoCompleted:
		return true
	}
	return false
}

// Captured reports whether the status implies the hold was captured and split.
func (s OrderStatus) Captured() bool {
	return s == OrderStatusCompleted || s == OrderStatusAutoCompleted
}

// Order is one purchase of one offer by a merchant from an influencer.
// Parties and the offer snapshot are immutable after creation; status and the
// money-moving fields are written only by the lifecycle transition function.
type Order struct {
	ID           uuid.UUID
	MerchantID   int64
	InfluencerID int64

	// Offer snapshot copied at creation so later catalog edits don't change terms.
	Title        string
	Description  string
	DeliveryDays int

	TotalAmount    decimal.Decimal
	CommissionRate decimal.Decimal
	NetAmount      decimal.Decimal

	AuthorizationID string
	PaymentCaptured bool

	Status  OrderStatus
	Version int64

	CreatedAt   time.Time
	AcceptedAt  *time.Time
	DeliveredAt *time.Time
	CompletedAt *time.Time
	ContestedAt *time.Time

	Evidence        string
	AdminDecision   string
	AdminDecisionBy int64
	AdminDecisionAt *time.Time
}

// PlatformFee returns the commission retained by the platform, always derived
// as TotalAmount - NetAmount so the split conserves the charged amount.
func (o *Order) PlatformFee() decimal.Decimal {
	return o.TotalAmount.Sub(o.NetAmount)
}

// SplitAmount computes the influencer's net share of total for the given
// commission rate (percent), rounded to the smallest currency unit.
func SplitAmount(total, commissionRate decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return total.Mul(hundred.Sub(commissionRate)).Div(hundred).RoundBank(2)
}
