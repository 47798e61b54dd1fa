package model

import (
	"time"

	"github.com/google/uuid"
)

// ContestationStatus tracks a dispute independently of the order status. The
// two are kept consistent by the transition that resolves either.
type ContestationStatus string

const (
	ContestationStatusPending  ContestationStatus = "PENDING"
	ContestationStatusUpheld   ContestationStatus = "UPHELD"
	ContestationStatusRejected ContestationStatus = "REJECTED"
)

// Contestation is the formal dispute record an influencer raises against a
// merchant-pending confirmation.
type Contestation struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Status     ContestationStatus
	Evidence   string
	Resolution string
	ResolvedBy int64
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
