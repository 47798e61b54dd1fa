package repository

import (
	"context"

	"github.com/google/uuid"
)

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Contestations() ContestationRepository
}

// ProviderEventRecorder deduplicates payment-provider webhook deliveries by
// provider event id.
type ProviderEventRecorder interface {
	// RecordProviderEvent returns true when the event id was seen for the
	// first time; false means the delivery is a duplicate. The order the
	// event resolved to is stored alongside for auditing; uuid.Nil marks an
	// event that did not reference an order.
	RecordProviderEvent(ctx context.Context, eventID, kind string, orderID uuid.UUID) (bool, error)
}
