package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promopay/promopay/internal/domain/model"
)

// OrderRepository describes persistence operations with escrow orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByAuthorizationID(ctx context.Context, authorizationID string) (*model.Order, error)
	ListByParty(ctx context.Context, userID int64, role model.Role) ([]model.Order, error)
	ListContested(ctx context.Context) ([]model.Order, error)

	// ListDueAcceptance returns orders still PENDING or ACCEPTED whose
	// acceptance deadline passed before the cutoff, oldest first.
	ListDueAcceptance(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)
	// ListDueConfirmation returns DELIVERED orders whose confirmation deadline
	// passed before the cutoff, oldest first. Contested orders never match.
	ListDueConfirmation(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)

	// UpdateGuarded commits a transition: it conditionally writes the order's
	// mutable fields guarded by the previous status and version, upserts the
	// contestation record when given, and runs effect (the provider call)
	// inside the same transaction boundary. If effect fails nothing is
	// committed; if the guard matches no row, ErrStaleOrder is returned and no
	// effect is attempted.
	UpdateGuarded(ctx context.Context, order *model.Order, prevStatus model.OrderStatus, prevVersion int64, contestation *model.Contestation, effect func(context.Context) error) error
}
