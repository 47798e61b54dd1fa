package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/promopay/promopay/internal/adapter/notify"
	"github.com/promopay/promopay/internal/adapter/payment"
	domainErrors "github.com/promopay/promopay/internal/domain/errors"
	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/domain/repository"
	"github.com/promopay/promopay/internal/metrics"
)

// Policy carries the marketplace rules fixed at deployment.
type Policy struct {
	CommissionRate     decimal.Decimal
	AcceptanceWindow   time.Duration
	ConfirmationWindow time.Duration
}

// OrderUseCase encapsulates the order escrow lifecycle.
type OrderUseCase struct {
	orders   repository.OrderRepository
	contests repository.ContestationRepository
	users    repository.UserRepository
	recorder repository.ProviderEventRecorder
	gateway  payment.Gateway
	emitter  notify.Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	policy   Policy
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	contests repository.ContestationRepository,
	users repository.UserRepository,
	recorder repository.ProviderEventRecorder,
	gateway payment.Gateway,
	emitter notify.Emitter,
	m *metrics.Metrics,
	logger *slog.Logger,
	policy Policy,
) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		contests: contests,
		users:    users,
		recorder: recorder,
		gateway:  gateway,
		emitter:  emitter,
		metrics:  m,
		logger:   logger,
		policy:   policy,
	}
}

// CreateInput describes an order placement request.
type CreateInput struct {
	MerchantID   int64
	InfluencerID int64
	Title        string
	Description  string
	DeliveryDays int
	Amount       decimal.Decimal
	Payer        string
}

// Create authorizes a funds hold for the full amount and persists the order in
// PENDING. The commission split is fixed here and never mutated afterwards. A
// failed authorization leaves nothing persisted; a failed persist releases the
// fresh hold so no order ever exists in a chargeable state without a record.
func (u *OrderUseCase) Create(ctx context.Context, in CreateInput) (*model.Order, error) {
	if !in.Amount.IsPositive() {
		return nil, domainErrors.ErrInvalidAmount
	}
	if in.Title == "" || in.DeliveryDays <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}

	influencer, err := u.users.GetByID(ctx, in.InfluencerID)
	if err != nil {
		return nil, err
	}
	if influencer.Role != model.RoleInfluencer {
		return nil, domainErrors.ErrInvalidRole
	}
	if in.MerchantID == in.InfluencerID {
		return nil, domainErrors.ErrInvalidRole
	}

	amount := in.Amount.RoundBank(2)
	id := uuid.New()
	authID, err := u.gateway.Authorize(ctx, amount, in.Payer, map[string]string{"order_id": id.String()})
	if err != nil {
		return nil, fmt.Errorf("authorize hold: %w", err)
	}

	order := &model.Order{
		ID:              id,
		MerchantID:      in.MerchantID,
		InfluencerID:    in.InfluencerID,
		Title:           in.Title,
		Description:     in.Description,
		DeliveryDays:    in.DeliveryDays,
		TotalAmount:     amount,
		CommissionRate:  u.policy.CommissionRate,
		NetAmount:       model.SplitAmount(amount, u.policy.CommissionRate),
		AuthorizationID: authID,
		Status:          model.OrderStatusPending,
	}

	if err := u.orders.Create(ctx, order); err != nil {
		if relErr := u.gateway.Release(ctx, authID); relErr != nil {
			u.logger.Error("release hold after failed persist",
				slog.String("authorization", authID),
				slog.String("error", relErr.Error()),
			)
		}
		return nil, err
	}

	u.emit(ctx, "order.created", order.ID, []model.Role{model.RoleInfluencer})
	return order, nil
}

// Get returns the order when the actor is a party to it. Admins see all orders.
func (u *OrderUseCase) Get(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := partyGuard(order, actor); err != nil {
		return nil, err
	}
	return order, nil
}

func partyGuard(order *model.Order, actor model.Actor) error {
	switch actor.Role {
	case model.RoleAdmin, model.RoleSystem:
		return nil
	case model.RoleMerchant:
		if order.MerchantID == actor.UserID {
			return nil
		}
	case model.RoleInfluencer:
		if order.InfluencerID == actor.UserID {
			return nil
		}
	}
	return domainErrors.ErrNotYourOrder
}

// ListByParty returns the actor's orders sorted by creation time.
func (u *OrderUseCase) ListByParty(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	return u.orders.ListByParty(ctx, actor.UserID, actor.Role)
}

// ListContested returns orders awaiting arbitration.
func (u *OrderUseCase) ListContested(ctx context.Context) ([]model.Order, error) {
	return u.orders.ListContested(ctx)
}

// PendingContestations returns unresolved dispute records.
func (u *OrderUseCase) PendingContestations(ctx context.Context) ([]model.Contestation, error) {
	return u.contests.ListPending(ctx)
}

// DueAcceptance returns orders whose acceptance deadline has passed.
func (u *OrderUseCase) DueAcceptance(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ListDueAcceptance(ctx, time.Now().Add(-u.policy.AcceptanceWindow), limit)
}

// DueConfirmation returns delivered orders whose confirmation deadline has passed.
func (u *OrderUseCase) DueConfirmation(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ListDueConfirmation(ctx, time.Now().Add(-u.policy.ConfirmationWindow), limit)
}

// HandleProviderEvent processes a payment-provider webhook delivery. State
// changes go through the same transition function as every other caller. The
// event id is written to the dedup ledger only after the event's effect is
// applied: a transient failure leaves the delivery unconsumed, so the
// provider's retry of the same event id gets a fresh attempt, and a replay of
// an already-applied event is harmless because the guarded transition no-ops
// on a terminal order.
func (u *OrderUseCase) HandleProviderEvent(ctx context.Context, eventID, kind, authorizationID string) error {
	orderID := uuid.Nil

	switch kind {
	case "authorization.expired":
		order, err := u.orders.GetByAuthorizationID(ctx, authorizationID)
		if err != nil {
			return err
		}
		orderID = order.ID
		if !order.Status.Terminal() {
			if _, err := u.Transition(ctx, order.ID, model.ActionTimeoutCancel, model.SystemActor, ""); err != nil {
				// The hold lapsed before a terminal transition was forced. No
				// automatic compensating action is taken; flag for an operator.
				u.logger.Error("expired authorization requires manual reconciliation",
					slog.String("order", order.ID.String()),
					slog.String("authorization", authorizationID),
					slog.String("error", err.Error()),
				)
			}
		}
	case "capture.succeeded", "release.succeeded", "transfer.succeeded":
		// Acknowledgements of actions this service issued; state is already
		// committed by the transition that triggered them.
	default:
		u.logger.Warn("unknown provider event kind", slog.String("kind", kind), slog.String("event", eventID))
	}

	_, err := u.recorder.RecordProviderEvent(ctx, eventID, kind, orderID)
	return err
}

func (u *OrderUseCase) emit(ctx context.Context, name string, orderID uuid.UUID, roles []model.Role) {
	if err := u.emitter.Emit(ctx, model.Event{Name: name, OrderID: orderID, Notify: roles}); err != nil {
		u.logger.Error("emit lifecycle event",
			slog.String("event", name),
			slog.String("order", orderID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// IsRetryableConflict reports whether the error is a concurrency conflict the
// caller may resolve by re-reading and retrying the same request.
func IsRetryableConflict(err error) bool {
	return errors.Is(err, domainErrors.ErrStaleOrder)
}
