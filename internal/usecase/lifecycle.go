package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/promopay/promopay/internal/domain/errors"
	"github.com/promopay/promopay/internal/domain/model"
)

type sideEffect int

const (
	effectNone sideEffect = iota
	// effectRelease frees the funds hold in full; capture never happens.
	effectRelease
	// effectCapture charges the hold and transfers the net amount to the
	// influencer, retaining the platform fee.
	effectCapture
)

type transitionRule struct {
	from   []model.OrderStatus
	to     model.OrderStatus
	actor  model.Role
	effect sideEffect
	event  string
	notify []model.Role
}

// transitionRules is the authoritative transition table. Every caller (user
// action, admin arbitration, reconciler sweep, provider webhook) goes through
// it; there is no other code path that moves money or writes status.
var transitionRules = map[model.Action]transitionRule{
	model.ActionAccept: {
		from:   []model.OrderStatus{model.OrderStatusPending},
		to:     model.OrderStatusAccepted,
		actor:  model.RoleInfluencer,
		event:  "order.accepted",
		notify: []model.Role{model.RoleMerchant},
	},
	model.ActionRefuse: {
		from:   []model.OrderStatus{model.OrderStatusPending},
		to:     model.OrderStatusRefused,
		actor:  model.RoleInfluencer,
		effect: effectRelease,
		event:  "order.refused",
		notify: []model.Role{model.RoleMerchant},
	},
	model.ActionDeliver: {
		from:   []model.OrderStatus{model.OrderStatusAccepted},
		to:     model.OrderStatusDelivered,
		actor:  model.RoleInfluencer,
		event:  "order.delivered",
		notify: []model.Role{model.RoleMerchant},
	},
	model.ActionConfirm: {
		from:   []model.OrderStatus{model.OrderStatusDelivered},
		to:     model.OrderStatusCompleted,
		actor:  model.RoleMerchant,
		effect: effectCapture,
		event:  "order.completed",
		notify: []model.Role{model.RoleMerchant, model.RoleInfluencer},
	},
	model.ActionContest: {
		from:   []model.OrderStatus{model.OrderStatusDelivered},
		to:     model.OrderStatusContested,
		actor:  model.RoleInfluencer,
		event:  "order.contested",
		notify: []model.Role{model.RoleMerchant, model.RoleAdmin},
	},
	model.ActionArbitrateInfluencer: {
		from:   []model.OrderStatus{model.OrderStatusContested},
		to:     model.OrderStatusCompleted,
		actor:  model.RoleAdmin,
		effect: effectCapture,
		event:  "order.arbitrated",
		notify: []model.Role{model.RoleMerchant, model.RoleInfluencer},
	},
	model.ActionArbitrateMerchant: {
		from:   []model.OrderStatus{model.OrderStatusContested},
		to:     model.OrderStatusCancelled,
		actor:  model.RoleAdmin,
		effect: effectRelease,
		event:  "order.arbitrated",
		notify: []model.Role{model.RoleMerchant, model.RoleInfluencer},
	},
	model.ActionTimeoutCancel: {
		from:   []model.OrderStatus{model.OrderStatusPending, model.OrderStatusAccepted},
		to:     model.OrderStatusAutoCancelled,
		actor:  model.RoleSystem,
		effect: effectRelease,
		event:  "order.auto_cancelled",
		notify: []model.Role{model.RoleMerchant, model.RoleInfluencer},
	},
	model.ActionTimeoutComplete: {
		from:   []model.OrderStatus{model.OrderStatusDelivered},
		to:     model.OrderStatusAutoCompleted,
		actor:  model.RoleSystem,
		effect: effectCapture,
		event:  "order.auto_completed",
		notify: []model.Role{model.RoleMerchant, model.RoleInfluencer},
	},
}

// Transition applies one lifecycle action to an order. It validates the actor
// and the current status, performs the required provider side effect, and
// commits the status advance in one guarded write: status and money state
// change together or not at all. A concurrent transition surfaces as
// ErrStaleOrder and the caller may re-read and retry.
func (u *OrderUseCase) Transition(ctx context.Context, orderID uuid.UUID, action model.Action, actor model.Actor, note string) (*model.Order, error) {
	rule, ok := transitionRules[action]
	if !ok {
		return nil, fmt.Errorf("unknown transition action %q", action)
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := actorGuard(order, rule.actor, actor); err != nil {
		return nil, err
	}

	if !statusAllowed(rule.from, order.Status) {
		if order.Status.Terminal() {
			return nil, domainErrors.ErrAlreadyResolved
		}
		return nil, domainErrors.ErrInvalidState
	}

	note = strings.TrimSpace(note)
	if action == model.ActionContest && note == "" {
		return nil, domainErrors.ErrEvidenceRequired
	}

	now := time.Now()
	if err := deadlineGuard(order, action, now, u.policy); err != nil {
		return nil, err
	}

	prevStatus, prevVersion := order.Status, order.Version
	updated := *order
	updated.Status = rule.to

	switch action {
	case model.ActionAccept:
		updated.AcceptedAt = &now
	case model.ActionDeliver:
		updated.DeliveredAt = &now
	case model.ActionContest:
		updated.ContestedAt = &now
		updated.Evidence = note
	case model.ActionArbitrateInfluencer, model.ActionArbitrateMerchant:
		updated.AdminDecision = note
		updated.AdminDecisionBy = actor.UserID
		updated.AdminDecisionAt = &now
	}

	if rule.effect == effectCapture {
		if order.PaymentCaptured {
			return nil, domainErrors.ErrAlreadyResolved
		}
		updated.PaymentCaptured = true
		updated.CompletedAt = &now
	}

	contestation, err := u.contestationFor(ctx, order, action, actor, note, now)
	if err != nil {
		return nil, err
	}

	var effect func(context.Context) error
	switch rule.effect {
	case effectRelease:
		effect = func(ctx context.Context) error {
			return u.gateway.Release(ctx, order.AuthorizationID)
		}
	case effectCapture:
		effect = func(ctx context.Context) error {
			if err := u.gateway.Capture(ctx, order.AuthorizationID); err != nil {
				return fmt.Errorf("capture: %w", err)
			}
			destination := payoutDestination(order.InfluencerID)
			if _, err := u.gateway.Transfer(ctx, destination, order.NetAmount, order.AuthorizationID); err != nil {
				return fmt.Errorf("transfer: %w", err)
			}
			return nil
		}
	}

	if err := u.orders.UpdateGuarded(ctx, &updated, prevStatus, prevVersion, contestation, effect); err != nil {
		return nil, err
	}

	u.metrics.Transitions.WithLabelValues(string(action)).Inc()
	u.emit(ctx, rule.event, order.ID, rule.notify)
	return &updated, nil
}

// contestationFor builds the dispute record change committed alongside the
// order write, keeping the two consistent in one transaction.
func (u *OrderUseCase) contestationFor(ctx context.Context, order *model.Order, action model.Action, actor model.Actor, note string, now time.Time) (*model.Contestation, error) {
	switch action {
	case model.ActionContest:
		return &model.Contestation{
			ID:       uuid.New(),
			OrderID:  order.ID,
			Status:   model.ContestationStatusPending,
			Evidence: note,
		}, nil
	case model.ActionArbitrateInfluencer, model.ActionArbitrateMerchant:
		resolved := model.ContestationStatusUpheld
		if action == model.ActionArbitrateMerchant {
			resolved = model.ContestationStatusRejected
		}
		existing, err := u.contests.GetByOrder(ctx, order.ID)
		if err != nil {
			if !IsNotFound(err) {
				return nil, err
			}
			existing = &model.Contestation{ID: uuid.New(), OrderID: order.ID, Evidence: order.Evidence}
		}
		existing.Status = resolved
		existing.Resolution = note
		existing.ResolvedBy = actor.UserID
		existing.ResolvedAt = &now
		return existing, nil
	default:
		return nil, nil
	}
}

func actorGuard(order *model.Order, required model.Role, actor model.Actor) error {
	switch required {
	case model.RoleInfluencer:
		if actor.Role == model.RoleInfluencer && actor.UserID == order.InfluencerID {
			return nil
		}
	case model.RoleMerchant:
		if actor.Role == model.RoleMerchant && actor.UserID == order.MerchantID {
			return nil
		}
	case model.RoleAdmin:
		if actor.Role == model.RoleAdmin {
			return nil
		}
	case model.RoleSystem:
		if actor.Role == model.RoleSystem {
			return nil
		}
	}
	return domainErrors.ErrNotYourOrder
}

func statusAllowed(from []model.OrderStatus, current model.OrderStatus) bool {
	for _, s := range from {
		if s == current {
			return true
		}
	}
	return false
}

// deadlineGuard keeps timeout transitions from firing before their window
// elapsed, regardless of which caller requested them.
func deadlineGuard(order *model.Order, action model.Action, now time.Time, policy Policy) error {
	switch action {
	case model.ActionTimeoutCancel:
		if now.Before(order.CreatedAt.Add(policy.AcceptanceWindow)) {
			return domainErrors.ErrDeadlineNotReached
		}
	case model.ActionTimeoutComplete:
		if order.DeliveredAt == nil || now.Before(order.DeliveredAt.Add(policy.ConfirmationWindow)) {
			return domainErrors.ErrDeadlineNotReached
		}
	}
	return nil
}

// payoutDestination maps an influencer to the payout account registered for
// them at the provider during onboarding.
func payoutDestination(influencerID int64) string {
	return "acct:" + strconv.FormatInt(influencerID, 10)
}

// IsNotFound reports whether the error is the domain not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, domainErrors.ErrNotFound)
}
