package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/promopay/promopay/internal/domain/errors"
	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/usecase"
)

// MarketFacade aggregates the application operations exposed to transport and
// the reconciler.
type MarketFacade struct {
	auth   *usecase.AuthUseCase
	orders *usecase.OrderUseCase
}

// NewMarketFacade constructs MarketFacade.
func NewMarketFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase) *MarketFacade {
	return &MarketFacade{auth: auth, orders: orders}
}

func (f *MarketFacade) Register(ctx context.Context, login, password string, role model.Role) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, role)
	return token, err
}

func (f *MarketFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *MarketFacade) ParseToken(token string) (model.Actor, error) {
	return f.auth.ParseToken(token)
}

func (f *MarketFacade) CreateOrder(ctx context.Context, in usecase.CreateInput) (*model.Order, error) {
	return f.orders.Create(ctx, in)
}

func (f *MarketFacade) Order(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	return f.orders.Get(ctx, id, actor)
}

func (f *MarketFacade) Orders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	return f.orders.ListByParty(ctx, actor)
}

// Act applies a party-initiated lifecycle action to an order.
func (f *MarketFacade) Act(ctx context.Context, orderID uuid.UUID, action model.Action, actor model.Actor, note string) (*model.Order, error) {
	return f.orders.Transition(ctx, orderID, action, actor, note)
}

func (f *MarketFacade) ContestedOrders(ctx context.Context) ([]model.Order, error) {
	return f.orders.ListContested(ctx)
}

func (f *MarketFacade) PendingContestations(ctx context.Context) ([]model.Contestation, error) {
	return f.orders.PendingContestations(ctx)
}

// Arbitrate forces a contested order to a terminal state with a recorded
// rationale. An order resolved through another path is rejected.
func (f *MarketFacade) Arbitrate(ctx context.Context, orderID uuid.UUID, favorInfluencer bool, admin model.Actor, decision string) (*model.Order, error) {
	decision = strings.TrimSpace(decision)
	if decision == "" {
		return nil, domainErrors.ErrEvidenceRequired
	}
	action := model.ActionArbitrateMerchant
	if favorInfluencer {
		action = model.ActionArbitrateInfluencer
	}
	return f.orders.Transition(ctx, orderID, action, admin, decision)
}

func (f *MarketFacade) DueAcceptance(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.DueAcceptance(ctx, limit)
}

func (f *MarketFacade) DueConfirmation(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.DueConfirmation(ctx, limit)
}

// ForceTimeout applies a timeout transition as the system actor.
func (f *MarketFacade) ForceTimeout(ctx context.Context, orderID uuid.UUID, action model.Action) error {
	_, err := f.orders.Transition(ctx, orderID, action, model.SystemActor, "")
	return err
}

func (f *MarketFacade) HandleProviderEvent(ctx context.Context, eventID, kind, authorizationID string) error {
	return f.orders.HandleProviderEvent(ctx, eventID, kind, authorizationID)
}
