package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string, role model.Role) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (model.Actor, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, in usecase.CreateInput) (*model.Order, error)
	Order(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error)
	Orders(ctx context.Context, actor model.Actor) ([]model.Order, error)
	Act(ctx context.Context, orderID uuid.UUID, action model.Action, actor model.Actor, note string) (*model.Order, error)
}

// AdminFacade provides the arbitration surface.
type AdminFacade interface {
	ContestedOrders(ctx context.Context) ([]model.Order, error)
	Arbitrate(ctx context.Context, orderID uuid.UUID, favorInfluencer bool, admin model.Actor, decision string) (*model.Order, error)
}

// WebhookFacade ingests payment provider callbacks.
type WebhookFacade interface {
	HandleProviderEvent(ctx context.Context, eventID, kind, authorizationID string) error
}

// MarketFacade aggregates the full set of operations used across handlers.
type MarketFacade interface {
	AuthFacade
	OrderFacade
	AdminFacade
	WebhookFacade
}
