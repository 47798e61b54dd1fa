package test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/usecase"
)

// GatewayStub simulates the payment provider and records the money movements.
type GatewayStub struct {
	mu sync.Mutex

	AuthorizeFn func(context.Context, decimal.Decimal, string, map[string]string) (string, error)
	CaptureFn   func(context.Context, string) error
	ReleaseFn   func(context.Context, string) error
	TransferFn  func(context.Context, string, decimal.Decimal, string) (string, error)

	Authorized []string
	Captured   []string
	Released   []string
	Transfers  []TransferCall
}

// TransferCall records one payout request.
type TransferCall struct {
	Destination         string
	Amount              decimal.Decimal
	SourceAuthorization string
}

// Authorize places a funds hold and returns its identifier.
func (s *GatewayStub) Authorize(ctx context.Context, amount decimal.Decimal, payer string, metadata map[string]string) (string, error) {
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(ctx, amount, payer, metadata)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := "auth-" + uuid.NewString()
	s.Authorized = append(s.Authorized, id)
	return id, nil
}

// Capture settles a previously placed hold.
func (s *GatewayStub) Capture(ctx context.Context, authorizationID string) error {
	if s.CaptureFn != nil {
		return s.CaptureFn(ctx, authorizationID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Captured = append(s.Captured, authorizationID)
	return nil
}

// Release voids a previously placed hold.
func (s *GatewayStub) Release(ctx context.Context, authorizationID string) error {
	if s.ReleaseFn != nil {
		return s.ReleaseFn(ctx, authorizationID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Released = append(s.Released, authorizationID)
	return nil
}

// Transfer pays out captured funds and records the call.
func (s *GatewayStub) Transfer(ctx context.Context, destination string, amount decimal.Decimal, sourceAuthorization string) (string, error) {
	if s.TransferFn != nil {
		return s.TransferFn(ctx, destination, amount, sourceAuthorization)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transfers = append(s.Transfers, TransferCall{Destination: destination, Amount: amount, SourceAuthorization: sourceAuthorization})
	return "tr-" + uuid.NewString(), nil
}

// EmitterStub records emitted lifecycle events.
type EmitterStub struct {
	mu     sync.Mutex
	EmitFn func(context.Context, model.Event) error
	Events []model.Event
}

// Emit records the event or delegates to the override.
func (s *EmitterStub) Emit(ctx context.Context, event model.Event) error {
	if s.EmitFn != nil {
		return s.EmitFn(ctx, event)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return nil
}

// Emitted returns a copy of the recorded events.
func (s *EmitterStub) Emitted() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]model.Event, len(s.Events))
	copy(events, s.Events)
	return events
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn func(context.Context, usecase.CreateInput) (*model.Order, error)
	OrderFn  func(context.Context, uuid.UUID, model.Actor) (*model.Order, error)
	OrdersFn func(context.Context, model.Actor) ([]model.Order, error)
	ActFn    func(context.Context, uuid.UUID, model.Action, model.Actor, string) (*model.Order, error)
}

// CreateOrder delegates to the override or returns a pending order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, in usecase.CreateInput) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, in)
	}
	return &model.Order{ID: uuid.New(), MerchantID: in.MerchantID, InfluencerID: in.InfluencerID, Title: in.Title, Status: model.OrderStatusPending}, nil
}

// Order returns the configured order.
func (s OrderFacadeStub) Order(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id, actor)
	}
	return &model.Order{ID: id, Status: model.OrderStatusPending}, nil
}

// Orders returns predefined orders for the actor.
func (s OrderFacadeStub) Orders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, actor)
	}
	return []model.Order{{ID: uuid.New(), Status: model.OrderStatusPending}}, nil
}

// Act delegates to the override or echoes a transitioned order.
func (s OrderFacadeStub) Act(ctx context.Context, orderID uuid.UUID, action model.Action, actor model.Actor, note string) (*model.Order, error) {
	if s.ActFn != nil {
		return s.ActFn(ctx, orderID, action, actor, note)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusAccepted}, nil
}

// AdminFacadeStub simulates the arbitration surface.
type AdminFacadeStub struct {
	ContestedFn func(context.Context) ([]model.Order, error)
	ArbitrateFn func(context.Context, uuid.UUID, bool, model.Actor, string) (*model.Order, error)
}

// ContestedOrders returns the configured list.
func (s AdminFacadeStub) ContestedOrders(ctx context.Context) ([]model.Order, error) {
	if s.ContestedFn != nil {
		return s.ContestedFn(ctx)
	}
	return []model.Order{{ID: uuid.New(), Status: model.OrderStatusContested}}, nil
}

// Arbitrate delegates to the override or returns a completed order.
func (s AdminFacadeStub) Arbitrate(ctx context.Context, orderID uuid.UUID, favorInfluencer bool, admin model.Actor, decision string) (*model.Order, error) {
	if s.ArbitrateFn != nil {
		return s.ArbitrateFn(ctx, orderID, favorInfluencer, admin, decision)
	}
	status := model.OrderStatusCancelled
	if favorInfluencer {
		status = model.OrderStatusCompleted
	}
	return &model.Order{ID: orderID, Status: status}, nil
}

// WebhookFacadeStub records ingested provider events.
type WebhookFacadeStub struct {
	mu       sync.Mutex
	HandleFn func(context.Context, string, string, string) error
	Handled  []ProviderEventCall
}

// ProviderEventCall stores one webhook ingestion.
type ProviderEventCall struct {
	EventID         string
	Kind            string
	AuthorizationID string
}

// HandleProviderEvent records the call or delegates to the override.
func (s *WebhookFacadeStub) HandleProviderEvent(ctx context.Context, eventID, kind, authorizationID string) error {
	if s.HandleFn != nil {
		return s.HandleFn(ctx, eventID, kind, authorizationID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Handled = append(s.Handled, ProviderEventCall{EventID: eventID, Kind: kind, AuthorizationID: authorizationID})
	return nil
}

// MarketFacadeStub aggregates facade dependencies for HTTP layer tests.
type MarketFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	AdminFacadeStub
	*WebhookFacadeStub
}

// NewMarketFacadeStub constructs the aggregate with a webhook recorder.
func NewMarketFacadeStub() *MarketFacadeStub {
	return &MarketFacadeStub{WebhookFacadeStub: &WebhookFacadeStub{}}
}

// EscrowFacadeStub mimics reconciler interactions with the application facade.
type EscrowFacadeStub struct {
	mu sync.Mutex

	Acceptance     [][]model.Order
	Confirmation   [][]model.Order
	AcceptanceFn   func(context.Context, int) ([]model.Order, error)
	ConfirmationFn func(context.Context, int) ([]model.Order, error)
	TimeoutFn      func(context.Context, uuid.UUID, model.Action) error

	Timeouts       []TimeoutCall
	acceptanceCall int
	confirmCall    int
}

// TimeoutCall stores information about ForceTimeout invocations.
type TimeoutCall struct {
	OrderID uuid.UUID
	Action  model.Action
}

// DueAcceptance returns batches from the configured queue.
func (s *EscrowFacadeStub) DueAcceptance(ctx context.Context, limit int) ([]model.Order, error) {
	if s.AcceptanceFn != nil {
		return s.AcceptanceFn(ctx, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acceptanceCall < len(s.Acceptance) {
		batch := s.Acceptance[s.acceptanceCall]
		s.acceptanceCall++
		return batch, nil
	}
	return nil, nil
}

// DueConfirmation returns batches from the configured queue.
func (s *EscrowFacadeStub) DueConfirmation(ctx context.Context, limit int) ([]model.Order, error) {
	if s.ConfirmationFn != nil {
		return s.ConfirmationFn(ctx, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmCall < len(s.Confirmation) {
		batch := s.Confirmation[s.confirmCall]
		s.confirmCall++
		return batch, nil
	}
	return nil, nil
}

// ForceTimeout records timeout requests.
func (s *EscrowFacadeStub) ForceTimeout(ctx context.Context, orderID uuid.UUID, action model.Action) error {
	if s.TimeoutFn != nil {
		return s.TimeoutFn(ctx, orderID, action)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Timeouts = append(s.Timeouts, TimeoutCall{OrderID: orderID, Action: action})
	return nil
}
