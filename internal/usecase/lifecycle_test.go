package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/promopay/promopay/internal/domain/errors"
	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/metrics"
)

const (
	merchantID   = int64(1)
	influencerID = int64(2)
	adminID      = int64(9)
)

var (
	merchantActor   = model.Actor{UserID: merchantID, Role: model.RoleMerchant}
	influencerActor = model.Actor{UserID: influencerID, Role: model.RoleInfluencer}
	adminActor      = model.Actor{UserID: adminID, Role: model.RoleAdmin}
)

// memStore keeps orders in memory and honours the guarded-update contract so
// tests exercise real version conflicts.
type memStore struct {
	mu            sync.Mutex
	orders        map[uuid.UUID]*model.Order
	contestations map[uuid.UUID]*model.Contestation
	createErr     error
	updateErr     error

	// beforeUpdate simulates a concurrent writer landing between the read
	// and the guarded write.
	beforeUpdate func()
}

func newMemStore() *memStore {
	return &memStore{
		orders:        make(map[uuid.UUID]*model.Order),
		contestations: make(map[uuid.UUID]*model.Contestation),
	}
}

func (s *memStore) put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := order
	s.orders[order.ID] = &stored
}

func (s *memStore) Create(ctx context.Context, order *model.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.put(*order)
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	order := *stored
	return &order, nil
}

func (s *memStore) GetByAuthorizationID(ctx context.Context, authorizationID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.orders {
		if stored.AuthorizationID == authorizationID {
			order := *stored
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *memStore) ListByParty(ctx context.Context, userID int64, role model.Role) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, stored := range s.orders {
		if (role == model.RoleMerchant && stored.MerchantID == userID) ||
			(role == model.RoleInfluencer && stored.InfluencerID == userID) {
			orders = append(orders, *stored)
		}
	}
	return orders, nil
}

func (s *memStore) ListContested(ctx context.Context) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, stored := range s.orders {
		if stored.Status == model.OrderStatusContested {
			orders = append(orders, *stored)
		}
	}
	return orders, nil
}

func (s *memStore) ListDueAcceptance(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, stored := range s.orders {
		if stored.Status == model.OrderStatusPending && stored.CreatedAt.Before(cutoff) {
			orders = append(orders, *stored)
		}
	}
	return orders, nil
}

func (s *memStore) ListDueConfirmation(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, stored := range s.orders {
		if stored.Status == model.OrderStatusDelivered && stored.DeliveredAt != nil && stored.DeliveredAt.Before(cutoff) {
			orders = append(orders, *stored)
		}
	}
	return orders, nil
}

func (s *memStore) UpdateGuarded(ctx context.Context, order *model.Order, prevStatus model.OrderStatus, prevVersion int64, contestation *model.Contestation, effect func(context.Context) error) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.beforeUpdate != nil {
		hook := s.beforeUpdate
		s.beforeUpdate = nil
		hook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Status != prevStatus || stored.Version != prevVersion {
		return domainErrors.ErrStaleOrder
	}
	if effect != nil {
		if err := effect(ctx); err != nil {
			return err
		}
	}

	updated := *order
	updated.Version = prevVersion + 1
	s.orders[order.ID] = &updated
	order.Version = updated.Version

	if contestation != nil {
		record := *contestation
		s.contestations[record.OrderID] = &record
	}
	return nil
}

func (s *memStore) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Contestation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.contestations[orderID]; ok {
		contest := *record
		return &contest, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *memStore) ListPending(ctx context.Context) ([]model.Contestation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []model.Contestation
	for _, record := range s.contestations {
		if record.Status == model.ContestationStatusPending {
			records = append(records, *record)
		}
	}
	return records, nil
}

type stubUsers struct {
	byID map[int64]*model.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{byID: map[int64]*model.User{
		merchantID:   {ID: merchantID, Login: "merchant", Role: model.RoleMerchant},
		influencerID: {ID: influencerID, Login: "influencer", Role: model.RoleInfluencer},
		adminID:      {ID: adminID, Login: "admin", Role: model.RoleAdmin},
	}}
}

func (s *stubUsers) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	return nil, domainErrors.ErrAlreadyExists
}

func (s *stubUsers) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	for _, user := range s.byID {
		if user.Login == login {
			return user, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

type stubGateway struct {
	mu          sync.Mutex
	authorizeFn func(context.Context, decimal.Decimal, string, map[string]string) (string, error)
	captureFn   func(context.Context, string) error
	releaseFn   func(context.Context, string) error
	transferFn  func(context.Context, string, decimal.Decimal, string) (string, error)

	captured  []string
	released  []string
	transfers []struct {
		destination string
		amount      decimal.Decimal
		source      string
	}
}

func (s *stubGateway) Authorize(ctx context.Context, amount decimal.Decimal, payer string, metadata map[string]string) (string, error) {
	if s.authorizeFn != nil {
		return s.authorizeFn(ctx, amount, payer, metadata)
	}
	return "auth-1", nil
}

func (s *stubGateway) Capture(ctx context.Context, authorizationID string) error {
	if s.captureFn != nil {
		return s.captureFn(ctx, authorizationID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = append(s.captured, authorizationID)
	return nil
}

func (s *stubGateway) Release(ctx context.Context, authorizationID string) error {
	if s.releaseFn != nil {
		return s.releaseFn(ctx, authorizationID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, authorizationID)
	return nil
}

func (s *stubGateway) Transfer(ctx context.Context, destination string, amount decimal.Decimal, sourceAuthorization string) (string, error) {
	if s.transferFn != nil {
		return s.transferFn(ctx, destination, amount, sourceAuthorization)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers = append(s.transfers, struct {
		destination string
		amount      decimal.Decimal
		source      string
	}{destination, amount, sourceAuthorization})
	return "tr-1", nil
}

type stubEmitter struct {
	mu     sync.Mutex
	events []model.Event
}

func (s *stubEmitter) Emit(ctx context.Context, event model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

type recorderStub struct {
	mu   sync.Mutex
	seen map[string]uuid.UUID
	err  error
}

func (s *recorderStub) RecordProviderEvent(ctx context.Context, eventID, kind string, orderID uuid.UUID) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = make(map[string]uuid.UUID)
	}
	if _, ok := s.seen[eventID]; ok {
		return false, nil
	}
	s.seen[eventID] = orderID
	return true, nil
}

func (s *recorderStub) recorded(eventID string) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.seen[eventID]
	return id, ok
}

type fixture struct {
	uc       *OrderUseCase
	store    *memStore
	gateway  *stubGateway
	emitter  *stubEmitter
	recorder *recorderStub
}

func newFixture() *fixture {
	store := newMemStore()
	gateway := &stubGateway{}
	emitter := &stubEmitter{}
	recorder := &recorderStub{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	uc := NewOrderUseCase(store, store, newStubUsers(), recorder, gateway, emitter, metrics.New(), logger, Policy{
		CommissionRate:     decimal.NewFromInt(10),
		AcceptanceWindow:   48 * time.Hour,
		ConfirmationWindow: 48 * time.Hour,
	})
	return &fixture{uc: uc, store: store, gateway: gateway, emitter: emitter, recorder: recorder}
}

func (f *fixture) seedOrder(status model.OrderStatus) model.Order {
	order := model.Order{
		ID:              uuid.New(),
		MerchantID:      merchantID,
		InfluencerID:    influencerID,
		Title:           "story post",
		DeliveryDays:    7,
		TotalAmount:     decimal.NewFromInt(100),
		CommissionRate:  decimal.NewFromInt(10),
		NetAmount:       decimal.NewFromInt(90),
		AuthorizationID: "auth-1",
		Status:          status,
		Version:         1,
		CreatedAt:       time.Now().Add(-time.Hour),
	}
	if status == model.OrderStatusDelivered || status == model.OrderStatusContested {
		delivered := time.Now().Add(-30 * time.Minute)
		order.DeliveredAt = &delivered
	}
	f.store.put(order)
	return order
}

func TestTransitionHappyPathToCompletion(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusPending)
	ctx := context.Background()

	accepted, err := f.uc.Transition(ctx, order.ID, model.ActionAccept, influencerActor, "")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.OrderStatusAccepted || accepted.AcceptedAt == nil {
		t.Fatalf("unexpected accepted order: %+v", accepted)
	}
	if accepted.Version != 2 {
		t.Fatalf("expected version 2, got %d", accepted.Version)
	}

	delivered, err := f.uc.Transition(ctx, order.ID, model.ActionDeliver, influencerActor, "")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.Status != model.OrderStatusDelivered || delivered.DeliveredAt == nil {
		t.Fatalf("unexpected delivered order: %+v", delivered)
	}

	completed, err := f.uc.Transition(ctx, order.ID, model.ActionConfirm, merchantActor, "")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if completed.Status != model.OrderStatusCompleted || !completed.PaymentCaptured || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed order: %+v", completed)
	}

	if len(f.gateway.captured) != 1 || f.gateway.captured[0] != "auth-1" {
		t.Fatalf("expected one capture of auth-1, got %v", f.gateway.captured)
	}
	if len(f.gateway.transfers) != 1 {
		t.Fatalf("expected one transfer, got %d", len(f.gateway.transfers))
	}
	transfer := f.gateway.transfers[0]
	if transfer.destination != "acct:2" {
		t.Fatalf("unexpected payout destination %q", transfer.destination)
	}
	if !transfer.amount.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected net payout 90, got %s", transfer.amount)
	}
	if len(f.gateway.released) != 0 {
		t.Fatalf("no release expected on completion, got %v", f.gateway.released)
	}
}

func TestTransitionRefuseReleasesHold(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusPending)

	refused, err := f.uc.Transition(context.Background(), order.ID, model.ActionRefuse, influencerActor, "")
	if err != nil {
		t.Fatalf("refuse: %v", err)
	}
	if refused.Status != model.OrderStatusRefused {
		t.Fatalf("expected REFUSED, got %s", refused.Status)
	}
	if len(f.gateway.released) != 1 || f.gateway.released[0] != "auth-1" {
		t.Fatalf("expected release of auth-1, got %v", f.gateway.released)
	}
	if len(f.gateway.captured) != 0 {
		t.Fatalf("no capture expected on refusal")
	}
}

func TestTransitionContestRequiresEvidence(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusDelivered)
	ctx := context.Background()

	if _, err := f.uc.Transition(ctx, order.ID, model.ActionContest, influencerActor, "   "); !errors.Is(err, domainErrors.ErrEvidenceRequired) {
		t.Fatalf("expected ErrEvidenceRequired, got %v", err)
	}

	contested, err := f.uc.Transition(ctx, order.ID, model.ActionContest, influencerActor, "work never delivered")
	if err != nil {
		t.Fatalf("contest: %v", err)
	}
	if contested.Status != model.OrderStatusContested || contested.Evidence != "work never delivered" {
		t.Fatalf("unexpected contested order: %+v", contested)
	}

	record, err := f.store.GetByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("contestation missing: %v", err)
	}
	if record.Status != model.ContestationStatusPending || record.Evidence != "work never delivered" {
		t.Fatalf("unexpected contestation: %+v", record)
	}
}

func TestTransitionActorGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name   string
		status model.OrderStatus
		action model.Action
		actor  model.Actor
	}{
		{"merchant cannot accept", model.OrderStatusPending, model.ActionAccept, merchantActor},
		{"influencer cannot confirm", model.OrderStatusDelivered, model.ActionConfirm, influencerActor},
		{"merchant cannot contest", model.OrderStatusDelivered, model.ActionContest, merchantActor},
		{"stranger influencer cannot accept", model.OrderStatusPending, model.ActionAccept, model.Actor{UserID: 99, Role: model.RoleInfluencer}},
		{"merchant cannot arbitrate", model.OrderStatusContested, model.ActionArbitrateMerchant, merchantActor},
		{"user cannot force timeout", model.OrderStatusPending, model.ActionTimeoutCancel, merchantActor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := f.seedOrder(tc.status)
			if _, err := f.uc.Transition(ctx, order.ID, tc.action, tc.actor, "note"); !errors.Is(err, domainErrors.ErrNotYourOrder) {
				t.Fatalf("expected ErrNotYourOrder, got %v", err)
			}
		})
	}
}

func TestTransitionInvalidState(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusPending)

	if _, err := f.uc.Transition(context.Background(), order.ID, model.ActionDeliver, influencerActor, ""); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestTransitionTerminalOrderAlreadyResolved(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusCompleted)

	if _, err := f.uc.Transition(context.Background(), order.ID, model.ActionConfirm, merchantActor, ""); !errors.Is(err, domainErrors.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if len(f.gateway.captured) != 0 {
		t.Fatalf("terminal order must not reach the provider")
	}
}

func TestTransitionStaleWriteConflict(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusPending)

	// Another transition lands between the read and the guarded write.
	f.store.beforeUpdate = func() {
		bumped := order
		bumped.Version = 2
		bumped.Status = model.OrderStatusAccepted
		f.store.put(bumped)
	}

	_, err := f.uc.Transition(context.Background(), order.ID, model.ActionRefuse, influencerActor, "")
	if !errors.Is(err, domainErrors.ErrStaleOrder) {
		t.Fatalf("expected ErrStaleOrder, got %v", err)
	}
	if !IsRetryableConflict(err) {
		t.Fatal("stale write should be retryable")
	}
	if len(f.gateway.released) != 0 {
		t.Fatalf("losing writer must not touch the provider, got %v", f.gateway.released)
	}
}

func TestTransitionCaptureFailureLeavesStatus(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusDelivered)
	f.gateway.captureFn = func(context.Context, string) error {
		return errors.New("provider down")
	}

	if _, err := f.uc.Transition(context.Background(), order.ID, model.ActionConfirm, merchantActor, ""); err == nil {
		t.Fatal("expected capture failure")
	}

	stored, err := f.store.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != model.OrderStatusDelivered || stored.Version != 1 || stored.PaymentCaptured {
		t.Fatalf("failed capture must not advance the order: %+v", stored)
	}
	if len(f.gateway.transfers) != 0 {
		t.Fatalf("no transfer after failed capture")
	}
}

func TestTransitionTransferFailureLeavesStatus(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusDelivered)
	f.gateway.transferFn = func(context.Context, string, decimal.Decimal, string) (string, error) {
		return "", errors.New("payout account missing")
	}

	if _, err := f.uc.Transition(context.Background(), order.ID, model.ActionConfirm, merchantActor, ""); err == nil {
		t.Fatal("expected transfer failure")
	}

	stored, _ := f.store.GetByID(context.Background(), order.ID)
	if stored.Status != model.OrderStatusDelivered || stored.PaymentCaptured {
		t.Fatalf("failed transfer must not advance the order: %+v", stored)
	}
}

func TestArbitrateFavorInfluencer(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusContested)
	f.store.contestations[order.ID] = &model.Contestation{
		ID:       uuid.New(),
		OrderID:  order.ID,
		Status:   model.ContestationStatusPending,
		Evidence: "no post",
	}

	resolved, err := f.uc.Transition(context.Background(), order.ID, model.ActionArbitrateInfluencer, adminActor, "post verified")
	if err != nil {
		t.Fatalf("arbitrate: %v", err)
	}
	if resolved.Status != model.OrderStatusCompleted || !resolved.PaymentCaptured {
		t.Fatalf("unexpected resolved order: %+v", resolved)
	}
	if resolved.AdminDecision != "post verified" || resolved.AdminDecisionBy != adminID {
		t.Fatalf("decision not recorded: %+v", resolved)
	}

	record, _ := f.store.GetByOrder(context.Background(), order.ID)
	if record.Status != model.ContestationStatusUpheld || record.Resolution != "post verified" || record.ResolvedBy != adminID {
		t.Fatalf("unexpected contestation: %+v", record)
	}
	if len(f.gateway.captured) != 1 || len(f.gateway.transfers) != 1 {
		t.Fatalf("expected capture and transfer, got %v / %d", f.gateway.captured, len(f.gateway.transfers))
	}
}

func TestArbitrateFavorMerchant(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusContested)
	f.store.contestations[order.ID] = &model.Contestation{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  model.ContestationStatusPending,
	}

	resolved, err := f.uc.Transition(context.Background(), order.ID, model.ActionArbitrateMerchant, adminActor, "no deliverable found")
	if err != nil {
		t.Fatalf("arbitrate: %v", err)
	}
	if resolved.Status != model.OrderStatusCancelled || resolved.PaymentCaptured {
		t.Fatalf("unexpected resolved order: %+v", resolved)
	}

	record, _ := f.store.GetByOrder(context.Background(), order.ID)
	if record.Status != model.ContestationStatusRejected {
		t.Fatalf("expected REJECTED contestation, got %s", record.Status)
	}
	if len(f.gateway.released) != 1 {
		t.Fatalf("expected release, got %v", f.gateway.released)
	}
	if len(f.gateway.captured) != 0 {
		t.Fatalf("no capture when merchant wins")
	}
}

func TestArbitrateTwiceRejected(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusContested)

	if _, err := f.uc.Transition(context.Background(), order.ID, model.ActionArbitrateMerchant, adminActor, "refund"); err != nil {
		t.Fatalf("first arbitration: %v", err)
	}
	if _, err := f.uc.Transition(context.Background(), order.ID, model.ActionArbitrateInfluencer, adminActor, "changed my mind"); !errors.Is(err, domainErrors.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if len(f.gateway.captured) != 0 {
		t.Fatalf("second arbitration must not move money")
	}
}

func TestTimeoutCancelDeadlineGuard(t *testing.T) {
	f := newFixture()
	fresh := f.seedOrder(model.OrderStatusPending)

	if _, err := f.uc.Transition(context.Background(), fresh.ID, model.ActionTimeoutCancel, model.SystemActor, ""); !errors.Is(err, domainErrors.ErrDeadlineNotReached) {
		t.Fatalf("expected ErrDeadlineNotReached, got %v", err)
	}

	overdue := f.seedOrder(model.OrderStatusPending)
	overdue.CreatedAt = time.Now().Add(-72 * time.Hour)
	f.store.put(overdue)

	cancelled, err := f.uc.Transition(context.Background(), overdue.ID, model.ActionTimeoutCancel, model.SystemActor, "")
	if err != nil {
		t.Fatalf("timeout cancel: %v", err)
	}
	if cancelled.Status != model.OrderStatusAutoCancelled {
		t.Fatalf("expected AUTO_CANCELLED, got %s", cancelled.Status)
	}
	if len(f.gateway.released) != 1 {
		t.Fatalf("expected hold release, got %v", f.gateway.released)
	}
}

func TestTimeoutCompleteDeadlineGuard(t *testing.T) {
	f := newFixture()
	fresh := f.seedOrder(model.OrderStatusDelivered)

	if _, err := f.uc.Transition(context.Background(), fresh.ID, model.ActionTimeoutComplete, model.SystemActor, ""); !errors.Is(err, domainErrors.ErrDeadlineNotReached) {
		t.Fatalf("expected ErrDeadlineNotReached, got %v", err)
	}

	overdue := f.seedOrder(model.OrderStatusDelivered)
	delivered := time.Now().Add(-72 * time.Hour)
	overdue.DeliveredAt = &delivered
	f.store.put(overdue)

	completed, err := f.uc.Transition(context.Background(), overdue.ID, model.ActionTimeoutComplete, model.SystemActor, "")
	if err != nil {
		t.Fatalf("timeout complete: %v", err)
	}
	if completed.Status != model.OrderStatusAutoCompleted || !completed.PaymentCaptured {
		t.Fatalf("unexpected order: %+v", completed)
	}
	if len(f.gateway.captured) != 1 || len(f.gateway.transfers) != 1 {
		t.Fatalf("auto completion must pay out")
	}
}

func TestTransitionEmitsEvents(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusPending)

	if _, err := f.uc.Transition(context.Background(), order.ID, model.ActionAccept, influencerActor, ""); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if len(f.emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(f.emitter.events))
	}
	event := f.emitter.events[0]
	if event.Name != "order.accepted" || event.OrderID != order.ID {
		t.Fatalf("unexpected event: %+v", event)
	}
	if len(event.Notify) != 1 || event.Notify[0] != model.RoleMerchant {
		t.Fatalf("accept should notify the merchant, got %v", event.Notify)
	}
}

func TestTransitionUnknownAction(t *testing.T) {
	f := newFixture()
	order := f.seedOrder(model.OrderStatusPending)

	if _, err := f.uc.Transition(context.Background(), order.ID, model.Action("teleport"), influencerActor, ""); err == nil {
		t.Fatal("expected unknown action error")
	}
}

func TestTransitionNotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.uc.Transition(context.Background(), uuid.New(), model.ActionAccept, influencerActor, ""); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
