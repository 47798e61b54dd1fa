package test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/promopay/promopay/internal/domain/errors"
	"github.com/promopay/promopay/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Seed registers a user with a fixed identifier.
func (s *UserRepositoryStub) Seed(id int64, login string, role model.Role) *model.User {
	user := &model.User{ID: id, Login: login, Role: role}
	s.Users[login] = user
	s.ByID[id] = user
	if id >= s.Next {
		s.Next = id + 1
	}
	return user
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: role}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub keeps orders in memory and honours the guarded update
// contract, so lifecycle tests exercise real version conflicts.
type OrderRepositoryStub struct {
	mu              sync.Mutex
	ByID            map[uuid.UUID]*model.Order
	Contestations   map[uuid.UUID]*model.Contestation
	CreateErr       error
	UpdateErr       error
	UpdateGuardedFn func(context.Context, *model.Order, model.OrderStatus, int64, *model.Contestation, func(context.Context) error) error
	GuardedCalls    int
}

// NewOrderRepositoryStub constructs the stub with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		ByID:          make(map[uuid.UUID]*model.Order),
		Contestations: make(map[uuid.UUID]*model.Contestation),
	}
}

// Seed stores a copy of the order.
func (s *OrderRepositoryStub) Seed(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := order
	s.ByID[order.ID] = &stored
}

// Create stores the order.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *order
	s.ByID[order.ID] = &stored
	return nil
}

// GetByID returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	order := *stored
	return &order, nil
}

// GetByAuthorizationID resolves an order by its funds hold identifier.
func (s *OrderRepositoryStub) GetByAuthorizationID(ctx context.Context, authorizationID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.ByID {
		if stored.AuthorizationID == authorizationID {
			order := *stored
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListByParty returns orders where the user participates in the given role.
func (s *OrderRepositoryStub) ListByParty(ctx context.Context, userID int64, role model.Role) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, stored := range s.ByID {
		if role == model.RoleMerchant && stored.MerchantID == userID {
			orders = append(orders, *stored)
		}
		if role == model.RoleInfluencer && stored.InfluencerID == userID {
			orders = append(orders, *stored)
		}
	}
	return orders, nil
}

// ListContested returns orders awaiting arbitration.
func (s *OrderRepositoryStub) ListContested(ctx context.Context) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, stored := range s.ByID {
		if stored.Status == model.OrderStatusContested {
			orders = append(orders, *stored)
		}
	}
	return orders, nil
}

// ListDueAcceptance returns pending orders created before the cutoff.
func (s *OrderRepositoryStub) ListDueAcceptance(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, stored := range s.ByID {
		if stored.Status == model.OrderStatusPending && stored.CreatedAt.Before(cutoff) {
			orders = append(orders, *stored)
			if len(orders) == limit {
				break
			}
		}
	}
	return orders, nil
}

// ListDueConfirmation returns delivered orders past the confirmation window.
func (s *OrderRepositoryStub) ListDueConfirmation(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, stored := range s.ByID {
		if stored.Status == model.OrderStatusDelivered && stored.DeliveredAt != nil && stored.DeliveredAt.Before(cutoff) {
			orders = append(orders, *stored)
			if len(orders) == limit {
				break
			}
		}
	}
	return orders, nil
}

// UpdateGuarded applies the order write only when the stored row still has the
// expected status and version, mirroring the conditional UPDATE semantics.
func (s *OrderRepositoryStub) UpdateGuarded(ctx context.Context, order *model.Order, prevStatus model.OrderStatus, prevVersion int64, contestation *model.Contestation, effect func(context.Context) error) error {
	if s.UpdateGuardedFn != nil {
		return s.UpdateGuardedFn(ctx, order, prevStatus, prevVersion, contestation, effect)
	}
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.GuardedCalls++

	stored, ok := s.ByID[order.ID]
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
	s.ByID[order.ID] = &updated
	order.Version = updated.Version

	if contestation != nil {
		record := *contestation
		s.Contestations[record.OrderID] = &record
	}
	return nil
}

// GetByOrder returns the contestation attached to the order.
func (s *OrderRepositoryStub) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Contestation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.Contestations[orderID]; ok {
		contest := *record
		return &contest, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListPending returns unresolved contestations.
func (s *OrderRepositoryStub) ListPending(ctx context.Context) ([]model.Contestation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []model.Contestation
	for _, record := range s.Contestations {
		if record.Status == model.ContestationStatusPending {
			records = append(records, *record)
		}
	}
	return records, nil
}

// ProviderEventRecorderStub deduplicates provider event identifiers in memory.
type ProviderEventRecorderStub struct {
	mu     sync.Mutex
	Seen   map[string]string
	Orders map[string]uuid.UUID
	Err    error
}

// NewProviderEventRecorderStub constructs the stub.
func NewProviderEventRecorderStub() *ProviderEventRecorderStub {
	return &ProviderEventRecorderStub{
		Seen:   make(map[string]string),
		Orders: make(map[string]uuid.UUID),
	}
}

// RecordProviderEvent returns true the first time an event id is seen.
func (s *ProviderEventRecorderStub) RecordProviderEvent(ctx context.Context, eventID, kind string, orderID uuid.UUID) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Seen[eventID]; ok {
		return false, nil
	}
	s.Seen[eventID] = kind
	s.Orders[eventID] = orderID
	return true, nil
}
