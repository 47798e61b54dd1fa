package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/promopay/promopay/internal/domain/model"
)

// ContestationRepository reads dispute records. Writes happen only through
// OrderRepository.UpdateGuarded so order and dispute stay consistent.
type ContestationRepository interface {
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Contestation, error)
	ListPending(ctx context.Context) ([]model.Contestation, error)
}
