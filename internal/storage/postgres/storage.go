package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/promopay/promopay/internal/domain/errors"
	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/domain/repository"
)

// Pool is the subset of pgxpool.Pool the storage layer uses. Tests substitute
// a pgxmock pool through it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type contestationRepository struct {
	storage *Storage
}

// newPgxPool is an indirection point for tests to substitute a mock pool.
var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Contestations() repository.ContestationRepository {
	return &contestationRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            merchant_id BIGINT NOT NULL REFERENCES users(id),
            influencer_id BIGINT NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            delivery_days INT NOT NULL,
            total_amount NUMERIC(14,2) NOT NULL,
            commission_rate NUMERIC(5,2) NOT NULL,
            net_amount NUMERIC(14,2) NOT NULL,
            authorization_id TEXT UNIQUE NOT NULL,
            payment_captured BOOLEAN NOT NULL DEFAULT FALSE,
            status TEXT NOT NULL,
            version BIGINT NOT NULL DEFAULT 1,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            accepted_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            completed_at TIMESTAMPTZ,
            contested_at TIMESTAMPTZ,
            evidence TEXT NOT NULL DEFAULT '',
            admin_decision TEXT NOT NULL DEFAULT '',
            admin_decision_by BIGINT NOT NULL DEFAULT 0,
            admin_decision_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS contestations (
            id UUID PRIMARY KEY,
            order_id UUID UNIQUE NOT NULL REFERENCES orders(id),
            status TEXT NOT NULL,
            evidence TEXT NOT NULL,
            resolution TEXT NOT NULL DEFAULT '',
            resolved_by BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            resolved_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS provider_events (
            id TEXT PRIMARY KEY,
            kind TEXT NOT NULL,
            order_id UUID REFERENCES orders(id),
            received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_merchant ON orders(merchant_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_influencer ON orders(influencer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_acceptance_due ON orders(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_confirmation_due ON orders(status, delivered_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash, role).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	u.Role = role
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE login=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, merchant_id, influencer_id, title, description, delivery_days,
    total_amount, commission_rate, net_amount, authorization_id, payment_captured,
    status, version, created_at, accepted_at, delivered_at, completed_at, contested_at,
    evidence, admin_decision, admin_decision_by, admin_decision_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.MerchantID, &o.InfluencerID, &o.Title, &o.Description, &o.DeliveryDays,
		&o.TotalAmount, &o.CommissionRate, &o.NetAmount, &o.AuthorizationID, &o.PaymentCaptured,
		&o.Status, &o.Version, &o.CreatedAt, &o.AcceptedAt, &o.DeliveredAt, &o.CompletedAt, &o.ContestedAt,
		&o.Evidence, &o.AdminDecision, &o.AdminDecisionBy, &o.AdminDecisionAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (
            id, merchant_id, influencer_id, title, description, delivery_days,
            total_amount, commission_rate, net_amount, authorization_id, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING version, created_at`
	err := r.storage.pool.QueryRow(ctx, query,
		order.ID, order.MerchantID, order.InfluencerID, order.Title, order.Description, order.DeliveryDays,
		order.TotalAmount, order.CommissionRate, order.NetAmount, order.AuthorizationID, order.Status,
	).Scan(&order.Version, &order.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByAuthorizationID(ctx context.Context, authorizationID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE authorization_id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, authorizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListByParty(ctx context.Context, userID int64, role model.Role) ([]model.Order, error) {
	column := "merchant_id"
	if role == model.RoleInfluencer {
		column = "influencer_id"
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + `=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *orderRepository) ListContested(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status=$1 ORDER BY contested_at`
	return r.list(ctx, query, model.OrderStatusContested)
}

func (r *orderRepository) ListDueAcceptance(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
        WHERE status = ANY($1) AND created_at < $2
        ORDER BY created_at LIMIT $3`
	statuses := []string{string(model.OrderStatusPending), string(model.OrderStatusAccepted)}
	return r.list(ctx, query, statuses, cutoff, limit)
}

func (r *orderRepository) ListDueConfirmation(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
        WHERE status=$1 AND delivered_at < $2
        ORDER BY delivered_at LIMIT $3`
	return r.list(ctx, query, model.OrderStatusDelivered, cutoff, limit)
}

// UpdateGuarded commits a transition atomically. The conditional write on
// (status, version) is the sole concurrency-control mechanism: zero affected
// rows means the snapshot is stale and nothing further happens. The provider
// call runs inside the same transaction, so a provider failure rolls the
// status write back and status and money state change together or not at all.
func (r *orderRepository) UpdateGuarded(ctx context.Context, order *model.Order, prevStatus model.OrderStatus, prevVersion int64, contestation *model.Contestation, effect func(context.Context) error) error {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const query = `UPDATE orders SET
                status=$1, payment_captured=$2,
                accepted_at=$3, delivered_at=$4, completed_at=$5, contested_at=$6,
                evidence=$7, admin_decision=$8, admin_decision_by=$9, admin_decision_at=$10,
                version=version+1
            WHERE id=$11 AND status=$12 AND version=$13`
		tag, err := tx.Exec(ctx, query,
			order.Status, order.PaymentCaptured,
			order.AcceptedAt, order.DeliveredAt, order.CompletedAt, order.ContestedAt,
			order.Evidence, order.AdminDecision, order.AdminDecisionBy, order.AdminDecisionAt,
			order.ID, prevStatus, prevVersion,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrStaleOrder
		}

		if contestation != nil {
			const upsert = `INSERT INTO contestations (id, order_id, status, evidence, resolution, resolved_by, resolved_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7)
                ON CONFLICT (order_id) DO UPDATE SET
                    status=EXCLUDED.status,
                    resolution=EXCLUDED.resolution,
                    resolved_by=EXCLUDED.resolved_by,
                    resolved_at=EXCLUDED.resolved_at`
			if _, err := tx.Exec(ctx, upsert,
				contestation.ID, contestation.OrderID, contestation.Status, contestation.Evidence,
				contestation.Resolution, contestation.ResolvedBy, contestation.ResolvedAt,
			); err != nil {
				return err
			}
		}

		if effect != nil {
			if err := effect(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Version = prevVersion + 1
	return nil
}

// --- ContestationRepository implementation ---

const contestationColumns = `id, order_id, status, evidence, resolution, resolved_by, created_at, resolved_at`

func scanContestation(row rowScanner) (*model.Contestation, error) {
	var c model.Contestation
	err := row.Scan(&c.ID, &c.OrderID, &c.Status, &c.Evidence, &c.Resolution, &c.ResolvedBy, &c.CreatedAt, &c.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contestationRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Contestation, error) {
	query := `SELECT ` + contestationColumns + ` FROM contestations WHERE order_id=$1`
	c, err := scanContestation(r.storage.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *contestationRepository) ListPending(ctx context.Context) ([]model.Contestation, error) {
	query := `SELECT ` + contestationColumns + ` FROM contestations WHERE status=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, model.ContestationStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Contestation
	for rows.Next() {
		c, err := scanContestation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- ProviderEventRecorder implementation ---

// RecordProviderEvent inserts the provider event id once; duplicate webhook
// deliveries report false and must be ignored by the caller.
func (s *Storage) RecordProviderEvent(ctx context.Context, eventID, kind string, orderID uuid.UUID) (bool, error) {
	const query = `INSERT INTO provider_events (id, kind, order_id) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`
	var orderRef any
	if orderID != uuid.Nil {
		orderRef = orderID
	}
	tag, err := s.pool.Exec(ctx, query, eventID, kind, orderRef)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Pool exposes the underlying connection pool for advanced use.
func (s *Storage) Pool() Pool {
	return s.pool
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
