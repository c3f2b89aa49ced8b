package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/mpsubs/pkg/pg"
	"github.com/dmitrymomot/mpsubs/pkg/subscription"
)

// DB is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	if db == nil {
		panic("store: db is required")
	}
	return &Postgres{db: db}
}

var _ subscription.Store = (*Postgres)(nil)

const (
	insertUser = `INSERT INTO usuarios (nome, email) VALUES ($1, $2) RETURNING id`

	// Prices are numeric(12,2); they travel as integer centavos.
	selectPlan = `SELECT id, nome, (preco * 100)::bigint, frequencia FROM planos WHERE id = $1`
	listPlans  = `SELECT id, nome, (preco * 100)::bigint, frequencia FROM planos ORDER BY id`
	upsertPlan = `INSERT INTO planos (nome, preco, frequencia)
		VALUES ($1, $2::numeric / 100, $3)
		ON CONFLICT (nome) DO UPDATE SET preco = EXCLUDED.preco, frequencia = EXCLUDED.frequencia
		RETURNING id`

	insertSubscription = `INSERT INTO assinaturas (usuario_id, plano_id, preapproval_plan_id, preapproval_id, ativo, data_inicio, data_fim)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	selectSubscriptionByPlan = `SELECT id, usuario_id, plano_id, preapproval_plan_id, preapproval_id, ativo, data_inicio, data_fim, created_at, updated_at
		FROM assinaturas WHERE preapproval_plan_id = $1`
	updateSubscription = `UPDATE assinaturas
		SET preapproval_id = $2, ativo = $3, data_inicio = $4, data_fim = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
)

func (s *Postgres) CreateUser(ctx context.Context, u *subscription.User) error {
	err := s.db.QueryRow(ctx, insertUser, u.Name, u.Email).Scan(&u.ID)
	switch {
	case err == nil:
		return nil
	case pg.IsDuplicateKeyError(err):
		return errors.Join(subscription.ErrEmailTaken, err)
	default:
		return persistence("create user", err)
	}
}

func (s *Postgres) GetPlan(ctx context.Context, id subscription.PlanID) (*subscription.Plan, error) {
	p, err := scanPlan(s.db.QueryRow(ctx, selectPlan, int64(id)))
	switch {
	case err == nil:
		return p, nil
	case pg.IsNotFoundError(err):
		return nil, subscription.ErrPlanNotFound
	default:
		return nil, persistence("get plan", err)
	}
}

func (s *Postgres) ListPlans(ctx context.Context) ([]subscription.Plan, error) {
	rows, err := s.db.Query(ctx, listPlans)
	if err != nil {
		return nil, persistence("list plans", err)
	}
	plans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (subscription.Plan, error) {
		p, err := scanPlan(row)
		if err != nil {
			return subscription.Plan{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, persistence("list plans", err)
	}
	return plans, nil
}

// UpsertPlan inserts a plan or updates the one with the same name, and sets
// p.ID. Used for seeding only.
func (s *Postgres) UpsertPlan(ctx context.Context, p *subscription.Plan) error {
	if err := s.db.QueryRow(ctx, upsertPlan, p.Name, p.Price.Amount, p.IntervalMonths).Scan(&p.ID); err != nil {
		return persistence("upsert plan", err)
	}
	return nil
}

func (s *Postgres) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	err := s.db.QueryRow(ctx, insertSubscription,
		int64(sub.UserID),
		int64(sub.PlanID),
		string(sub.PreapprovalPlanID),
		nullString(string(sub.PreapprovalID)),
		sub.Active,
		sub.StartDate,
		sub.EndDate,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case pg.IsDuplicateKeyError(err):
		return errors.Join(subscription.ErrSubscriptionAlreadyExists, err)
	default:
		return persistence("create subscription", err)
	}
}

func (s *Postgres) GetSubscriptionByPreapprovalPlanID(ctx context.Context, id subscription.PreapprovalPlanID) (*subscription.Subscription, error) {
	var (
		sub           subscription.Subscription
		planID        string
		preapprovalID *string
	)
	err := s.db.QueryRow(ctx, selectSubscriptionByPlan, string(id)).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanID,
		&planID,
		&preapprovalID,
		&sub.Active,
		&sub.StartDate,
		&sub.EndDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	switch {
	case err == nil:
	case pg.IsNotFoundError(err):
		return nil, subscription.ErrSubscriptionNotFound
	default:
		return nil, persistence("get subscription", err)
	}

	sub.PreapprovalPlanID = subscription.PreapprovalPlanID(planID)
	if preapprovalID != nil {
		sub.PreapprovalID = subscription.PreapprovalID(*preapprovalID)
	}
	return &sub, nil
}

func (s *Postgres) SaveSubscription(ctx context.Context, sub *subscription.Subscription) error {
	var updated time.Time
	err := s.db.QueryRow(ctx, updateSubscription,
		int64(sub.ID),
		nullString(string(sub.PreapprovalID)),
		sub.Active,
		sub.StartDate,
		sub.EndDate,
	).Scan(&updated)
	switch {
	case err == nil:
		sub.UpdatedAt = updated
		return nil
	case pg.IsNotFoundError(err):
		return subscription.ErrSubscriptionNotFound
	default:
		return persistence("save subscription", err)
	}
}

func scanPlan(row pgx.Row) (*subscription.Plan, error) {
	var (
		p     subscription.Plan
		cents int64
	)
	if err := row.Scan(&p.ID, &p.Name, &cents, &p.IntervalMonths); err != nil {
		return nil, err
	}
	p.Price = subscription.BRL(cents)
	return &p, nil
}

func persistence(op string, err error) error {
	return errors.Join(subscription.ErrPersistence, fmt.Errorf("%s: %w", op, err))
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
