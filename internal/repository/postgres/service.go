package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"aiplatform/internal/domain"
	"aiplatform/pkg/errors"
)

type ServiceRepository struct {
	db *sqlx.DB
}

func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (
			id, name, description, price, features, popular, created_at
		) VALUES (
			:id, :name, :description, :price, :features, :popular, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, service)
	return errors.Wrap(err, "failed to create service")
}

func (r *ServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	service := &domain.Service{}
	query := `SELECT * FROM services WHERE id = $1`
	err := r.db.GetContext(ctx, service, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrServiceNotFound
		}
		return nil, errors.Wrap(err, "failed to find service by id")
	}
	return service, nil
}

func (r *ServiceRepository) FindAll(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	query := `SELECT * FROM services ORDER BY price ASC`
	err := r.db.SelectContext(ctx, &services, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find services")
	}
	return services, nil
}

type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, service_id, created_at)
		VALUES (:id, :user_id, :service_id, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, sub)
	return errors.Wrap(err, "failed to create subscription")
}

func (r *SubscriptionRepository) Exists(ctx context.Context, userID, serviceID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = $1 AND service_id = $2)`
	err := r.db.GetContext(ctx, &exists, query, userID, serviceID)
	return exists, errors.Wrap(err, "failed to check subscription existence")
}

func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	query := `SELECT * FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &subs, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find subscriptions by user")
	}
	return subs, nil
}
