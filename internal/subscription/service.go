// Package subscription implements the AI service catalog and wallet-funded
// subscriptions.
package subscription

import (
	"context"

	"github.com/google/uuid"

	"aiplatform/internal/domain"
	"aiplatform/pkg/clock"
	"aiplatform/pkg/errors"
	"aiplatform/pkg/logger"
)

// ServiceRepository is the persistence surface for the catalog.
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Service, error)
	FindAll(ctx context.Context) ([]domain.Service, error)
}

// SubscriptionRepository stores user/service subscription links.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Exists(ctx context.Context, userID, serviceID uuid.UUID) (bool, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error)
}

// UserDebitor charges a subscription price against the user's wallet.
type UserDebitor interface {
	DebitBalance(ctx context.Context, userID uuid.UUID, amount string) error
}

// Service provides catalog listing and subscribe operations.
type Service struct {
	catalog ServiceRepository
	subs    SubscriptionRepository
	users   UserDebitor
	clock   clock.Clock
	logger  logger.Logger
}

// NewService constructs a Service.
func NewService(catalog ServiceRepository, subs SubscriptionRepository, users UserDebitor, clk clock.Clock, log logger.Logger) *Service {
	return &Service{
		catalog: catalog,
		subs:    subs,
		users:   users,
		clock:   clk,
		logger:  log,
	}
}

// CatalogEntry is a service plus whether the requesting user already
// subscribes to it.
type CatalogEntry struct {
	domain.Service
	Subscribed bool `json:"subscribed"`
}

// Catalog lists all services, cheapest first, marking the ones the user
// already has.
func (s *Service) Catalog(ctx context.Context, userID uuid.UUID) ([]CatalogEntry, error) {
	services, err := s.catalog.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned := make(map[uuid.UUID]bool, len(subs))
	for _, sub := range subs {
		owned[sub.ServiceID] = true
	}

	entries := make([]CatalogEntry, 0, len(services))
	for _, svc := range services {
		entries = append(entries, CatalogEntry{
			Service:    svc,
			Subscribed: owned[svc.ID],
		})
	}
	return entries, nil
}

// Subscribe charges the service price to the user's wallet and records the
// subscription. A user cannot subscribe to the same service twice, and an
// insufficient balance leaves no subscription behind.
func (s *Service) Subscribe(ctx context.Context, userID, serviceID uuid.UUID) (*domain.Subscription, error) {
	svc, err := s.catalog.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	exists, err := s.subs.Exists(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrAlreadySubscribed
	}

	if err := s.users.DebitBalance(ctx, userID, svc.Price.String()); err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		ServiceID: serviceID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, errors.Wrap(err, errors.ErrSubscriptionFailed.Error())
	}

	s.logger.Info("Subscription created", map[string]interface{}{
		"user_id":    userID,
		"service_id": serviceID,
		"price":      svc.Price.String(),
	})

	return sub, nil
}

// Subscriptions lists a user's subscriptions, newest first.
func (s *Service) Subscriptions(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error) {
	return s.subs.FindByUserID(ctx, userID)
}
