package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"aiplatform/internal/domain"
	"aiplatform/pkg/errors"
)

type PaymentRequestRepository struct {
	db *sqlx.DB
}

func NewPaymentRequestRepository(db *sqlx.DB) *PaymentRequestRepository {
	return &PaymentRequestRepository{db: db}
}

func (r *PaymentRequestRepository) Create(ctx context.Context, req *domain.PaymentRequest) error {
	query := `
		INSERT INTO payment_requests (
			id, user_id, user_name, user_email, amount, method, phone_number,
			screenshot_ref, status, admin_note, created_at
		) VALUES (
			:id, :user_id, :user_name, :user_email, :amount, :method, :phone_number,
			:screenshot_ref, :status, :admin_note, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return errors.Wrap(err, "failed to create payment request")
}

// UpdateDecision persists an admin decision. The status guard keeps a
// concurrent second decision from overwriting the first.
func (r *PaymentRequestRepository) UpdateDecision(ctx context.Context, req *domain.PaymentRequest) error {
	query := `
		UPDATE payment_requests SET
			status = :status,
			admin_note = :admin_note,
			decided_by = :decided_by,
			processed_at = :processed_at
		WHERE id = :id AND status = 'pending'
	`
	result, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return errors.Wrap(err, "failed to update payment request")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if rows == 0 {
		return errors.ErrRequestAlreadyDecided
	}
	return nil
}

func (r *PaymentRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error) {
	req := &domain.PaymentRequest{}
	query := `SELECT * FROM payment_requests WHERE id = $1`
	err := r.db.GetContext(ctx, req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, errors.Wrap(err, "failed to find payment request by id")
	}
	return req, nil
}

func (r *PaymentRequestRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.PaymentRequest, error) {
	var requests []domain.PaymentRequest
	query := `SELECT * FROM payment_requests WHERE user_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &requests, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find payment requests by user")
	}
	return requests, nil
}

func (r *PaymentRequestRepository) FindAll(ctx context.Context) ([]domain.PaymentRequest, error) {
	var requests []domain.PaymentRequest
	query := `SELECT * FROM payment_requests ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &requests, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find payment requests")
	}
	return requests, nil
}
