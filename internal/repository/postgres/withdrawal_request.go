package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"aiplatform/internal/domain"
	"aiplatform/pkg/errors"
)

type WithdrawalRequestRepository struct {
	db *sqlx.DB
}

func NewWithdrawalRequestRepository(db *sqlx.DB) *WithdrawalRequestRepository {
	return &WithdrawalRequestRepository{db: db}
}

func (r *WithdrawalRequestRepository) Create(ctx context.Context, req *domain.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (
			id, partner_id, amount, fee, method, recipient_info, status, admin_note, created_at
		) VALUES (
			:id, :partner_id, :amount, :fee, :method, :recipient_info, :status, :admin_note, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return errors.Wrap(err, "failed to create withdrawal request")
}

// UpdateDecision persists an admin decision with the same pending-only
// guard as payment requests.
func (r *WithdrawalRequestRepository) UpdateDecision(ctx context.Context, req *domain.WithdrawalRequest) error {
	query := `
		UPDATE withdrawal_requests SET
			status = :status,
			admin_note = :admin_note,
			decided_by = :decided_by,
			processed_at = :processed_at
		WHERE id = :id AND status = 'pending'
	`
	result, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return errors.Wrap(err, "failed to update withdrawal request")
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

func (r *WithdrawalRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	req := &domain.WithdrawalRequest{}
	query := `SELECT * FROM withdrawal_requests WHERE id = $1`
	err := r.db.GetContext(ctx, req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrWithdrawalNotFound
		}
		return nil, errors.Wrap(err, "failed to find withdrawal request by id")
	}
	return req, nil
}

func (r *WithdrawalRequestRepository) FindByPartnerID(ctx context.Context, partnerID uuid.UUID) ([]domain.WithdrawalRequest, error) {
	var requests []domain.WithdrawalRequest
	query := `SELECT * FROM withdrawal_requests WHERE partner_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &requests, query, partnerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find withdrawal requests by partner")
	}
	return requests, nil
}

func (r *WithdrawalRequestRepository) FindAll(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	var requests []domain.WithdrawalRequest
	query := `SELECT * FROM withdrawal_requests ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &requests, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find withdrawal requests")
	}
	return requests, nil
}
