package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"aiplatform/internal/domain"
	"aiplatform/pkg/errors"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, email, name, password_hash, role, status, plan, balance, total_spent,
			referral_code, totp_secret, is_totp_enabled, created_at, updated_at
		) VALUES (
			:id, :email, :name, :password_hash, :role, :status, :plan, :balance, :total_spent,
			:referral_code, :totp_secret, :is_totp_enabled, :created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, user)
	return errors.Wrap(err, "failed to create user")
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	query := `
		UPDATE users SET
			name = :name,
			status = :status,
			plan = :plan,
			balance = :balance,
			total_spent = :total_spent,
			totp_secret = :totp_secret,
			is_totp_enabled = :is_totp_enabled,
			last_login = :last_login,
			updated_at = :updated_at
		WHERE id = :id
	`
	_, err := r.db.NamedExecContext(ctx, query, user)
	return errors.Wrap(err, "failed to update user")
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT * FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to find user by id")
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT * FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to find user by email")
	}
	return user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	err := r.db.GetContext(ctx, &exists, query, email)
	return exists, errors.Wrap(err, "failed to check user existence")
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	query := `SELECT * FROM users ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find users")
	}
	return users, nil
}

// CreditBalance atomically adds amount to a user's balance and total spent.
// Used when a recharge is approved.
func (r *UserRepository) CreditBalance(ctx context.Context, userID uuid.UUID, amount string) error {
	query := `
		UPDATE users SET
			balance = balance + $1,
			total_spent = total_spent + $1,
			updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return errors.Wrap(err, "failed to credit balance")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read credit result")
	}
	if rows == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

// DebitBalance atomically subtracts amount from a user's balance, failing
// when the balance would go negative.
func (r *UserRepository) DebitBalance(ctx context.Context, userID uuid.UUID, amount string) error {
	query := `
		UPDATE users SET
			balance = balance - $1,
			updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`
	result, err := r.db.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return errors.Wrap(err, "failed to debit balance")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read debit result")
	}
	if rows == 0 {
		return errors.ErrInsufficientBalance
	}
	return nil
}
