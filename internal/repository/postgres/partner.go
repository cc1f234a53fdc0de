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

type PartnerRepository struct {
	db *sqlx.DB
}

func NewPartnerRepository(db *sqlx.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, partner *domain.MarketingPartner) error {
	query := `
		INSERT INTO marketing_partners (
			id, name, email, phone, company, password_hash, status, referral_code,
			total_referred, paid_referrals, total_commission, available_earnings,
			created_at, updated_at
		) VALUES (
			:id, :name, :email, :phone, :company, :password_hash, :status, :referral_code,
			:total_referred, :paid_referrals, :total_commission, :available_earnings,
			:created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, partner)
	return errors.Wrap(err, "failed to create marketing partner")
}

func (r *PartnerRepository) Update(ctx context.Context, partner *domain.MarketingPartner) error {
	partner.UpdatedAt = time.Now()
	query := `
		UPDATE marketing_partners SET
			status = :status,
			total_referred = :total_referred,
			paid_referrals = :paid_referrals,
			total_commission = :total_commission,
			available_earnings = :available_earnings,
			last_activity = :last_activity,
			updated_at = :updated_at
		WHERE id = :id
	`
	_, err := r.db.NamedExecContext(ctx, query, partner)
	return errors.Wrap(err, "failed to update marketing partner")
}

func (r *PartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MarketingPartner, error) {
	partner := &domain.MarketingPartner{}
	query := `SELECT * FROM marketing_partners WHERE id = $1`
	err := r.db.GetContext(ctx, partner, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrPartnerNotFound
		}
		return nil, errors.Wrap(err, "failed to find partner by id")
	}
	return partner, nil
}

func (r *PartnerRepository) FindByEmail(ctx context.Context, email string) (*domain.MarketingPartner, error) {
	partner := &domain.MarketingPartner{}
	query := `SELECT * FROM marketing_partners WHERE email = $1`
	err := r.db.GetContext(ctx, partner, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrPartnerNotFound
		}
		return nil, errors.Wrap(err, "failed to find partner by email")
	}
	return partner, nil
}

func (r *PartnerRepository) FindByReferralCode(ctx context.Context, code string) (*domain.MarketingPartner, error) {
	partner := &domain.MarketingPartner{}
	query := `SELECT * FROM marketing_partners WHERE referral_code = $1`
	err := r.db.GetContext(ctx, partner, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrPartnerNotFound
		}
		return nil, errors.Wrap(err, "failed to find partner by referral code")
	}
	return partner, nil
}

func (r *PartnerRepository) FindAll(ctx context.Context) ([]domain.MarketingPartner, error) {
	var partners []domain.MarketingPartner
	query := `SELECT * FROM marketing_partners ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &partners, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find marketing partners")
	}
	return partners, nil
}

// ReserveEarnings moves amount out of available earnings at withdrawal
// submission time, failing when earnings are insufficient.
func (r *PartnerRepository) ReserveEarnings(ctx context.Context, partnerID uuid.UUID, amount string) error {
	query := `
		UPDATE marketing_partners SET
			available_earnings = available_earnings - $1,
			updated_at = NOW()
		WHERE id = $2 AND available_earnings >= $1
	`
	result, err := r.db.ExecContext(ctx, query, amount, partnerID)
	if err != nil {
		return errors.Wrap(err, "failed to reserve earnings")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read reserve result")
	}
	if rows == 0 {
		return errors.ErrInsufficientEarnings
	}
	return nil
}

// RestoreEarnings returns amount to available earnings after a rejected
// withdrawal.
func (r *PartnerRepository) RestoreEarnings(ctx context.Context, partnerID uuid.UUID, amount string) error {
	query := `
		UPDATE marketing_partners SET
			available_earnings = available_earnings + $1,
			updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, amount, partnerID)
	if err != nil {
		return errors.Wrap(err, "failed to restore earnings")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read restore result")
	}
	if rows == 0 {
		return errors.ErrPartnerNotFound
	}
	return nil
}

// ReferralRepository stores the rows behind a partner's referral report.
type ReferralRepository struct {
	db *sqlx.DB
}

func NewReferralRepository(db *sqlx.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func (r *ReferralRepository) Create(ctx context.Context, referral *domain.Referral) error {
	query := `
		INSERT INTO referrals (
			id, partner_id, user_email, signup_date, status, total_paid, commission,
			last_payment, created_at
		) VALUES (
			:id, :partner_id, :user_email, :signup_date, :status, :total_paid, :commission,
			:last_payment, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, referral)
	return errors.Wrap(err, "failed to create referral")
}

func (r *ReferralRepository) FindByPartnerID(ctx context.Context, partnerID uuid.UUID) ([]domain.Referral, error) {
	var referrals []domain.Referral
	query := `SELECT * FROM referrals WHERE partner_id = $1 ORDER BY signup_date DESC`
	err := r.db.SelectContext(ctx, &referrals, query, partnerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find referrals by partner")
	}
	return referrals, nil
}
