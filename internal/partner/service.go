// Package partner implements the marketing affiliate side: the partner
// dashboard, the referral report, and referral recording at signup time.
package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aiplatform/internal/domain"
	"aiplatform/internal/report"
	"aiplatform/pkg/clock"
	"aiplatform/pkg/logger"
)

// Repository is the persistence surface for marketing partners.
type Repository interface {
	Update(ctx context.Context, partner *domain.MarketingPartner) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.MarketingPartner, error)
	FindByReferralCode(ctx context.Context, code string) (*domain.MarketingPartner, error)
	FindAll(ctx context.Context) ([]domain.MarketingPartner, error)
}

// ReferralRepository stores the rows behind a partner's referral report.
type ReferralRepository interface {
	Create(ctx context.Context, referral *domain.Referral) error
	FindByPartnerID(ctx context.Context, partnerID uuid.UUID) ([]domain.Referral, error)
}

// Service provides partner dashboard and referral operations.
type Service struct {
	partners  Repository
	referrals ReferralRepository
	baseURL   string
	clock     clock.Clock
	logger    logger.Logger
}

// NewService constructs a Service. baseURL is the public site root used to
// build referral links.
func NewService(partners Repository, referrals ReferralRepository, baseURL string, clk clock.Clock, log logger.Logger) *Service {
	return &Service{
		partners:  partners,
		referrals: referrals,
		baseURL:   baseURL,
		clock:     clk,
		logger:    log,
	}
}

// Summary is the partner dashboard header.
type Summary struct {
	TotalReferred     int             `json:"total_referred"`
	PaidReferrals     int             `json:"paid_referrals"`
	ConversionRate    int             `json:"conversion_rate"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	AvailableEarnings decimal.Decimal `json:"available_earnings"`
	ReferralLink      string          `json:"referral_link"`
}

// Summary builds the dashboard figures for one partner.
func (s *Service) Summary(ctx context.Context, partnerID uuid.UUID) (*Summary, error) {
	p, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalReferred:     p.TotalReferred,
		PaidReferrals:     p.PaidReferrals,
		ConversionRate:    report.ConversionRate(p.PaidReferrals, p.TotalReferred),
		TotalCommission:   p.TotalCommission,
		AvailableEarnings: p.AvailableEarnings,
		ReferralLink:      fmt.Sprintf("%s/signup?ref=%s", s.baseURL, p.ReferralCode),
	}, nil
}

// ReferralReport is a partner's filtered referral list with totals over the
// full set.
type ReferralReport struct {
	Referrals []domain.Referral      `json:"referrals"`
	Summary   report.ReferralSummary `json:"summary"`
}

// Referrals builds a partner's referral report for the given query.
func (s *Service) Referrals(ctx context.Context, partnerID uuid.UUID, q report.Query) (*ReferralReport, error) {
	all, err := s.referrals.FindByPartnerID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	filtered := report.Filter(all, q,
		func(r domain.Referral) []string {
			return []string{r.UserEmail}
		},
		func(r domain.Referral) map[string]string {
			return map[string]string{"status": string(r.Status)}
		},
	)

	return &ReferralReport{
		Referrals: filtered,
		Summary:   report.SummarizeReferrals(all),
	}, nil
}

// RecordSignup credits the partner owning referralCode with a new referral.
// Called from registration when a signup carries a code.
func (s *Service) RecordSignup(ctx context.Context, referralCode, userEmail string) error {
	p, err := s.partners.FindByReferralCode(ctx, referralCode)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	referral := &domain.Referral{
		ID:         uuid.New(),
		PartnerID:  p.ID,
		UserEmail:  userEmail,
		SignupDate: now,
		Status:     domain.ReferralStatusActive,
		TotalPaid:  decimal.Zero,
		Commission: decimal.Zero,
		CreatedAt:  now,
	}
	if err := s.referrals.Create(ctx, referral); err != nil {
		return err
	}

	p.TotalReferred++
	p.LastActivity = &now
	if err := s.partners.Update(ctx, p); err != nil {
		return err
	}

	s.logger.Info("Referral recorded", map[string]interface{}{
		"partner_id": p.ID,
		"user_email": userEmail,
	})
	return nil
}

// Activate moves a pending partner application to active. Admin only.
func (s *Service) Activate(ctx context.Context, partnerID uuid.UUID) (*domain.MarketingPartner, error) {
	return s.setStatus(ctx, partnerID, domain.PartnerStatusActive)
}

// Suspend disables an active partner account. Admin only.
func (s *Service) Suspend(ctx context.Context, partnerID uuid.UUID) (*domain.MarketingPartner, error) {
	return s.setStatus(ctx, partnerID, domain.PartnerStatusSuspended)
}

func (s *Service) setStatus(ctx context.Context, partnerID uuid.UUID, status domain.PartnerStatus) (*domain.MarketingPartner, error) {
	p, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	p.Status = status
	if err := s.partners.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Partner status changed", map[string]interface{}{
		"partner_id": p.ID,
		"status":     status,
	})
	return p, nil
}
