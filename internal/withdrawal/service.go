// Package withdrawal implements partner payout requests. Earnings are
// reserved when a request is submitted and restored if an admin rejects it.
package withdrawal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aiplatform/internal/domain"
	"aiplatform/internal/forms"
	"aiplatform/internal/report"
	"aiplatform/internal/review"
	"aiplatform/pkg/clock"
	"aiplatform/pkg/logger"
)

// Withdrawals below FeeThreshold pay a flat ProcessingFee; at or above the
// threshold processing is free.
var (
	FeeThreshold  = decimal.NewFromInt(50)
	ProcessingFee = decimal.NewFromInt(2)
)

// Repository is the persistence surface for withdrawal requests.
type Repository interface {
	Create(ctx context.Context, req *domain.WithdrawalRequest) error
	UpdateDecision(ctx context.Context, req *domain.WithdrawalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error)
	FindByPartnerID(ctx context.Context, partnerID uuid.UUID) ([]domain.WithdrawalRequest, error)
	FindAll(ctx context.Context) ([]domain.WithdrawalRequest, error)
}

// EarningsLedger moves amounts out of and back into a partner's available
// earnings.
type EarningsLedger interface {
	ReserveEarnings(ctx context.Context, partnerID uuid.UUID, amount string) error
	RestoreEarnings(ctx context.Context, partnerID uuid.UUID, amount string) error
}

// Service handles withdrawal submission and admin review.
type Service struct {
	requests Repository
	ledger   EarningsLedger
	clock    clock.Clock
	logger   logger.Logger
}

// NewService constructs a Service.
func NewService(requests Repository, ledger EarningsLedger, clk clock.Clock, log logger.Logger) *Service {
	return &Service{
		requests: requests,
		ledger:   ledger,
		clock:    clk,
		logger:   log,
	}
}

// SubmitRequest is a partner's payout request. The destination fields are
// method-dependent: phone for phone_wallet, the bank fields for bank_account.
type SubmitRequest struct {
	Amount        string                  `json:"amount" validate:"required"`
	Method        domain.WithdrawalMethod `json:"method" validate:"required,oneof=phone_wallet bank_account"`
	Phone         string                  `json:"phone"`
	BankName      string                  `json:"bank_name"`
	AccountNumber string                  `json:"account_number"`
	AccountHolder string                  `json:"account_holder"`
	IBAN          string                  `json:"iban"`
}

// FeeFor returns the processing fee charged for a payout of amount.
func FeeFor(amount decimal.Decimal) decimal.Decimal {
	if amount.GreaterThanOrEqual(FeeThreshold) {
		return decimal.Zero
	}
	return ProcessingFee
}

// Submit validates a withdrawal against the partner's available earnings,
// reserves the amount, and records the request as pending.
func (s *Service) Submit(ctx context.Context, partner *domain.MarketingPartner, req *SubmitRequest) (*domain.WithdrawalRequest, error) {
	viol, err := forms.Validate(forms.FormWithdrawal, forms.Values{
		"amount":        req.Amount,
		"method":        string(req.Method),
		"phone":         req.Phone,
		"bankName":      req.BankName,
		"accountNumber": req.AccountNumber,
		"accountHolder": req.AccountHolder,
		"iban":          req.IBAN,
	}, forms.Context{
		MaxAmount:    partner.AvailableEarnings,
		HasMaxAmount: true,
	})
	if err != nil {
		return nil, err
	}
	if viol != nil {
		return nil, viol
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	if err := s.ledger.ReserveEarnings(ctx, partner.ID, amount.String()); err != nil {
		return nil, err
	}

	wr := &domain.WithdrawalRequest{
		ID:        uuid.New(),
		PartnerID: partner.ID,
		Amount:    amount,
		Fee:       FeeFor(amount),
		Method:    req.Method,
		Recipient: domain.RecipientInfo{
			Phone:         req.Phone,
			BankName:      req.BankName,
			AccountNumber: req.AccountNumber,
			AccountHolder: req.AccountHolder,
			IBAN:          req.IBAN,
		},
		Status:    domain.RequestStatusPending,
		CreatedAt: s.clock.Now(),
	}

	if err := s.requests.Create(ctx, wr); err != nil {
		// Put the earnings back so a storage failure does not strand them.
		if restoreErr := s.ledger.RestoreEarnings(ctx, partner.ID, amount.String()); restoreErr != nil {
			s.logger.Error("Failed to restore earnings after create failure", map[string]interface{}{
				"error":      restoreErr.Error(),
				"partner_id": partner.ID,
				"amount":     amount.String(),
			})
		}
		return nil, err
	}

	s.logger.Info("Withdrawal request submitted", map[string]interface{}{
		"request_id": wr.ID,
		"partner_id": partner.ID,
		"amount":     amount.String(),
		"fee":        wr.Fee.String(),
		"method":     req.Method,
	})

	return wr, nil
}

// Decide applies an admin approval or rejection. Rejection restores the
// reserved amount to the partner's available earnings.
func (s *Service) Decide(ctx context.Context, requestID uuid.UUID, action review.Action, note string, adminID uuid.UUID) (*domain.WithdrawalRequest, error) {
	wr, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	decided, err := review.ApplyToWithdrawal(*wr, review.Decision{
		Action:    action,
		Note:      note,
		DecidedBy: adminID,
		DecidedAt: s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.requests.UpdateDecision(ctx, &decided); err != nil {
		return nil, err
	}

	if decided.Status == domain.RequestStatusRejected {
		if err := s.ledger.RestoreEarnings(ctx, decided.PartnerID, decided.Amount.String()); err != nil {
			s.logger.Error("Failed to restore earnings on rejection", map[string]interface{}{
				"error":      err.Error(),
				"request_id": decided.ID,
				"partner_id": decided.PartnerID,
			})
			return nil, err
		}
	}

	s.logger.Info("Withdrawal request decided", map[string]interface{}{
		"request_id": decided.ID,
		"status":     decided.Status,
		"decided_by": adminID,
	})

	return &decided, nil
}

// HistoryForPartner lists a partner's withdrawals, newest first.
func (s *Service) HistoryForPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.WithdrawalRequest, error) {
	return s.requests.FindByPartnerID(ctx, partnerID)
}

// Report is the admin withdrawal queue view.
type Report struct {
	Requests []domain.WithdrawalRequest `json:"requests"`
	Summary  report.RequestSummary      `json:"summary"`
}

// AdminReport lists all withdrawal requests filtered by the admin's query,
// with status tallies computed over the full set.
func (s *Service) AdminReport(ctx context.Context, q report.Query) (*Report, error) {
	all, err := s.requests.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := report.Filter(all, q,
		func(wr domain.WithdrawalRequest) []string {
			return []string{
				wr.Recipient.Phone,
				wr.Recipient.AccountHolder,
				wr.Recipient.AccountNumber,
			}
		},
		func(wr domain.WithdrawalRequest) map[string]string {
			return map[string]string{
				"status": string(wr.Status),
				"method": string(wr.Method),
			}
		},
	)

	return &Report{
		Requests: filtered,
		Summary:  report.SummarizeWithdrawals(all),
	}, nil
}
