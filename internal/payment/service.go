// Package payment implements wallet recharges: users submit screenshot-backed
// payment requests and admins approve or reject them.
package payment

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

// Repository is the persistence surface for payment requests.
type Repository interface {
	Create(ctx context.Context, req *domain.PaymentRequest) error
	UpdateDecision(ctx context.Context, req *domain.PaymentRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.PaymentRequest, error)
	FindAll(ctx context.Context) ([]domain.PaymentRequest, error)
}

// UserCreditor credits an approved recharge to the user's wallet.
type UserCreditor interface {
	CreditBalance(ctx context.Context, userID uuid.UUID, amount string) error
}

// Notifier sends a decision notification to the requesting user. Delivery is
// best-effort; a failed notification never rolls back the decision.
type Notifier interface {
	Send(to, subject, body string) error
}

// Service handles wallet recharge submission and admin review.
type Service struct {
	requests Repository
	users    UserCreditor
	notifier Notifier
	clock    clock.Clock
	logger   logger.Logger
}

// NewService constructs a Service. notifier may be nil when email is not
// configured.
func NewService(requests Repository, users UserCreditor, notifier Notifier, clk clock.Clock, log logger.Logger) *Service {
	return &Service{
		requests: requests,
		users:    users,
		notifier: notifier,
		clock:    clk,
		logger:   log,
	}
}

// SubmitRequest is a user's wallet recharge submission.
type SubmitRequest struct {
	Amount        string               `json:"amount" validate:"required"`
	Method        domain.PaymentMethod `json:"method" validate:"required,oneof=mobile bank"`
	PhoneNumber   string               `json:"phone_number" validate:"omitempty,wallet_phone"`
	ScreenshotRef string               `json:"screenshot_ref"`
}

// Submit validates a recharge and records it as a pending payment request.
func (s *Service) Submit(ctx context.Context, user *domain.User, req *SubmitRequest) (*domain.PaymentRequest, error) {
	viol, err := forms.Validate(forms.FormWalletRecharge, forms.Values{
		"amount":     req.Amount,
		"screenshot": req.ScreenshotRef,
	}, forms.Context{})
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

	pr := &domain.PaymentRequest{
		ID:            uuid.New(),
		UserID:        user.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		Amount:        amount,
		Method:        req.Method,
		PhoneNumber:   req.PhoneNumber,
		ScreenshotRef: req.ScreenshotRef,
		Status:        domain.RequestStatusPending,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.requests.Create(ctx, pr); err != nil {
		return nil, err
	}

	s.logger.Info("Payment request submitted", map[string]interface{}{
		"request_id": pr.ID,
		"user_id":    user.ID,
		"amount":     amount.String(),
		"method":     req.Method,
	})

	return pr, nil
}

// Decide applies an admin approval or rejection. Approval credits the
// user's wallet; a request already decided stays as it is.
func (s *Service) Decide(ctx context.Context, requestID uuid.UUID, action review.Action, note string, adminID uuid.UUID) (*domain.PaymentRequest, error) {
	pr, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	decided, err := review.ApplyToPayment(*pr, review.Decision{
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

	if decided.Status == domain.RequestStatusApproved {
		if err := s.users.CreditBalance(ctx, decided.UserID, decided.Amount.String()); err != nil {
			s.logger.Error("Failed to credit approved recharge", map[string]interface{}{
				"error":      err.Error(),
				"request_id": decided.ID,
				"user_id":    decided.UserID,
			})
			return nil, err
		}
	}

	s.notifyDecision(&decided)

	s.logger.Info("Payment request decided", map[string]interface{}{
		"request_id": decided.ID,
		"status":     decided.Status,
		"decided_by": adminID,
	})

	return &decided, nil
}

// HistoryForUser lists a user's recharges, newest first.
func (s *Service) HistoryForUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentRequest, error) {
	return s.requests.FindByUserID(ctx, userID)
}

// Report lists all payment requests filtered by the admin's query, with
// status tallies computed over the full set.
type Report struct {
	Requests []domain.PaymentRequest `json:"requests"`
	Summary  report.RequestSummary   `json:"summary"`
}

// AdminReport builds the payment approval queue view.
func (s *Service) AdminReport(ctx context.Context, q report.Query) (*Report, error) {
	all, err := s.requests.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := report.Filter(all, q,
		func(pr domain.PaymentRequest) []string {
			return []string{pr.UserName, pr.UserEmail, pr.PhoneNumber}
		},
		func(pr domain.PaymentRequest) map[string]string {
			return map[string]string{
				"status": string(pr.Status),
				"method": string(pr.Method),
			}
		},
	)

	return &Report{
		Requests: filtered,
		Summary:  report.SummarizePaymentRequests(all),
	}, nil
}

func (s *Service) notifyDecision(pr *domain.PaymentRequest) {
	if s.notifier == nil {
		return
	}

	subject := "Your recharge request was approved"
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your wallet recharge of $%s has been approved and credited to your balance.</p>",
		pr.UserName, pr.Amount.StringFixed(2))
	if pr.Status == domain.RequestStatusRejected {
		subject = "Your recharge request was rejected"
		body = fmt.Sprintf("<p>Hi %s,</p><p>Your wallet recharge of $%s was rejected.</p><p>Note: %s</p>",
			pr.UserName, pr.Amount.StringFixed(2), pr.AdminNote)
	}

	if err := s.notifier.Send(pr.UserEmail, subject, body); err != nil {
		s.logger.Warn("Failed to send decision notification", map[string]interface{}{
			"error":      err.Error(),
			"request_id": pr.ID,
		})
	}
}
