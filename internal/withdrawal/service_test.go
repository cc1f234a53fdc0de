package withdrawal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"aiplatform/internal/domain"
	"aiplatform/internal/forms"
	"aiplatform/internal/review"
	"aiplatform/pkg/clock"
	"aiplatform/pkg/errors"
	"aiplatform/pkg/logger"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req *domain.WithdrawalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRepository) UpdateDecision(ctx context.Context, req *domain.WithdrawalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawalRequest), args.Error(1)
}

func (m *MockRepository) FindByPartnerID(ctx context.Context, partnerID uuid.UUID) ([]domain.WithdrawalRequest, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WithdrawalRequest), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WithdrawalRequest), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ReserveEarnings(ctx context.Context, partnerID uuid.UUID, amount string) error {
	args := m.Called(ctx, partnerID, amount)
	return args.Error(0)
}

func (m *MockLedger) RestoreEarnings(ctx context.Context, partnerID uuid.UUID, amount string) error {
	args := m.Called(ctx, partnerID, amount)
	return args.Error(0)
}

func newTestService(repo *MockRepository, ledger *MockLedger) *Service {
	fixed := clock.Fixed{Instant: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)}
	return NewService(repo, ledger, fixed, logger.NewNop())
}

func testPartner(earnings int64) *domain.MarketingPartner {
	return &domain.MarketingPartner{
		ID:                uuid.New(),
		Name:              "Sarah Ahmed",
		Email:             "sarah@agency.example",
		AvailableEarnings: decimal.NewFromInt(earnings),
	}
}

func TestFeeFor(t *testing.T) {
	tests := []struct {
		amount int64
		fee    int64
	}{
		{10, 2},
		{49, 2},
		{50, 0},
		{500, 0},
	}
	for _, tt := range tests {
		fee := FeeFor(decimal.NewFromInt(tt.amount))
		assert.True(t, fee.Equal(decimal.NewFromInt(tt.fee)), "amount %d", tt.amount)
	}
}

func TestSubmit_PhoneWallet(t *testing.T) {
	repo := new(MockRepository)
	ledger := new(MockLedger)
	svc := newTestService(repo, ledger)
	partner := testPartner(100)

	ledger.On("ReserveEarnings", mock.Anything, partner.ID, "40").Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.WithdrawalRequest")).Return(nil)

	wr, err := svc.Submit(context.Background(), partner, &SubmitRequest{
		Amount: "40",
		Method: domain.WithdrawalMethodPhoneWallet,
		Phone:  "+20 100 123 4567",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, wr.Status)
	assert.True(t, wr.Fee.Equal(decimal.NewFromInt(2)), "below 50 pays the flat fee")
	assert.Equal(t, "+20 100 123 4567", wr.Recipient.Phone)
	ledger.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestSubmit_BankAccountRequiresFields(t *testing.T) {
	repo := new(MockRepository)
	ledger := new(MockLedger)
	svc := newTestService(repo, ledger)

	_, err := svc.Submit(context.Background(), testPartner(100), &SubmitRequest{
		Amount:   "60",
		Method:   domain.WithdrawalMethodBankAccount,
		BankName: "National Bank",
		// accountNumber and accountHolder missing
	})

	require.Error(t, err)
	var viol *forms.Violation
	require.ErrorAs(t, err, &viol)
	assert.Equal(t, forms.MissingField, viol.Kind)
	assert.Equal(t, "accountNumber", viol.Field)
	ledger.AssertNotCalled(t, "ReserveEarnings", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_AmountAboveEarnings(t *testing.T) {
	repo := new(MockRepository)
	ledger := new(MockLedger)
	svc := newTestService(repo, ledger)

	_, err := svc.Submit(context.Background(), testPartner(30), &SubmitRequest{
		Amount: "40",
		Method: domain.WithdrawalMethodPhoneWallet,
		Phone:  "+20 100 123 4567",
	})

	require.Error(t, err)
	var viol *forms.Violation
	require.ErrorAs(t, err, &viol)
	assert.Equal(t, forms.OutOfRange, viol.Kind)
	assert.Equal(t, "amount", viol.Field)
}

func TestSubmit_BelowMinimum(t *testing.T) {
	repo := new(MockRepository)
	ledger := new(MockLedger)
	svc := newTestService(repo, ledger)

	_, err := svc.Submit(context.Background(), testPartner(100), &SubmitRequest{
		Amount: "5",
		Method: domain.WithdrawalMethodPhoneWallet,
		Phone:  "+20 100 123 4567",
	})

	require.Error(t, err)
	var viol *forms.Violation
	require.ErrorAs(t, err, &viol)
	assert.Equal(t, forms.OutOfRange, viol.Kind)
}

func TestSubmit_RestoresEarningsWhenCreateFails(t *testing.T) {
	repo := new(MockRepository)
	ledger := new(MockLedger)
	svc := newTestService(repo, ledger)
	partner := testPartner(100)

	ledger.On("ReserveEarnings", mock.Anything, partner.ID, "40").Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
	ledger.On("RestoreEarnings", mock.Anything, partner.ID, "40").Return(nil)

	_, err := svc.Submit(context.Background(), partner, &SubmitRequest{
		Amount: "40",
		Method: domain.WithdrawalMethodPhoneWallet,
		Phone:  "+20 100 123 4567",
	})

	require.Error(t, err)
	ledger.AssertExpectations(t)
}

func TestDecide_RejectRestoresEarnings(t *testing.T) {
	repo := new(MockRepository)
	ledger := new(MockLedger)
	svc := newTestService(repo, ledger)

	partnerID := uuid.New()
	pending := &domain.WithdrawalRequest{
		ID:        uuid.New(),
		PartnerID: partnerID,
		Amount:    decimal.NewFromInt(40),
		Status:    domain.RequestStatusPending,
	}

	repo.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	repo.On("UpdateDecision", mock.Anything, mock.AnythingOfType("*domain.WithdrawalRequest")).Return(nil)
	ledger.On("RestoreEarnings", mock.Anything, partnerID, "40").Return(nil)

	decided, err := svc.Decide(context.Background(), pending.ID, review.ActionReject, "details mismatch", uuid.New())

	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, decided.Status)
	ledger.AssertExpectations(t)
}

func TestDecide_ApproveKeepsReservation(t *testing.T) {
	repo := new(MockRepository)
	ledger := new(MockLedger)
	svc := newTestService(repo, ledger)

	pending := &domain.WithdrawalRequest{
		ID:        uuid.New(),
		PartnerID: uuid.New(),
		Amount:    decimal.NewFromInt(60),
		Status:    domain.RequestStatusPending,
	}

	repo.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	repo.On("UpdateDecision", mock.Anything, mock.AnythingOfType("*domain.WithdrawalRequest")).Return(nil)

	decided, err := svc.Decide(context.Background(), pending.ID, review.ActionApprove, "", uuid.New())

	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, decided.Status)
	ledger.AssertNotCalled(t, "RestoreEarnings", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecide_AlreadyDecided(t *testing.T) {
	repo := new(MockRepository)
	ledger := new(MockLedger)
	svc := newTestService(repo, ledger)

	rejected := &domain.WithdrawalRequest{
		ID:     uuid.New(),
		Status: domain.RequestStatusRejected,
	}

	repo.On("FindByID", mock.Anything, rejected.ID).Return(rejected, nil)

	_, err := svc.Decide(context.Background(), rejected.ID, review.ActionApprove, "", uuid.New())

	assert.ErrorIs(t, err, errors.ErrRequestAlreadyDecided)
	repo.AssertNotCalled(t, "UpdateDecision", mock.Anything, mock.Anything)
}
