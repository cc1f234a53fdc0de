package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"aiplatform/internal/domain"
	"aiplatform/internal/forms"
	"aiplatform/pkg/clock"
	"aiplatform/pkg/errors"
	"aiplatform/pkg/logger"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockPartnerRepo struct {
	mock.Mock
}

func (m *MockPartnerRepo) Create(ctx context.Context, partner *domain.MarketingPartner) error {
	args := m.Called(ctx, partner)
	return args.Error(0)
}

func (m *MockPartnerRepo) FindByEmail(ctx context.Context, email string) (*domain.MarketingPartner, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MarketingPartner), args.Error(1)
}

type MockReferrals struct {
	mock.Mock
}

func (m *MockReferrals) RecordSignup(ctx context.Context, referralCode, userEmail string) error {
	args := m.Called(ctx, referralCode, userEmail)
	return args.Error(0)
}

const testSecret = "test-secret-for-signing"

func newTestService(users *MockUserRepo, partners *MockPartnerRepo, referrals *MockReferrals) *Service {
	// Pinned to the current instant so issued tokens stay inside their
	// validity window when parsed back.
	fixed := clock.Fixed{Instant: time.Now()}
	return NewService(users, partners, referrals, testSecret, time.Hour, fixed, logger.NewNop())
}

func TestRegister_Success(t *testing.T) {
	users := new(MockUserRepo)
	partners := new(MockPartnerRepo)
	referrals := new(MockReferrals)
	svc := newTestService(users, partners, referrals)

	users.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Name:            "New User",
		Email:           "new@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})

	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "user", claims["role"])
	referrals.AssertNotCalled(t, "RecordSignup", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc := newTestService(new(MockUserRepo), new(MockPartnerRepo), new(MockReferrals))

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name:            "New User",
		Email:           "new@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})

	var viol *forms.Violation
	require.ErrorAs(t, err, &viol)
	assert.Equal(t, forms.Mismatch, viol.Kind)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestService(new(MockUserRepo), new(MockPartnerRepo), new(MockReferrals))

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name:            "New User",
		Email:           "new@example.com",
		Password:        "five5",
		ConfirmPassword: "five5",
	})

	var viol *forms.Violation
	require.ErrorAs(t, err, &viol)
	assert.Equal(t, forms.TooShort, viol.Kind)
}

func TestRegister_WithReferralCode(t *testing.T) {
	users := new(MockUserRepo)
	referrals := new(MockReferrals)
	svc := newTestService(users, new(MockPartnerRepo), referrals)

	users.On("ExistsByEmail", mock.Anything, "ref@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	referrals.On("RecordSignup", mock.Anything, "SARAH25", "ref@example.com").Return(nil)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name:            "Referred User",
		Email:           "ref@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		ReferralCode:    "SARAH25",
	})

	require.NoError(t, err)
	referrals.AssertExpectations(t)
}

func TestRegister_InvalidReferralCodeDoesNotBlock(t *testing.T) {
	users := new(MockUserRepo)
	referrals := new(MockReferrals)
	svc := newTestService(users, new(MockPartnerRepo), referrals)

	users.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	referrals.On("RecordSignup", mock.Anything, "NOPE", mock.Anything).Return(errors.ErrPartnerNotFound)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Name:            "Referred User",
		Email:           "ref2@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		ReferralCode:    "NOPE",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(MockUserRepo)
	svc := newTestService(users, new(MockPartnerRepo), new(MockReferrals))

	users.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name:            "Dup",
		Email:           "taken@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})

	assert.ErrorIs(t, err, errors.ErrUserAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	users := new(MockUserRepo)
	svc := newTestService(users, new(MockPartnerRepo), new(MockReferrals))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        "john@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
	users.On("FindByEmail", mock.Anything, "john@example.com").Return(user, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.LastLogin != nil
	})).Return(nil)

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "john@example.com",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	users.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(MockUserRepo)
	svc := newTestService(users, new(MockPartnerRepo), new(MockReferrals))

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	users.On("FindByEmail", mock.Anything, "john@example.com").Return(&domain.User{
		PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "john@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestApplyPartner_RequiresTerms(t *testing.T) {
	svc := newTestService(new(MockUserRepo), new(MockPartnerRepo), new(MockReferrals))

	_, err := svc.ApplyPartner(context.Background(), &PartnerApplication{
		Name:            "Sarah Ahmed",
		Email:           "sarah@agency.example",
		Password:        "longenough",
		ConfirmPassword: "longenough",
		AgreeTerms:      false,
	})

	var viol *forms.Violation
	require.ErrorAs(t, err, &viol)
	assert.Equal(t, forms.NotAccepted, viol.Kind)
}

func TestApplyPartner_EightCharMinimum(t *testing.T) {
	svc := newTestService(new(MockUserRepo), new(MockPartnerRepo), new(MockReferrals))

	// Six characters pass the normal signup but not the marketing one.
	_, err := svc.ApplyPartner(context.Background(), &PartnerApplication{
		Name:            "Sarah Ahmed",
		Email:           "sarah@agency.example",
		Password:        "short1",
		ConfirmPassword: "short1",
		AgreeTerms:      true,
	})

	var viol *forms.Violation
	require.ErrorAs(t, err, &viol)
	assert.Equal(t, forms.TooShort, viol.Kind)
}

func TestApplyPartner_StartsPending(t *testing.T) {
	partners := new(MockPartnerRepo)
	svc := newTestService(new(MockUserRepo), partners, new(MockReferrals))

	partners.On("Create", mock.Anything, mock.AnythingOfType("*domain.MarketingPartner")).Return(nil)

	p, err := svc.ApplyPartner(context.Background(), &PartnerApplication{
		Name:            "Sarah Ahmed",
		Email:           "sarah@agency.example",
		Phone:           "+20 100 123 4567",
		Company:         "Adify",
		Password:        "longenough",
		ConfirmPassword: "longenough",
		AgreeTerms:      true,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PartnerStatusPending, p.Status)
	assert.NotEmpty(t, p.ReferralCode)
}

func TestLoginPartner_PendingRejected(t *testing.T) {
	partners := new(MockPartnerRepo)
	svc := newTestService(new(MockUserRepo), partners, new(MockReferrals))

	hash, _ := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	partners.On("FindByEmail", mock.Anything, "sarah@agency.example").Return(&domain.MarketingPartner{
		PasswordHash: string(hash),
		Status:       domain.PartnerStatusPending,
	}, nil)

	_, err := svc.LoginPartner(context.Background(), &LoginRequest{
		Email:    "sarah@agency.example",
		Password: "longenough",
	})

	assert.ErrorIs(t, err, errors.ErrPartnerNotActive)
}

func TestLoginPartner_Active(t *testing.T) {
	partners := new(MockPartnerRepo)
	svc := newTestService(new(MockUserRepo), partners, new(MockReferrals))

	hash, _ := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	partners.On("FindByEmail", mock.Anything, "sarah@agency.example").Return(&domain.MarketingPartner{
		ID:           uuid.New(),
		Email:        "sarah@agency.example",
		PasswordHash: string(hash),
		Status:       domain.PartnerStatusActive,
	}, nil)

	resp, err := svc.LoginPartner(context.Background(), &LoginRequest{
		Email:    "sarah@agency.example",
		Password: "longenough",
	})

	require.NoError(t, err)
	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "partner", token.Claims.(jwt.MapClaims)["role"])
}
