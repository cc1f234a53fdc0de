package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"aiplatform/internal/domain"
	"aiplatform/pkg/errors"
)

func TestSetupTwoFactor_AdminOnly(t *testing.T) {
	users := new(MockUserRepo)
	svc := newTestService(users, new(MockPartnerRepo), new(MockReferrals))

	regular := &domain.User{ID: uuid.New(), Role: domain.RoleUser}
	users.On("FindByID", mock.Anything, regular.ID).Return(regular, nil)

	_, err := svc.SetupTwoFactor(context.Background(), regular.ID)

	assert.ErrorIs(t, err, errors.ErrAccessDenied)
}

func TestSetupThenVerifyTwoFactor(t *testing.T) {
	users := new(MockUserRepo)
	svc := newTestService(users, new(MockPartnerRepo), new(MockReferrals))

	admin := &domain.User{
		ID:    uuid.New(),
		Email: "admin@example.com",
		Role:  domain.RoleAdmin,
	}
	users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)
	users.On("Update", mock.Anything, admin).Return(nil)

	setup, err := svc.SetupTwoFactor(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.OTPAuthURL, "otpauth://")
	require.NotNil(t, admin.TOTPSecret)
	assert.False(t, admin.IsTOTPEnabled, "not enabled until a code is verified")

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.VerifyTwoFactor(context.Background(), admin.ID, code))
	assert.True(t, admin.IsTOTPEnabled)
}

func TestVerifyTwoFactor_WrongCode(t *testing.T) {
	users := new(MockUserRepo)
	svc := newTestService(users, new(MockPartnerRepo), new(MockReferrals))

	secret := "JBSWY3DPEHPK3PXP"
	admin := &domain.User{
		ID:         uuid.New(),
		Role:       domain.RoleAdmin,
		TOTPSecret: &secret,
	}
	users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)

	err := svc.VerifyTwoFactor(context.Background(), admin.ID, "000000")

	assert.ErrorIs(t, err, errors.ErrInvalidTwoFactor)
}

func TestVerifyTwoFactor_NotSetUp(t *testing.T) {
	users := new(MockUserRepo)
	svc := newTestService(users, new(MockPartnerRepo), new(MockReferrals))

	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)

	err := svc.VerifyTwoFactor(context.Background(), admin.ID, "123456")

	assert.ErrorIs(t, err, errors.ErrTwoFactorNotEnabled)
}
