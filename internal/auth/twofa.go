package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"aiplatform/internal/domain"
	"aiplatform/pkg/errors"
)

const totpIssuer = "AI Platform"

// TwoFactorSetup carries the provisioning material for an authenticator app.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// SetupTwoFactor generates a TOTP secret for an admin account and stores it
// unconfirmed. The secret only takes effect after VerifyTwoFactor succeeds
// with a code from the authenticator.
func (s *Service) SetupTwoFactor(ctx context.Context, userID uuid.UUID) (*TwoFactorSetup, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, errors.ErrAccessDenied
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate totp secret")
	}

	secret := key.Secret()
	user.TOTPSecret = &secret
	user.IsTOTPEnabled = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &TwoFactorSetup{
		Secret:     secret,
		OTPAuthURL: key.URL(),
	}, nil
}

// VerifyTwoFactor checks a TOTP code against the stored secret and, on the
// first successful check, marks two-factor as enabled.
func (s *Service) VerifyTwoFactor(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == nil {
		return errors.ErrTwoFactorNotEnabled
	}

	if !totp.Validate(code, *user.TOTPSecret) {
		return errors.ErrInvalidTwoFactor
	}

	if !user.IsTOTPEnabled {
		user.IsTOTPEnabled = true
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		s.logger.Info("Two-factor auth enabled", map[string]interface{}{
			"user_id": user.ID,
		})
	}
	return nil
}
