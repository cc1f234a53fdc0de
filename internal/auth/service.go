// Package auth implements registration, login, and token issuance for end
// users and marketing partners, plus TOTP two-factor auth for admins.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"aiplatform/internal/domain"
	"aiplatform/internal/forms"
	"aiplatform/pkg/clock"
	"aiplatform/pkg/errors"
	"aiplatform/pkg/logger"
)

// UserRepository is the persistence surface the auth service needs for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// PartnerRepository is the persistence surface for marketing partners.
type PartnerRepository interface {
	Create(ctx context.Context, partner *domain.MarketingPartner) error
	FindByEmail(ctx context.Context, email string) (*domain.MarketingPartner, error)
}

// ReferralRecorder credits a partner when a signup carries their code.
type ReferralRecorder interface {
	RecordSignup(ctx context.Context, referralCode, userEmail string) error
}

// Service provides registration, login, and token issuance.
type Service struct {
	users     UserRepository
	partners  PartnerRepository
	referrals ReferralRecorder
	jwtSecret string
	jwtExpiry time.Duration
	clock     clock.Clock
	logger    logger.Logger
}

// NewService constructs a Service.
func NewService(
	users UserRepository,
	partners PartnerRepository,
	referrals ReferralRecorder,
	jwtSecret string,
	jwtExpiry time.Duration,
	clk clock.Clock,
	log logger.Logger,
) *Service {
	return &Service{
		users:     users,
		partners:  partners,
		referrals: referrals,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		clock:     clk,
		logger:    log,
	}
}

// RegisterRequest captures the normal signup form.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	ReferralCode    string `json:"referral_code"`
}

// PartnerApplication captures the marketing signup form.
type PartnerApplication struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,wallet_phone"`
	Company         string `json:"company" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	AgreeTerms      bool   `json:"agree_terms"`
}

// LoginRequest captures credentials for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned on successful register/login with issued tokens.
type TokenResponse struct {
	AccessToken  string                   `json:"access_token"`
	RefreshToken string                   `json:"refresh_token"`
	ExpiresAt    time.Time                `json:"expires_at"`
	User         *domain.User             `json:"user,omitempty"`
	Partner      *domain.MarketingPartner `json:"partner,omitempty"`
}

// Register creates a new end user and returns tokens. A referral code, when
// present and valid, credits the owning partner; an invalid code does not
// block the signup.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	if viol, err := forms.Validate(forms.FormNormalSignup, forms.Values{
		"password":        req.Password,
		"confirmPassword": req.ConfirmPassword,
	}, forms.Context{}); err != nil {
		return nil, err
	} else if viol != nil {
		return nil, viol
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrUserAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(passwordHash),
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		Plan:         "free",
		Balance:      decimal.Zero,
		TotalSpent:   decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.ReferralCode != "" {
		code := req.ReferralCode
		user.ReferralCode = &code
	}

	if err := s.users.Create(ctx, user); err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, errors.ErrUserAlreadyExists
		}
		return nil, err
	}

	if req.ReferralCode != "" {
		if err := s.referrals.RecordSignup(ctx, req.ReferralCode, user.Email); err != nil {
			s.logger.Warn("Failed to record referral signup", map[string]interface{}{
				"error":         err.Error(),
				"referral_code": req.ReferralCode,
				"user_id":       user.ID,
			})
		}
	}

	return s.issueUserTokens(user)
}

// Login authenticates an end user and returns tokens.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}
	if user.Status == domain.UserStatusCancelled {
		return nil, errors.ErrInactiveAccount
	}

	now := s.clock.Now()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.issueUserTokens(user)
}

// ApplyPartner submits a marketing partner application. The account starts
// pending and cannot log in until an admin activates it.
func (s *Service) ApplyPartner(ctx context.Context, req *PartnerApplication) (*domain.MarketingPartner, error) {
	agree := "false"
	if req.AgreeTerms {
		agree = "true"
	}
	if viol, err := forms.Validate(forms.FormMarketingSignup, forms.Values{
		"password":        req.Password,
		"confirmPassword": req.ConfirmPassword,
		"agreeTerms":      agree,
	}, forms.Context{}); err != nil {
		return nil, err
	} else if viol != nil {
		return nil, viol
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	partner := &domain.MarketingPartner{
		ID:                uuid.New(),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Company:           req.Company,
		PasswordHash:      string(passwordHash),
		Status:            domain.PartnerStatusPending,
		ReferralCode:      newReferralCode(),
		TotalCommission:   decimal.Zero,
		AvailableEarnings: decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.partners.Create(ctx, partner); err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, errors.ErrPartnerAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("Marketing partner application received", map[string]interface{}{
		"partner_id": partner.ID,
		"company":    partner.Company,
	})

	return partner, nil
}

// LoginPartner authenticates a marketing partner.
func (s *Service) LoginPartner(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	partner, err := s.partners.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(partner.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}
	if partner.Status != domain.PartnerStatusActive {
		return nil, errors.ErrPartnerNotActive
	}

	return s.issueTokens(partner.ID, partner.Email, "partner", nil, partner)
}

func (s *Service) issueUserTokens(user *domain.User) (*TokenResponse, error) {
	return s.issueTokens(user.ID, user.Email, string(user.Role), user, nil)
}

func (s *Service) issueTokens(
	id uuid.UUID,
	email, role string,
	user *domain.User,
	partner *domain.MarketingPartner,
) (*TokenResponse, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.jwtExpiry)

	claims := jwt.MapClaims{
		"sub":   id.String(),
		"email": email,
		"role":  role,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	refreshToken, err := generateRandomToken(32)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user,
		Partner:      partner,
	}, nil
}

func generateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// newReferralCode returns a short URL-safe code for partner tracking links.
func newReferralCode() string {
	code, err := generateRandomToken(6)
	if err != nil {
		// crypto/rand failing means the process is in much deeper trouble
		return uuid.New().String()[:8]
	}
	return code
}
