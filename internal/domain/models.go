// Package domain defines the core records of the AI Platform: users,
// marketing partners, services, and their referral/subscription links.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRole separates end users from administrators.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UserStatus represents a user's account state.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusCancelled UserStatus = "cancelled"
)

// User represents a platform end user (or admin).
type User struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Email         string          `json:"email" db:"email"`
	Name          string          `json:"name" db:"name"`
	PasswordHash  string          `json:"-" db:"password_hash"`
	Role          UserRole        `json:"role" db:"role"`
	Status        UserStatus      `json:"status" db:"status"`
	Plan          string          `json:"plan" db:"plan"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	TotalSpent    decimal.Decimal `json:"total_spent" db:"total_spent"`
	ReferralCode  *string         `json:"referral_code,omitempty" db:"referral_code"`
	TOTPSecret    *string         `json:"-" db:"totp_secret"`
	IsTOTPEnabled bool            `json:"is_totp_enabled" db:"is_totp_enabled"`
	LastLogin     *time.Time      `json:"last_login,omitempty" db:"last_login"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// PartnerStatus represents a marketing partner's account state.
type PartnerStatus string

const (
	PartnerStatusActive    PartnerStatus = "active"
	PartnerStatusPending   PartnerStatus = "pending"
	PartnerStatusSuspended PartnerStatus = "suspended"
)

// MarketingPartner is an affiliate who refers end users via a tracked
// referral link and earns commission on their payments.
//
// Invariants: PaidReferrals <= TotalReferred and
// AvailableEarnings <= TotalCommission.
type MarketingPartner struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Email             string          `json:"email" db:"email"`
	Phone             string          `json:"phone" db:"phone"`
	Company           string          `json:"company" db:"company"`
	PasswordHash      string          `json:"-" db:"password_hash"`
	Status            PartnerStatus   `json:"status" db:"status"`
	ReferralCode      string          `json:"referral_code" db:"referral_code"`
	TotalReferred     int             `json:"total_referred" db:"total_referred"`
	PaidReferrals     int             `json:"paid_referrals" db:"paid_referrals"`
	TotalCommission   decimal.Decimal `json:"total_commission" db:"total_commission"`
	AvailableEarnings decimal.Decimal `json:"available_earnings" db:"available_earnings"`
	LastActivity      *time.Time      `json:"last_activity,omitempty" db:"last_activity"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// ReferralStatus mirrors the referred user's account state as seen on the
// partner's report.
type ReferralStatus string

const (
	ReferralStatusActive    ReferralStatus = "active"
	ReferralStatusInactive  ReferralStatus = "inactive"
	ReferralStatusCancelled ReferralStatus = "cancelled"
)

// Referral is one row of a partner's referral report.
type Referral struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	PartnerID   uuid.UUID       `json:"partner_id" db:"partner_id"`
	UserEmail   string          `json:"user_email" db:"user_email"`
	SignupDate  time.Time       `json:"signup_date" db:"signup_date"`
	Status      ReferralStatus  `json:"status" db:"status"`
	TotalPaid   decimal.Decimal `json:"total_paid" db:"total_paid"`
	Commission  decimal.Decimal `json:"commission" db:"commission"`
	LastPayment *time.Time      `json:"last_payment,omitempty" db:"last_payment"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Service is an entry in the AI service catalog.
type Service struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Features    FeatureList     `json:"features" db:"features"`
	Popular     bool            `json:"popular" db:"popular"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Subscription links a user to a service. One row per user/service pair.
type Subscription struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ServiceID uuid.UUID `json:"service_id" db:"service_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
