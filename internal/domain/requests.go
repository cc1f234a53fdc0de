package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus is the review state shared by payment and withdrawal
// requests. Pending is the only non-terminal state.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// PaymentMethod identifies how a user paid for a wallet recharge.
type PaymentMethod string

const (
	PaymentMethodMobile PaymentMethod = "mobile"
	PaymentMethodBank   PaymentMethod = "bank"
)

// PaymentRequest is a user's wallet recharge backed by screenshot proof,
// reviewed manually by an admin.
type PaymentRequest struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	UserName      string          `json:"user_name" db:"user_name"`
	UserEmail     string          `json:"user_email" db:"user_email"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Method        PaymentMethod   `json:"method" db:"method"`
	PhoneNumber   string          `json:"phone_number" db:"phone_number"`
	ScreenshotRef string          `json:"screenshot_ref" db:"screenshot_ref"`
	Status        RequestStatus   `json:"status" db:"status"`
	AdminNote     string          `json:"admin_note" db:"admin_note"`
	DecidedBy     *uuid.UUID      `json:"decided_by,omitempty" db:"decided_by"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
}

// WithdrawalMethod identifies the payout channel for partner earnings.
type WithdrawalMethod string

const (
	WithdrawalMethodPhoneWallet WithdrawalMethod = "phone_wallet"
	WithdrawalMethodBankAccount WithdrawalMethod = "bank_account"
)

// RecipientInfo is the method-shaped payout destination. Phone is set for
// phone_wallet withdrawals; the bank fields for bank_account ones.
type RecipientInfo struct {
	Phone         string `json:"phone,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
	IBAN          string `json:"iban,omitempty"`
}

// Value implements driver.Valuer so RecipientInfo persists as JSONB.
func (r RecipientInfo) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *RecipientInfo) Scan(value interface{}) error {
	if value == nil {
		*r = RecipientInfo{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("recipient info: unsupported scan type")
	}
	return json.Unmarshal(b, r)
}

// WithdrawalRequest is a partner's payout of available earnings.
type WithdrawalRequest struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	PartnerID   uuid.UUID        `json:"partner_id" db:"partner_id"`
	Amount      decimal.Decimal  `json:"amount" db:"amount"`
	Fee         decimal.Decimal  `json:"fee" db:"fee"`
	Method      WithdrawalMethod `json:"method" db:"method"`
	Recipient   RecipientInfo    `json:"recipient_info" db:"recipient_info"`
	Status      RequestStatus    `json:"status" db:"status"`
	AdminNote   string           `json:"admin_note" db:"admin_note"`
	DecidedBy   *uuid.UUID       `json:"decided_by,omitempty" db:"decided_by"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty" db:"processed_at"`
}

// FeatureList is an ordered list of service features stored as JSONB.
type FeatureList []string

// Value implements driver.Valuer.
func (f FeatureList) Value() (driver.Value, error) {
	if f == nil {
		f = FeatureList{}
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner.
func (f *FeatureList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("feature list: unsupported scan type")
	}
	return json.Unmarshal(b, f)
}
