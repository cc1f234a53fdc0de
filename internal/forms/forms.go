package forms

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Form names understood by Validate.
const (
	FormWithdrawal      = "withdrawal"
	FormNormalSignup    = "normal_signup"
	FormMarketingSignup = "marketing_signup"
	FormWalletRecharge  = "wallet_recharge"
)

// Input formats shared with pkg/validator.
var (
	PhoneRe         = regexp.MustCompile(`^\+?[\d\s\-\(\)]+$`)
	AccountNumberRe = regexp.MustCompile(`^[\d]+$`)
	IBANRe          = regexp.MustCompile(`^[A-Z0-9]{2}[0-9]{2}[A-Z0-9]{1,30}$`)
)

// Password minimums differ between the two signup forms. Both thresholds
// are observed product behavior; collapsing them is a product decision,
// not an implementation one.
const (
	NormalPasswordMinLength    = 6
	MarketingPasswordMinLength = 8
)

// MinWithdrawalAmount is the smallest withdrawal the platform pays out.
var MinWithdrawalAmount = decimal.NewFromInt(10)

// MinRechargeAmount is the smallest accepted wallet recharge.
var MinRechargeAmount = decimal.NewFromInt(1)

var registry = map[string]RuleSet{
	// Amount bounds first, then the method-dependent destination fields.
	// The balance cap comes from Context.
	FormWithdrawal: {
		Name: FormWithdrawal,
		Rules: []Rule{
			Required("amount"),
			NumericRangeBalance("amount", MinWithdrawalAmount),
			WhenEquals("method", "phone_wallet",
				Required("phone"),
				Pattern("phone", PhoneRe),
			),
			WhenEquals("method", "bank_account",
				Required("bankName"),
				Required("accountNumber"),
				Required("accountHolder"),
				Pattern("accountNumber", AccountNumberRe),
				OptionalPattern("iban", IBANRe),
			),
		},
	},

	// The signup forms check cross-field and strength rules only; field
	// presence is enforced on the request DTOs.
	FormNormalSignup: {
		Name: FormNormalSignup,
		Rules: []Rule{
			Matches("password", "confirmPassword"),
			MinLength("password", NormalPasswordMinLength),
		},
	},

	FormMarketingSignup: {
		Name: FormMarketingSignup,
		Rules: []Rule{
			Matches("password", "confirmPassword"),
			MinLength("password", MarketingPasswordMinLength),
			MustAccept("agreeTerms"),
		},
	},

	FormWalletRecharge: {
		Name: FormWalletRecharge,
		Rules: []Rule{
			Required("amount"),
			NumericMin("amount", MinRechargeAmount),
			Required("screenshot"),
		},
	},
}

// Validate runs the named rule set over the values. It returns nil when
// the form is acceptable, a *Violation for the first failed rule, and an
// error only for an unknown form name.
func Validate(form string, values Values, ctx Context) (*Violation, error) {
	rs, ok := registry[form]
	if !ok {
		return nil, fmt.Errorf("unknown form %q", form)
	}
	return rs.Validate(values, ctx), nil
}
