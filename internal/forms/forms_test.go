package forms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceCtx(balance int64) Context {
	return Context{MaxAmount: decimal.NewFromInt(balance), HasMaxAmount: true}
}

func TestWithdrawalAmountBounds(t *testing.T) {
	base := Values{
		"method": "phone_wallet",
		"phone":  "+1 234 567 8900",
	}

	cases := []struct {
		name   string
		amount string
		want   *Violation
	}{
		{"below minimum", "5", &Violation{Kind: OutOfRange, Field: "amount"}},
		{"at minimum", "10", nil},
		{"within balance", "50", nil},
		{"at balance", "100", nil},
		{"above balance", "100.01", &Violation{Kind: OutOfRange, Field: "amount"}},
		{"zero", "0", &Violation{Kind: OutOfRange, Field: "amount"}},
		{"negative", "-20", &Violation{Kind: OutOfRange, Field: "amount"}},
		{"non-numeric", "abc", &Violation{Kind: OutOfRange, Field: "amount"}},
		{"empty", "", &Violation{Kind: MissingField, Field: "amount"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := Values{"amount": tc.amount}
			for k, v := range base {
				values[k] = v
			}
			viol, err := Validate(FormWithdrawal, values, balanceCtx(100))
			require.NoError(t, err)
			assert.Equal(t, tc.want, viol)
		})
	}
}

func TestWithdrawalMethodFields(t *testing.T) {
	ctx := balanceCtx(1000)

	t.Run("phone wallet requires phone", func(t *testing.T) {
		viol, err := Validate(FormWithdrawal, Values{
			"amount": "50",
			"method": "phone_wallet",
		}, ctx)
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, MissingField, viol.Kind)
		assert.Equal(t, "phone", viol.Field)
	})

	t.Run("phone format", func(t *testing.T) {
		viol, err := Validate(FormWithdrawal, Values{
			"amount": "50",
			"method": "phone_wallet",
			"phone":  "not-a-phone!",
		}, ctx)
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, InvalidFormat, viol.Kind)
		assert.Equal(t, "phone", viol.Field)
	})

	t.Run("bank account requires all fields", func(t *testing.T) {
		viol, err := Validate(FormWithdrawal, Values{
			"amount":   "50",
			"method":   "bank_account",
			"bankName": "National Bank",
		}, ctx)
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, MissingField, viol.Kind)
		assert.Equal(t, "accountNumber", viol.Field)
	})

	t.Run("account number digits only", func(t *testing.T) {
		viol, err := Validate(FormWithdrawal, Values{
			"amount":        "50",
			"method":        "bank_account",
			"bankName":      "National Bank",
			"accountNumber": "12-34",
			"accountHolder": "John Doe",
		}, ctx)
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, InvalidFormat, viol.Kind)
		assert.Equal(t, "accountNumber", viol.Field)
	})

	t.Run("iban optional but checked when present", func(t *testing.T) {
		values := Values{
			"amount":        "50",
			"method":        "bank_account",
			"bankName":      "National Bank",
			"accountNumber": "1234567890",
			"accountHolder": "John Doe",
		}
		viol, err := Validate(FormWithdrawal, values, ctx)
		require.NoError(t, err)
		assert.Nil(t, viol)

		values["iban"] = "bad-iban"
		viol, err = Validate(FormWithdrawal, values, ctx)
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, InvalidFormat, viol.Kind)
		assert.Equal(t, "iban", viol.Field)

		values["iban"] = "US12345678901234567890"
		viol, err = Validate(FormWithdrawal, values, ctx)
		require.NoError(t, err)
		assert.Nil(t, viol)
	})
}

// A withdrawal of 5 against a balance of 100 must fail on the 10 minimum;
// raising the amount to 50 must pass.
func TestWithdrawalEndToEndScenario(t *testing.T) {
	values := Values{
		"amount": "5",
		"method": "phone_wallet",
		"phone":  "+1 234 567 8900",
	}

	viol, err := Validate(FormWithdrawal, values, balanceCtx(100))
	require.NoError(t, err)
	require.NotNil(t, viol)
	assert.Equal(t, OutOfRange, viol.Kind)

	values["amount"] = "50"
	viol, err = Validate(FormWithdrawal, values, balanceCtx(100))
	require.NoError(t, err)
	assert.Nil(t, viol)
}

func TestSignupPasswordRules(t *testing.T) {
	t.Run("mismatch fails regardless of content", func(t *testing.T) {
		viol, err := Validate(FormNormalSignup, Values{
			"password":        "correct-horse",
			"confirmPassword": "battery-staple",
		}, Context{})
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, Mismatch, viol.Kind)
	})

	t.Run("equal passwords pass the match check", func(t *testing.T) {
		viol, err := Validate(FormNormalSignup, Values{
			"password":        "hunter2",
			"confirmPassword": "hunter2",
		}, Context{})
		require.NoError(t, err)
		assert.Nil(t, viol)
	})

	t.Run("normal signup accepts six characters", func(t *testing.T) {
		viol, err := Validate(FormNormalSignup, Values{
			"password":        "short1",
			"confirmPassword": "short1",
		}, Context{})
		require.NoError(t, err)
		assert.Nil(t, viol)
	})

	t.Run("marketing signup rejects six characters", func(t *testing.T) {
		viol, err := Validate(FormMarketingSignup, Values{
			"password":        "short1",
			"confirmPassword": "short1",
			"agreeTerms":      "true",
		}, Context{})
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, TooShort, viol.Kind)
		assert.Equal(t, "password", viol.Field)
	})

	t.Run("length is counted in characters, not bytes", func(t *testing.T) {
		// Four two-byte runes: eight bytes but only four characters.
		viol, err := Validate(FormMarketingSignup, Values{
			"password":        "αβγδ",
			"confirmPassword": "αβγδ",
			"agreeTerms":      "true",
		}, Context{})
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, TooShort, viol.Kind)

		viol, err = Validate(FormMarketingSignup, Values{
			"password":        "αβγδεζηθ",
			"confirmPassword": "αβγδεζηθ",
			"agreeTerms":      "true",
		}, Context{})
		require.NoError(t, err)
		assert.Nil(t, viol)
	})

	t.Run("marketing signup requires terms", func(t *testing.T) {
		viol, err := Validate(FormMarketingSignup, Values{
			"password":        "long-enough-1",
			"confirmPassword": "long-enough-1",
			"agreeTerms":      "false",
		}, Context{})
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, NotAccepted, viol.Kind)
		assert.Equal(t, "agreeTerms", viol.Field)
	})
}

func TestWalletRechargeRules(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		viol, err := Validate(FormWalletRecharge, Values{
			"amount":     "25.50",
			"screenshot": "uploads/proof-123.png",
		}, Context{})
		require.NoError(t, err)
		assert.Nil(t, viol)
	})

	t.Run("screenshot required", func(t *testing.T) {
		viol, err := Validate(FormWalletRecharge, Values{
			"amount": "25.50",
		}, Context{})
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, MissingField, viol.Kind)
		assert.Equal(t, "screenshot", viol.Field)
	})

	t.Run("amount below one", func(t *testing.T) {
		viol, err := Validate(FormWalletRecharge, Values{
			"amount":     "0.50",
			"screenshot": "uploads/proof-123.png",
		}, Context{})
		require.NoError(t, err)
		require.NotNil(t, viol)
		assert.Equal(t, OutOfRange, viol.Kind)
	})
}

func TestValidateUnknownForm(t *testing.T) {
	_, err := Validate("no_such_form", Values{}, Context{})
	assert.Error(t, err)
}

func TestValidationIsPure(t *testing.T) {
	values := Values{
		"amount": "50",
		"method": "phone_wallet",
		"phone":  "+1 234 567 8900",
	}
	snapshot := map[string]string{}
	for k, v := range values {
		snapshot[k] = v
	}

	_, err := Validate(FormWithdrawal, values, balanceCtx(100))
	require.NoError(t, err)
	assert.Equal(t, snapshot, map[string]string(values))
}
