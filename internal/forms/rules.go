// Package forms implements the declarative form validation used by the
// recharge, withdrawal, and signup flows. Rules are pure and composable;
// a rule set is evaluated fail-fast and surfaces the first violation as an
// error kind plus the offending field, never rendered text. The caller is
// responsible for mapping a kind to a localized message.
package forms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	MissingField  ErrorKind = "missing_field"
	OutOfRange    ErrorKind = "out_of_range"
	Mismatch      ErrorKind = "mismatch"
	TooShort      ErrorKind = "too_short"
	InvalidFormat ErrorKind = "invalid_format"
	NotAccepted   ErrorKind = "not_accepted"
)

// Violation is the first failed rule of a rule set.
type Violation struct {
	Kind  ErrorKind `json:"kind"`
	Field string    `json:"field"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("field %q: %s", v.Field, string(v.Kind))
}

// Values holds raw form input keyed by field name. Checkbox fields carry
// "true"/"false".
type Values map[string]string

// Context carries per-submission bounds that are not part of the form
// itself, such as the balance capping a withdrawal amount.
type Context struct {
	MaxAmount    decimal.Decimal
	HasMaxAmount bool
}

// Rule checks one aspect of a form. A nil result means the rule passed.
type Rule func(v Values, ctx Context) *Violation

// RuleSet is an ordered list of rules evaluated fail-fast.
type RuleSet struct {
	Name  string
	Rules []Rule
}

// Validate returns the first violation, or nil if every rule passes.
func (rs RuleSet) Validate(v Values, ctx Context) *Violation {
	for _, rule := range rs.Rules {
		if viol := rule(v, ctx); viol != nil {
			return viol
		}
	}
	return nil
}

func empty(v Values, field string) bool {
	return strings.TrimSpace(v[field]) == ""
}

// Required fails with MissingField when the value is empty.
func Required(field string) Rule {
	return func(v Values, _ Context) *Violation {
		if empty(v, field) {
			return &Violation{Kind: MissingField, Field: field}
		}
		return nil
	}
}

// NumericMin fails with OutOfRange when the value is non-numeric or below
// min. An absent value is also OutOfRange; pair with Required when a
// distinct MissingField is wanted.
func NumericMin(field string, min decimal.Decimal) Rule {
	return func(v Values, _ Context) *Violation {
		amount, err := decimal.NewFromString(strings.TrimSpace(v[field]))
		if err != nil || amount.LessThan(min) {
			return &Violation{Kind: OutOfRange, Field: field}
		}
		return nil
	}
}

// NumericRangeBalance bounds the value between min and the context's
// maximum amount (when one is set). Non-numeric input is OutOfRange.
func NumericRangeBalance(field string, min decimal.Decimal) Rule {
	return func(v Values, ctx Context) *Violation {
		amount, err := decimal.NewFromString(strings.TrimSpace(v[field]))
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			return &Violation{Kind: OutOfRange, Field: field}
		}
		if ctx.HasMaxAmount && amount.GreaterThan(ctx.MaxAmount) {
			return &Violation{Kind: OutOfRange, Field: field}
		}
		if amount.LessThan(min) {
			return &Violation{Kind: OutOfRange, Field: field}
		}
		return nil
	}
}

// Matches fails with Mismatch when the two fields differ. Equality passes
// regardless of content.
func Matches(fieldA, fieldB string) Rule {
	return func(v Values, _ Context) *Violation {
		if v[fieldA] != v[fieldB] {
			return &Violation{Kind: Mismatch, Field: fieldB}
		}
		return nil
	}
}

// MinLength fails with TooShort when the value has fewer than n characters.
// Length is counted in runes, not bytes, so multi-byte passwords are not
// over-credited.
func MinLength(field string, n int) Rule {
	return func(v Values, _ Context) *Violation {
		if utf8.RuneCountInString(v[field]) < n {
			return &Violation{Kind: TooShort, Field: field}
		}
		return nil
	}
}

// Pattern fails with InvalidFormat when the value does not match re.
func Pattern(field string, re *regexp.Regexp) Rule {
	return func(v Values, _ Context) *Violation {
		if !re.MatchString(v[field]) {
			return &Violation{Kind: InvalidFormat, Field: field}
		}
		return nil
	}
}

// OptionalPattern is Pattern, but an empty value passes.
func OptionalPattern(field string, re *regexp.Regexp) Rule {
	return func(v Values, ctx Context) *Violation {
		if empty(v, field) {
			return nil
		}
		return Pattern(field, re)(v, ctx)
	}
}

// WhenEquals applies rules only when field holds want, making required
// field sets depend on a selected method.
func WhenEquals(field, want string, rules ...Rule) Rule {
	return func(v Values, ctx Context) *Violation {
		if v[field] != want {
			return nil
		}
		for _, rule := range rules {
			if viol := rule(v, ctx); viol != nil {
				return viol
			}
		}
		return nil
	}
}

// MustAccept fails with NotAccepted unless the checkbox field is "true".
func MustAccept(field string) Rule {
	return func(v Values, _ Context) *Violation {
		if v[field] != "true" {
			return &Violation{Kind: NotAccepted, Field: field}
		}
		return nil
	}
}
