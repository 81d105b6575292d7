package payment

import (
	"strings"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

// Method type constants. Anything else a caller declares is passed through
// to the provider untouched.
const (
	MethodTypeCard         = "card"
	MethodTypeBankTransfer = "bank_transfer"
	MethodTypeUnknown      = "unknown"
)

// Method is the discriminated payment-method union accepted on requests:
// a card with raw fields, a card with an existing token, a bank transfer,
// or any other provider-understood type string.
type Method struct {
	Type  string
	Card  *CardInput
	Token string
}

// CardInput carries raw card fields. They are exchanged for a provider token
// before charging and are never logged or echoed back.
type CardInput struct {
	Number     string
	ExpMonth   int
	ExpYear    int
	CVC        string
	HolderName string
}

// EffectiveType resolves the declared type, defaulting to card only when no
// type was specified at all.
func (m Method) EffectiveType() string {
	if strings.TrimSpace(m.Type) == "" {
		return MethodTypeCard
	}
	return m.Type
}

// HasRawCard reports whether raw card fields are present.
func (m Method) HasRawCard() bool {
	return m.Card != nil && m.Card.Number != ""
}

// HasToken reports whether an existing token or payment-method id is present.
func (m Method) HasToken() bool {
	return strings.TrimSpace(m.Token) != ""
}

// Validate enforces the card branch of the dispatch tree: a card method
// needs either raw fields or a token before any network call is made.
func (m Method) Validate() error {
	if m.EffectiveType() == MethodTypeCard && !m.HasRawCard() && !m.HasToken() {
		return domainErrors.NewValidation("payment_method", "card method requires raw card fields or a token")
	}
	if m.HasRawCard() {
		if m.Card.ExpMonth < 1 || m.Card.ExpMonth > 12 {
			return domainErrors.NewValidation("payment_method.exp_month", "must be between 1 and 12")
		}
		if m.Card.ExpYear <= 0 {
			return domainErrors.NewValidation("payment_method.exp_year", "is required")
		}
	}
	return nil
}

// MethodSummary is the normalized method echo on results: type plus masked
// card details, never raw card data. A source the provider reports in an
// unrecognized form resolves to {Type: "unknown"}.
type MethodSummary struct {
	Type     string
	Brand    string
	Last4    string
	ExpMonth int
	ExpYear  int
}

// UnknownMethodSummary is the documented default for unrecognized sources.
func UnknownMethodSummary() MethodSummary {
	return MethodSummary{Type: MethodTypeUnknown}
}

// Last4 masks a card number down to its last four digits.
func Last4(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
