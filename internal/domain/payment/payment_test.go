package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

func TestRequest_Validate(t *testing.T) {
	valid := Request{
		Amount:   5000,
		Currency: "usd",
		Method:   Method{Type: MethodTypeCard, Token: "tok_visa"},
	}

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
		field   string
	}{
		{"valid token card", func(r *Request) {}, false, ""},
		{"zero amount", func(r *Request) { r.Amount = 0 }, true, "amount"},
		{"negative amount", func(r *Request) { r.Amount = -100 }, true, "amount"},
		{"bad currency", func(r *Request) { r.Currency = "usdollar" }, true, "currency"},
		{"card without token or raw fields", func(r *Request) { r.Method = Method{Type: MethodTypeCard} }, true, "payment_method"},
		{"bank transfer needs no card data", func(r *Request) { r.Method = Method{Type: MethodTypeBankTransfer} }, false, ""},
		{"custom type passes through", func(r *Request) { r.Method = Method{Type: "pix"} }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ge *domainErrors.GatewayError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, domainErrors.KindValidation, ge.Kind)
			assert.Equal(t, tt.field, ge.Field)
		})
	}
}

func TestMethod_EffectiveType(t *testing.T) {
	assert.Equal(t, MethodTypeCard, Method{}.EffectiveType())
	assert.Equal(t, MethodTypeCard, Method{Type: ""}.EffectiveType())
	assert.Equal(t, "boleto", Method{Type: "boleto"}.EffectiveType())
}

func TestMethod_RawCardValidation(t *testing.T) {
	m := Method{Type: MethodTypeCard, Card: &CardInput{Number: "4242424242424242", ExpMonth: 13, ExpYear: 2030}}
	assert.Error(t, m.Validate())

	m.Card.ExpMonth = 12
	assert.NoError(t, m.Validate())

	m.Card.ExpYear = 0
	assert.Error(t, m.Validate())
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestParseRefundReason(t *testing.T) {
	assert.Equal(t, ReasonDuplicate, ParseRefundReason("duplicate"))
	assert.Equal(t, ReasonFraudulent, ParseRefundReason(" Fraudulent "))
	assert.Equal(t, ReasonCustomerRequested, ParseRefundReason("customer_requested"))
	assert.Equal(t, ReasonUnspecified, ParseRefundReason(""))
	assert.Equal(t, ReasonUnspecified, ParseRefundReason("because"))
}

func TestLast4(t *testing.T) {
	assert.Equal(t, "4242", Last4("4242 4242 4242 4242"))
	assert.Equal(t, "1117", Last4("378282246310-1117"))
	assert.Equal(t, "", Last4("42"))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency(" usd "))
	assert.Equal(t, "BRL", NormalizeCurrency("brl"))
}
