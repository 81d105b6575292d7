package mercadopago

import (
	"github.com/shopspring/decimal"

	"github.com/meshpay/gateway/internal/domain/payment"
)

// Mercado Pago amounts are major-unit floats; the canonical model is
// minor-unit integers. Zero-decimal currencies shift by zero.
var currencyExponents = map[string]int32{
	"CLP": 0,
	"PYG": 0,
}

const defaultExponent int32 = 2

func exponentFor(currency string) int32 {
	if exp, ok := currencyExponents[payment.NormalizeCurrency(currency)]; ok {
		return exp
	}
	return defaultExponent
}

func toMajorUnits(minor int64, currency string) float64 {
	return decimal.NewFromInt(minor).Shift(-exponentFor(currency)).InexactFloat64()
}

func toMinorUnits(major float64, currency string) int64 {
	return decimal.NewFromFloat(major).Shift(exponentFor(currency)).Round(0).IntPart()
}
