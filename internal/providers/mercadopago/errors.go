package mercadopago

import (
	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

// normalizeError wraps an SDK failure as an upstream fault. Mercado Pago
// reports declines as "rejected" payment results, not errors, so a call
// that errors out never represents a decline.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}
	return domainErrors.NewFault(providerName, err.Error(), err)
}
