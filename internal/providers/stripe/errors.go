package stripe

import (
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v84"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

// normalizeError converts a Stripe failure into the canonical taxonomy.
// Structured stripe.Error values carry their type/code/status triple into
// the canonical fields; anything else propagates unmodified so adapter bugs
// stay distinguishable from known provider rejections.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}

	var sErr *stripe.Error
	if !errors.As(err, &sErr) {
		return err
	}

	status := sErr.HTTPStatusCode
	if status == http.StatusTooManyRequests || status >= 500 {
		return &domainErrors.GatewayError{
			Kind:         domainErrors.KindUpstreamFault,
			Provider:     providerName,
			HTTPStatus:   status,
			ProviderCode: string(sErr.Code),
			ProviderType: string(sErr.Type),
			Message:      sErr.Msg,
			Err:          sErr,
		}
	}

	return &domainErrors.GatewayError{
		Kind:         domainErrors.KindUpstreamDeclined,
		Provider:     providerName,
		HTTPStatus:   status,
		ProviderCode: string(sErr.Code),
		ProviderType: string(sErr.Type),
		Field:        sErr.Param,
		Message:      sErr.Msg,
		Err:          sErr,
	}
}
