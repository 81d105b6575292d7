package square

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	sq "github.com/square/square-go-sdk"
	sqcore "github.com/square/square-go-sdk/core"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

// normalizeError converts a Square failure into the canonical taxonomy.
// Square nests its error list inside the APIError body, so the first entry
// supplies the provider code/category pair. Anything unstructured propagates
// unmodified.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *sqcore.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	status := apiErr.StatusCode
	ge := &domainErrors.GatewayError{
		Provider:   providerName,
		HTTPStatus: status,
		Err:        apiErr,
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		ge.Kind = domainErrors.KindUpstreamFault
	} else {
		ge.Kind = domainErrors.KindUpstreamDeclined
	}

	if first := firstSquareError(apiErr); first != nil {
		ge.ProviderCode = string(first.Code)
		ge.ProviderType = string(first.Category)
		ge.Field = stringValue(first.Field)
		ge.Message = stringValue(first.Detail)
	}
	if ge.Message == "" {
		ge.Message = apiErr.Error()
	}
	return ge
}

func firstSquareError(apiErr *sqcore.APIError) *sq.Error {
	inner := apiErr.Unwrap()
	if inner == nil {
		return nil
	}
	raw := strings.TrimSpace(inner.Error())
	if raw == "" {
		return nil
	}
	var payload struct {
		Errors []*sq.Error `json:"errors"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	for _, sqErr := range payload.Errors {
		if sqErr != nil {
			return sqErr
		}
	}
	return nil
}
