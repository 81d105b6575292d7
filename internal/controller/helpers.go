package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError translates the canonical error taxonomy to HTTP. Provider
// detail fields travel in the body so callers can act on the upstream code.
func writeError(w http.ResponseWriter, err error) {
	var ge *domainErrors.GatewayError
	if !errors.As(err, &ge) {
		log.Error().Err(err).Msg("unhandled error in handler")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  "internal_error",
		})
		return
	}

	resp := ErrorResponse{
		Error:        ge.Error(),
		Code:         string(ge.Kind),
		Provider:     ge.Provider,
		ProviderCode: ge.ProviderCode,
		ProviderType: ge.ProviderType,
		Field:        ge.Field,
	}

	writeJSON(w, statusForKind(ge), resp)
}

func statusForKind(ge *domainErrors.GatewayError) int {
	switch ge.Kind {
	case domainErrors.KindValidation:
		return http.StatusBadRequest
	case domainErrors.KindProviderNotAvailable:
		return http.StatusServiceUnavailable
	case domainErrors.KindUnsupportedOperation:
		return http.StatusUnprocessableEntity
	case domainErrors.KindUpstreamDeclined:
		if ge.HTTPStatus == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusPaymentRequired
	case domainErrors.KindUpstreamFault:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainErrors.NewValidation("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return domainErrors.NewValidation(ve[0].Field(), ve[0].Tag()+" validation failed")
		}
		return domainErrors.NewValidation("body", err.Error())
	}
	return nil
}

// providerParam reads the provider selector; empty means the default.
func providerParam(r *http.Request) string {
	return r.URL.Query().Get("provider")
}
