package errors

import (
	"errors"
	"fmt"
)

// Kind discriminates the canonical error taxonomy exposed to callers.
type Kind string

const (
	KindValidation           Kind = "validation"
	KindProviderNotAvailable Kind = "provider_not_available"
	KindUnsupportedOperation Kind = "unsupported_operation"
	KindUpstreamDeclined     Kind = "upstream_declined"
	KindUpstreamFault        Kind = "upstream_fault"
	KindUnknown              Kind = "unknown"
)

// GatewayError is the single error shape produced at the adapter boundary.
// Provider-specific failure details are carried verbatim in ProviderCode /
// ProviderType so nothing needed for audit is lost in normalization.
type GatewayError struct {
	Kind         Kind
	Provider     string
	Operation    string
	HTTPStatus   int
	ProviderCode string
	ProviderType string
	Field        string
	Message      string
	Err          error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is potentially transient.
// Only upstream faults (network, timeout, 5xx, rate limit) qualify.
func (e *GatewayError) Retryable() bool {
	return e.Kind == KindUpstreamFault
}

// NewValidation builds a request-validation error. Adapters raise it before
// any network call is made.
func NewValidation(field, message string) *GatewayError {
	return &GatewayError{Kind: KindValidation, Field: field, Message: message}
}

// NewProviderNotAvailable signals an unknown or unconfigured provider name.
func NewProviderNotAvailable(provider string) *GatewayError {
	return &GatewayError{
		Kind:     KindProviderNotAvailable,
		Provider: provider,
		Message:  fmt.Sprintf("provider %q is not configured", provider),
	}
}

// NewUnsupportedOperation signals that the selected provider lacks the
// requested capability.
func NewUnsupportedOperation(provider, operation string) *GatewayError {
	return &GatewayError{
		Kind:      KindUnsupportedOperation,
		Provider:  provider,
		Operation: operation,
		Message:   fmt.Sprintf("provider %q does not support %s", provider, operation),
	}
}

// NewDeclined wraps an explicit provider rejection.
func NewDeclined(provider string, httpStatus int, code, typ, field, message string, err error) *GatewayError {
	return &GatewayError{
		Kind:         KindUpstreamDeclined,
		Provider:     provider,
		HTTPStatus:   httpStatus,
		ProviderCode: code,
		ProviderType: typ,
		Field:        field,
		Message:      message,
		Err:          err,
	}
}

// NewFault wraps a potentially transient upstream failure
// (network error, timeout, 5xx, rate limit).
func NewFault(provider, message string, err error) *GatewayError {
	return &GatewayError{
		Kind:     KindUpstreamFault,
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}

// KindOf classifies any error into the canonical taxonomy. Errors that did
// not pass through a normalizer report KindUnknown so adapter bugs stay
// distinguishable from known provider rejections.
func KindOf(err error) Kind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether the gateway may automatically retry the call
// that produced err. Only read operations consult this.
func IsRetryable(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Retryable()
	}
	return false
}

// IsNotFound reports whether a declined error is the not-found variant.
func IsNotFound(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind == KindUpstreamDeclined && ge.HTTPStatus == 404
	}
	return false
}
