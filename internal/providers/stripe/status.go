package stripe

import (
	"github.com/meshpay/gateway/internal/domain/billing"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/statusmap"
)

// Stripe payment-intent statuses. Anything unmapped resolves to failed.
var paymentStatuses = statusmap.Table[payment.Status]{
	"requires_payment_method": payment.StatusPending,
	"requires_confirmation":   payment.StatusPending,
	"requires_action":         payment.StatusPending,
	"processing":              payment.StatusProcessing,
	"requires_capture":        payment.StatusProcessing,
	"succeeded":               payment.StatusSucceeded,
	"canceled":                payment.StatusCanceled,
}

// Stripe refund statuses. Anything unmapped resolves to failed.
var refundStatuses = statusmap.Table[payment.Status]{
	"pending":         payment.StatusPending,
	"requires_action": payment.StatusPending,
	"succeeded":       payment.StatusSucceeded,
	"failed":          payment.StatusFailed,
	"canceled":        payment.StatusCanceled,
}

// Stripe subscription statuses. Anything unmapped resolves to unknown.
var subscriptionStatuses = statusmap.Table[billing.SubscriptionStatus]{
	"active":             billing.SubscriptionActive,
	"trialing":           billing.SubscriptionTrialing,
	"past_due":           billing.SubscriptionPastDue,
	"canceled":           billing.SubscriptionCanceled,
	"unpaid":             billing.SubscriptionUnpaid,
	"incomplete":         billing.SubscriptionIncomplete,
	"incomplete_expired": billing.SubscriptionCanceled,
}

// Outbound refund reasons. Stripe expresses "unspecified" by omitting the
// field, so the default is empty.
var refundReasons = statusmap.Outbound[payment.RefundReason]{
	payment.ReasonDuplicate:         "duplicate",
	payment.ReasonFraudulent:        "fraudulent",
	payment.ReasonCustomerRequested: "requested_by_customer",
}

// Bank-transfer rails by uppercase currency. A currency without a rail fails
// validation before any network call.
var bankTransferRails = map[string]string{
	"USD": "us_bank_account",
	"EUR": "sepa_debit",
	"GBP": "bacs_debit",
	"AUD": "au_becs_debit",
	"CAD": "acss_debit",
}
