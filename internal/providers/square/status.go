package square

import (
	"github.com/meshpay/gateway/internal/domain/billing"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/statusmap"
)

// Square payment statuses. Anything unmapped resolves to failed.
var paymentStatuses = statusmap.Table[payment.Status]{
	"PENDING":   payment.StatusPending,
	"APPROVED":  payment.StatusProcessing,
	"COMPLETED": payment.StatusSucceeded,
	"CANCELED":  payment.StatusCanceled,
	"FAILED":    payment.StatusFailed,
}

// Square refund statuses. Anything unmapped resolves to failed.
var refundStatuses = statusmap.Table[payment.Status]{
	"PENDING":   payment.StatusPending,
	"COMPLETED": payment.StatusSucceeded,
	"REJECTED":  payment.StatusFailed,
	"FAILED":    payment.StatusFailed,
}

// Square subscription statuses. Anything unmapped resolves to unknown.
var subscriptionStatuses = statusmap.Table[billing.SubscriptionStatus]{
	"ACTIVE":      billing.SubscriptionActive,
	"PENDING":     billing.SubscriptionIncomplete,
	"PAUSED":      billing.SubscriptionPastDue,
	"CANCELED":    billing.SubscriptionCanceled,
	"DEACTIVATED": billing.SubscriptionCanceled,
}

// Outbound refund reasons. Square takes free text, so these are
// human-readable; the default leaves the field unset.
var refundReasons = statusmap.Outbound[payment.RefundReason]{
	payment.ReasonDuplicate:         "Duplicate charge",
	payment.ReasonFraudulent:        "Fraudulent charge",
	payment.ReasonCustomerRequested: "Requested by customer",
}
