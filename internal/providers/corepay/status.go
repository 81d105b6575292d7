package corepay

import (
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/statusmap"
)

// CorePay charge statuses. Anything unmapped resolves to failed.
var chargeStatuses = statusmap.Table[payment.Status]{
	"created":    payment.StatusPending,
	"authorized": payment.StatusProcessing,
	"settling":   payment.StatusProcessing,
	"settled":    payment.StatusSucceeded,
	"voided":     payment.StatusCanceled,
	"declined":   payment.StatusFailed,
}

// CorePay refund statuses. Anything unmapped resolves to failed.
var refundStatuses = statusmap.Table[payment.Status]{
	"created":  payment.StatusPending,
	"settled":  payment.StatusSucceeded,
	"declined": payment.StatusFailed,
	"voided":   payment.StatusCanceled,
}

// Outbound refund reasons; the ledger understands the canonical vocabulary
// directly, so unmapped reasons fall back to its explicit "unspecified".
var refundReasons = statusmap.Outbound[payment.RefundReason]{
	payment.ReasonDuplicate:         "duplicate",
	payment.ReasonFraudulent:        "fraudulent",
	payment.ReasonCustomerRequested: "customer_requested",
}

// Bank-transfer rails by uppercase currency.
var bankTransferRails = map[string]string{
	"USD": "ach",
	"EUR": "sepa",
	"GBP": "fps",
}
