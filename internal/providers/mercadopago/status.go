package mercadopago

import (
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/statusmap"
)

// Mercado Pago payment statuses. Declines surface as "rejected" results
// rather than errors. Anything unmapped resolves to failed.
var paymentStatuses = statusmap.Table[payment.Status]{
	"pending":      payment.StatusPending,
	"in_process":   payment.StatusProcessing,
	"in_mediation": payment.StatusProcessing,
	"authorized":   payment.StatusProcessing,
	"approved":     payment.StatusSucceeded,
	"refunded":     payment.StatusSucceeded,
	"cancelled":    payment.StatusCanceled,
	"rejected":     payment.StatusFailed,
}

// Mercado Pago refund statuses. Anything unmapped resolves to failed.
var refundStatuses = statusmap.Table[payment.Status]{
	"pending":    payment.StatusPending,
	"in_process": payment.StatusPending,
	"approved":   payment.StatusSucceeded,
	"rejected":   payment.StatusFailed,
	"cancelled":  payment.StatusCanceled,
}

// Bank-transfer rails by uppercase currency. Pix is the only instant rail
// the account settles on.
var bankTransferRails = map[string]string{
	"BRL": "pix",
}
