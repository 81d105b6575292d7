package statusmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshpay/gateway/internal/domain/payment"
)

func TestTable_Map(t *testing.T) {
	table := Table[payment.Status]{
		"approved": payment.StatusSucceeded,
		"pending":  payment.StatusPending,
	}

	assert.Equal(t, payment.StatusSucceeded, table.Map("approved", payment.StatusFailed))
	assert.Equal(t, payment.StatusPending, table.Map("pending", payment.StatusFailed))

	// Unmapped and synthetic statuses fall back, never to a success value.
	assert.Equal(t, payment.StatusFailed, table.Map("weird_new_status", payment.StatusFailed))
	assert.Equal(t, payment.StatusFailed, table.Map("", payment.StatusFailed))
}

func TestOutbound_Map(t *testing.T) {
	table := Outbound[payment.RefundReason]{
		payment.ReasonDuplicate:  "DUPLICATE",
		payment.ReasonFraudulent: "FRAUD",
	}

	assert.Equal(t, "DUPLICATE", table.Map(payment.ReasonDuplicate, "OTHER"))
	assert.Equal(t, "OTHER", table.Map(payment.ReasonCustomerRequested, "OTHER"))
	assert.Equal(t, "OTHER", table.Map(payment.ReasonUnspecified, "OTHER"))
}
