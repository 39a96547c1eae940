package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPurchasesCounter(t *testing.T) {
	before := testutil.ToFloat64(Purchases.WithLabelValues("Monthly"))
	Purchases.WithLabelValues("Monthly").Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(Purchases.WithLabelValues("Monthly")), 0.0001)
}

func TestRegistrationsCounter(t *testing.T) {
	before := testutil.ToFloat64(Registrations)
	Registrations.Inc()
	Registrations.Inc()
	assert.InDelta(t, before+2, testutil.ToFloat64(Registrations), 0.0001)
}
