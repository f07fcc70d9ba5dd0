package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PaymentsApplied.WithLabelValues("cash").Inc()
	m.PaymentAmount.WithLabelValues("cash").Add(2500)
	m.SaveConflicts.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsApplied.WithLabelValues("cash")))
	assert.Equal(t, 2500.0, testutil.ToFloat64(m.PaymentAmount.WithLabelValues("cash")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pos_payments_applied_total")
	assert.Contains(t, names, "pos_bill_save_conflicts_total")
}

func TestNilRegistererDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}
