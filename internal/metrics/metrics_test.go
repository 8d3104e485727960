package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Merge("create", nil)
	m.Merge("create", errors.New("falhou"))
	m.Merge("create", nil)
	m.RolesChanged(2, 1)
	m.Forbidden()
	m.SMS(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Merges.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Merges.WithLabelValues("create", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoleMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoleMutations.WithLabelValues("remove")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForbiddenChanges))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SMSDeliveries.WithLabelValues("ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Merge("update", nil)
		m.Forbidden()
		m.SMS(nil)
		m.ObserveSave(0.1)
	})
}
