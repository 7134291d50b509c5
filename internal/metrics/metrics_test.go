package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUnitOfWork_Observe(t *testing.T) {
	m := NewUnitOfWork(prometheus.NewRegistry())

	m.Observe("record_sale", OutcomeCommitted, 20*time.Millisecond)
	m.Observe("record_sale", OutcomeCommitted, 5*time.Millisecond)
	m.Observe("record_sale", "validation", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Count("record_sale", OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Count("record_sale", "validation")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestUnitOfWork_NilIsNoop(t *testing.T) {
	var m *UnitOfWork

	assert.NotPanics(t, func() {
		m.Observe("x", OutcomeCommitted, time.Second)
		m.ObserveLockWait(time.Second)
	})
}
