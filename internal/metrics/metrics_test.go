package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAndGauges(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Registration("welcomed")
	m.Registration("welcomed")
	m.Registration("contest_ended")
	m.Referral()
	m.ObserveMembers(120)
	m.Ended()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Registrations.WithLabelValues("welcomed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues("contest_ended")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Referrals))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.MemberCount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContestEnded))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Registration("welcomed")
		m.Referral()
		m.ProbeFailed()
		m.ObserveMembers(1)
		m.Ended()
		m.NotificationSent()
		m.NotificationFailed()
	})
}
