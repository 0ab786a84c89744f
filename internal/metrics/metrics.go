package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registrations      *prometheus.CounterVec
	Referrals          prometheus.Counter
	ProbeFailures      prometheus.Counter
	MemberCount        prometheus.Gauge
	ContestEnded       prometheus.Gauge
	NotificationsSent  prometheus.Counter
	NotificationErrors prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "refcontest_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		Referrals: f.NewCounter(prometheus.CounterOpts{
			Name: "refcontest_referrals_total",
			Help: "Referral edges created",
		}),
		ProbeFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "refcontest_probe_failures_total",
			Help: "Failed member count probes",
		}),
		MemberCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "refcontest_member_count",
			Help: "Last observed channel member count",
		}),
		ContestEnded: f.NewGauge(prometheus.GaugeOpts{
			Name: "refcontest_contest_ended",
			Help: "1 once the contest has ended",
		}),
		NotificationsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "refcontest_notifications_sent_total",
			Help: "Messages delivered by the notification dispatcher",
		}),
		NotificationErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "refcontest_notification_failures_total",
			Help: "Notifications that failed after all retries",
		}),
	}
}

func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Referral() {
	if m == nil {
		return
	}
	m.Referrals.Inc()
}

func (m *Metrics) ProbeFailed() {
	if m == nil {
		return
	}
	m.ProbeFailures.Inc()
}

func (m *Metrics) ObserveMembers(count int) {
	if m == nil {
		return
	}
	m.MemberCount.Set(float64(count))
}

func (m *Metrics) Ended() {
	if m == nil {
		return
	}
	m.ContestEnded.Set(1)
}

func (m *Metrics) NotificationSent() {
	if m == nil {
		return
	}
	m.NotificationsSent.Inc()
}

func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.NotificationErrors.Inc()
}
