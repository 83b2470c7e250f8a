package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	PledgesRecorded prometheus.Counter
	PledgesRejected *prometheus.CounterVec
	CaptchaChecks   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		PledgesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pledgeboard_pledges_recorded_total",
			Help: "Total number of pledges successfully recorded",
		}),
		PledgesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pledgeboard_pledges_rejected_total",
			Help: "Total number of pledge submissions rejected, by reason",
		}, []string{"reason"}),
		CaptchaChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pledgeboard_captcha_checks_total",
			Help: "Total number of captcha verifications, by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementPledgesRecorded increments the recorded pledge counter by 1
func (m *Metrics) IncrementPledgesRecorded() {
	m.PledgesRecorded.Inc()
}

// IncrementPledgesRejected increments the rejection counter for a reason
func (m *Metrics) IncrementPledgesRejected(reason string) {
	m.PledgesRejected.WithLabelValues(reason).Inc()
}

// IncrementCaptchaChecks increments the captcha outcome counter
func (m *Metrics) IncrementCaptchaChecks(outcome string) {
	m.CaptchaChecks.WithLabelValues(outcome).Inc()
}
