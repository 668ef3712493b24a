package session

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultInvalid = "invalid"
)

type metrics struct {
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	logouts       prometheus.Counter
	forcedLogouts prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecosistema",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecosistema",
			Subsystem: "session",
			Name:      "token_refreshes_total",
			Help:      "Access token refreshes by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecosistema",
			Subsystem: "session",
			Name:      "logouts_total",
			Help:      "Sessions ended locally.",
		}),
		forcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecosistema",
			Subsystem: "session",
			Name:      "forced_logouts_total",
			Help:      "Sessions ended because the backend rejected the token.",
		}),
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(m.logins, m.refreshes, m.logouts, m.forcedLogouts)
	return m
}
