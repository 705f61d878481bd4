package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 分发器指标
type Metrics struct {
	Received      prometheus.Counter
	Decisions     *prometheus.CounterVec
	DecodeErrors  *prometheus.CounterVec
	Handled       *prometheus.CounterVec
	ActiveHandler prometheus.Gauge
}

// NewMetrics 创建分发器指标并注册到 reg；reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "dispatcher",
			Name:      "messages_received_total",
			Help:      "Messages received from links.",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "dispatcher",
			Name:      "decisions_total",
			Help:      "Routing decisions by action.",
		}, []string{"action"}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "dispatcher",
			Name:      "decode_errors_total",
			Help:      "Messages dropped because they could not be decoded.",
		}, []string{"stage"}),
		Handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "dispatcher",
			Name:      "requests_handled_total",
			Help:      "Local requests by result.",
		}, []string{"result"}),
		ActiveHandler: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reload",
			Subsystem: "dispatcher",
			Name:      "active_handlers",
			Help:      "Request handlers currently running.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.Received, m.Decisions, m.DecodeErrors, m.Handled, m.ActiveHandler,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
