package host

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics Host 指标
type Metrics struct {
	Links          prometheus.Gauge
	Established    *prometheus.CounterVec
	EstablishFails *prometheus.CounterVec
}

// NewMetrics 创建 Host 指标并注册到 reg；reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Links: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reload",
			Subsystem: "host",
			Name:      "links",
			Help:      "Links currently running.",
		}),
		Established: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "host",
			Name:      "links_established_total",
			Help:      "Links established by direction.",
		}, []string{"direction"}),
		EstablishFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "host",
			Name:      "link_failures_total",
			Help:      "Failed link establishments by direction.",
		}, []string{"direction"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Links, m.Established, m.EstablishFails} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
