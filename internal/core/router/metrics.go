package router

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 转发结果标签
const (
	outcomeSuccess = "success"
	outcomePartial = "partial"
	outcomeFailed  = "failed"
	outcomeNoRoute = "no_route"
)

// Metrics 路由器指标
type Metrics struct {
	Forwards        *prometheus.CounterVec
	WriteFailures   *prometheus.CounterVec
	PendingRequests prometheus.Gauge
	Timeouts        prometheus.Counter
	Unmatched       *prometheus.CounterVec
	FailFast        prometheus.Counter
}

// NewMetrics 创建路由器指标并注册到 reg；reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Forwards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "router",
			Name:      "forwards_total",
			Help:      "Fan-out forwards by aggregate outcome.",
		}, []string{"outcome"}),
		WriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "router",
			Name:      "write_failures_total",
			Help:      "Per-neighbor link write failures.",
		}, []string{"neighbor"}),
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reload",
			Subsystem: "router",
			Name:      "pending_requests",
			Help:      "Requests waiting for an answer.",
		}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "router",
			Name:      "request_timeouts_total",
			Help:      "Requests resolved by timeout.",
		}),
		Unmatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "router",
			Name:      "unmatched_answers_total",
			Help:      "Answers without a waiting request.",
		}, []string{"reason"}),
		FailFast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reload",
			Subsystem: "router",
			Name:      "fail_fast_requests_total",
			Help:      "Requests failed because no neighbor accepted the write.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.Forwards, m.WriteFailures, m.PendingRequests, m.Timeouts, m.Unmatched, m.FailFast,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observeForward 记录扇出结果
func (m *Metrics) observeForward(f *ForwardFuture) {
	switch {
	case f.Attempted() == 0:
		m.Forwards.WithLabelValues(outcomeNoRoute).Inc()
	case f.AllSucceeded():
		m.Forwards.WithLabelValues(outcomeSuccess).Inc()
	case f.AnySucceeded():
		m.Forwards.WithLabelValues(outcomePartial).Inc()
	default:
		m.Forwards.WithLabelValues(outcomeFailed).Inc()
	}
}
