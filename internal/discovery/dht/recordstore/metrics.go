package recordstore

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "dalight_recordstore"

// Metrics 记录存储的 Prometheus 指标
type Metrics struct {
	valueOps        *prometheus.CounterVec
	providerAdds    *prometheus.CounterVec
	providerEvicted prometheus.Counter
	providerKeys    prometheus.Gauge
	providerRecords prometheus.Gauge
	providedRecords prometheus.Gauge
}

// NewMetrics 创建并注册指标，reg 为 nil 时只创建不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		valueOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "value_ops_total",
			Help:      "Value record operations by operation and result.",
		}, []string{"op", "result"}),
		providerAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "provider_adds_total",
			Help:      "AddProvider calls by outcome (inserted, updated, dropped, rejected).",
		}, []string{"result"}),
		providerEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "provider_removed_total",
			Help:      "Provider records removed by eviction, explicit removal or expiry.",
		}),
		providerKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "provider_keys",
			Help:      "Distinct keys in the provider table.",
		}),
		providerRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "provider_records",
			Help:      "Provider records across all keys.",
		}),
		providedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "provided_records",
			Help:      "Provider records advertised by the local node.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.valueOps,
			m.providerAdds,
			m.providerEvicted,
			m.providerKeys,
			m.providerRecords,
			m.providedRecords,
		)
	}

	return m
}

func (m *Metrics) observeValue(op, result string) {
	if m == nil {
		return
	}
	m.valueOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) observeAdd(r addResult) {
	if m == nil {
		return
	}
	m.providerAdds.WithLabelValues(r.String()).Inc()
}

func (m *Metrics) observeRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.providerEvicted.Add(float64(n))
}

func (m *Metrics) setSizes(keys, records, provided int) {
	if m == nil {
		return
	}
	m.providerKeys.Set(float64(keys))
	m.providerRecords.Set(float64(records))
	m.providedRecords.Set(float64(provided))
}

// String 返回指标标签值
func (r addResult) String() string {
	switch r {
	case addInserted:
		return "inserted"
	case addUpdated:
		return "updated"
	case addDropped:
		return "dropped"
	case addRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
