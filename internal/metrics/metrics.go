package metrics

import (
	"fmt"
	"time"

	"github.com/google/trillian/monitoring"
	"github.com/google/trillian/monitoring/prometheus"
)

var (
	reqcnt  monitoring.Counter   // number of incoming http requests
	rspcnt  monitoring.Counter   // number of valid http responses
	latency monitoring.Histogram // request-response latency
	mintcnt monitoring.Counter   // mint requests, by outcome
)

func init() {
	mf := prometheus.MetricFactory{}
	reqcnt = mf.NewCounter("http_req", "number of http requests", "service", "endpoint")
	rspcnt = mf.NewCounter("http_rsp", "number of http requests", "service", "endpoint", "status")
	// Interval 1ms to 10s, with thresholds roughly a factor
	// 10^{1/4} \appr 1.8 apart. Mint requests wait for two ledger
	// consensus rounds, hence the extra 20s and 30s buckets.
	buckets := []float64{1e-3, 2e-3, 3e-3, 6e-3, 10e-3, 20e-3, 30e-3, 60e-3, 0.1, 0.2, 0.3, 0.6, 1, 2, 3, 6, 10, 20, 30}
	latency = mf.NewHistogramWithBuckets("http_latency", "http request-response latency",
		buckets, "service", "endpoint", "status")
	mintcnt = mf.NewCounter("mint", "number of mint requests", "service", "outcome")
}

type ServerMetrics struct {
	Service string
}

func (m *ServerMetrics) OnRequest(endpoint string) {
	reqcnt.Inc(m.Service, endpoint)
}

func (m *ServerMetrics) OnResponse(endpoint string, statusCode int, t time.Duration) {
	sc := fmt.Sprintf("%d", statusCode)
	rspcnt.Inc(m.Service, endpoint, sc)
	latency.Observe(t.Seconds(), m.Service, endpoint, sc)
}

// OnMint counts a mint request; outcome is "completed" or an error kind.
func (m *ServerMetrics) OnMint(outcome string) {
	mintcnt.Inc(m.Service, outcome)
}

func NewServerMetrics(service string) *ServerMetrics {
	return &ServerMetrics{Service: service}
}
