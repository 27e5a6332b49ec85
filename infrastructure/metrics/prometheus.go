package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lb-conn/xml-signer/application/ports"
)

// PrometheusMetricsRecorder records signing metrics using Prometheus.
type PrometheusMetricsRecorder struct {
	signTotal          *prometheus.CounterVec
	signDuration       prometheus.Histogram
	verifyTotal        *prometheus.CounterVec
	keystoreLoadsTotal *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder creates a new Prometheus metrics recorder
// using the default Prometheus registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	return NewPrometheusMetricsRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsRecorderWithRegistry creates a new Prometheus metrics recorder
// with a custom registry. Use this for testing.
func NewPrometheusMetricsRecorderWithRegistry(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	signTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xmlsigner_sign_total",
		Help: "Total XML sign requests",
	}, []string{"result", "error_code"})

	signDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "xmlsigner_sign_duration_seconds",
		Help:    "Duration of XML sign requests, keystore load included",
		Buckets: prometheus.DefBuckets,
	})

	verifyTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xmlsigner_verify_total",
		Help: "Total XML signature verifications",
	}, []string{"result"})

	keystoreLoadsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xmlsigner_keystore_loads_total",
		Help: "Total keystores loaded, by detected format",
	}, []string{"format"})

	reg.MustRegister(
		signTotal,
		signDuration,
		verifyTotal,
		keystoreLoadsTotal,
	)

	return &PrometheusMetricsRecorder{
		signTotal:          signTotal,
		signDuration:       signDuration,
		verifyTotal:        verifyTotal,
		keystoreLoadsTotal: keystoreLoadsTotal,
	}
}

// RecordSign records a sign request. An empty errorCode means success.
func (p *PrometheusMetricsRecorder) RecordSign(errorCode string, duration time.Duration) {
	result := "success"
	if errorCode != "" {
		result = "failure"
	}
	p.signTotal.WithLabelValues(result, errorCode).Inc()
	p.signDuration.Observe(duration.Seconds())
}

// RecordVerify records a verification result.
func (p *PrometheusMetricsRecorder) RecordVerify(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	p.verifyTotal.WithLabelValues(result).Inc()
}

// RecordKeystoreLoad records a successfully loaded keystore.
func (p *PrometheusMetricsRecorder) RecordKeystoreLoad(format string) {
	p.keystoreLoadsTotal.WithLabelValues(format).Inc()
}

// Ensure PrometheusMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
