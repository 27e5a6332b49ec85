package metrics

import (
	"time"

	"github.com/lb-conn/xml-signer/application/ports"
)

// NoopMetricsRecorder é usado quando as métricas estão desabilitadas.
type NoopMetricsRecorder struct{}

// NewNoopMetricsRecorder creates a new no-op metrics recorder.
func NewNoopMetricsRecorder() *NoopMetricsRecorder {
	return &NoopMetricsRecorder{}
}

func (n *NoopMetricsRecorder) RecordSign(string, time.Duration) {}

func (n *NoopMetricsRecorder) RecordVerify(bool) {}

func (n *NoopMetricsRecorder) RecordKeystoreLoad(string) {}

var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)
