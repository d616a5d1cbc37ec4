package metrics

import "time"

// Outcome labels for build counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Recorder defines observability hooks for build metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for
// the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
	AddPagesBuilt(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string)             {}
func (NoopRecorder) AddPagesBuilt(int)                  {}
