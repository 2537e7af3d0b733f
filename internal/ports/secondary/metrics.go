package secondary

import "time"

// MetricsRecorder defines the secondary port for operational metrics.
// Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	// ObserveStatus counts one KPI evaluation by resulting status.
	ObserveStatus(status string)

	// ObserveSync counts one key-result sync by outcome ("changed", "unchanged", "error").
	ObserveSync(outcome string)

	// ObserveCycleWarnings records how many causal cycles a query ran into.
	ObserveCycleWarnings(count int)

	// ObserveTrace records a trace query's size and duration.
	ObserveTrace(direction string, nodes int, elapsed time.Duration)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveStatus(string) {}
func (NopMetrics) ObserveSync(string) {}
func (NopMetrics) ObserveCycleWarnings(int) {}
func (NopMetrics) ObserveTrace(string, int, time.Duration) {}
