package core

import "context"

const operationMetricPrefix = "raccoon."

// operationTagKeys are the observation fields promoted to metric tags when
// present and non-empty.
var operationTagKeys = []string{"identity", "repo_key", "fork_key", "scope", "phase"}

func operationCounterName(operation string) string {
	return operationMetricPrefix + operation + ".total"
}

func operationDurationName(operation string) string {
	return operationMetricPrefix + operation + ".duration_ms"
}

// NopMetricsRecorder drops every measurement. It is the default sink when
// no recorder is configured.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}
