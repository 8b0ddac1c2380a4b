// Package observability provides metrics recorders and tracing hooks.
package observability

import "time"

// Outcomes of a call to the analysis endpoint.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected" // circuit open
)

// Recorder receives the metrics the service emits.
type Recorder interface {
	RecordHTTPRequest(method, route string, status int, d time.Duration)
	RecordAnalysisCall(outcome string, d time.Duration)
	RecordConflictRetry(operation string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (NopRecorder) RecordAnalysisCall(string, time.Duration)             {}
func (NopRecorder) RecordConflictRetry(string)                           {}

// MultiRecorder fans every observation out to each of its recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	for _, r := range m {
		r.RecordHTTPRequest(method, route, status, d)
	}
}

func (m MultiRecorder) RecordAnalysisCall(outcome string, d time.Duration) {
	for _, r := range m {
		r.RecordAnalysisCall(outcome, d)
	}
}

func (m MultiRecorder) RecordConflictRetry(operation string) {
	for _, r := range m {
		r.RecordConflictRetry(operation)
	}
}
