package history

import "time"

// Kinds of recorded runs.
const (
	KindTailor  = "tailor"
	KindUpload  = "upload"
	KindCompile = "compile"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one recorded tailor, upload or compile invocation.
type Run struct {
	ID         string
	RequestID  string
	Kind       string
	SourceKey  string
	OutputKey  string
	Model      string
	Status     string
	Error      string
	DurationMs int64
	CreatedAt  time.Time
}
