package model

import "time"

// RunStatus tracks a pipeline run's lifecycle.
type RunStatus string

// Run statuses.
const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunStats counts what a run saw and produced. Per-record failures never
// abort a batch; they land here instead.
type RunStats struct {
	RawRows          int
	InvalidRows      int
	DuplicateRows    int
	FilingsSaved     int
	ClustersDetected int
	WhalesDetected   int
}

// Run is one execution of the pipeline, keyed by UUID.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Status     RunStatus
	Stats      RunStats
}
