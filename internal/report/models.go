package report

import "time"

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusAborted   = "aborted"
)

// File outcome status values.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeSkipped   = "skipped"
)

// Run is one recorded collection ingest.
type Run struct {
	ID               string
	Collection       string
	Status           string
	StartedAt        time.Time
	FinishedAt       *time.Time
	FoldersProcessed int
	FoldersSkipped   int
	FilesProcessed   int
	FilesSkipped     int
}

// Outcome is the recorded result of one file task.
type Outcome struct {
	RunID       string
	Folder      string
	SourcePath  string
	ComponentID string
	StorageKey  string
	Status      string
	Reason      string
	RecordedAt  time.Time
}

// Totals carried back onto the run row when it finishes.
type Totals struct {
	FoldersProcessed int
	FoldersSkipped   int
	FilesProcessed   int
	FilesSkipped     int
}
