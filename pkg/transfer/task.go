// Package transfer implements the bulk transfer engine: per-task retry with
// backoff, the bounded worker pool, and the orchestrator that turns a cp
// invocation into a task list and a run summary.
package transfer

import (
	"time"
)

// Direction of a single-object transfer.
type Direction int

const (
	// Upload moves a local file to a remote object.
	Upload Direction = iota

	// Download moves a remote object to a local file.
	Download
)

func (d Direction) String() string {
	if d == Download {
		return "download"
	}
	return "upload"
}

// SizeUnknown marks a task whose expected size was not available at
// enumeration time.
const SizeUnknown int64 = -1

// Task is one unit of work: a single object moved in one direction.
// Created by the orchestrator and consumed exactly once by a worker.
type Task struct {
	// LocalPath is the local file path (source for upload, target for download).
	LocalPath string

	// RemoteKey is the full object key.
	RemoteKey string

	Direction Direction

	// ExpectedSize is the size known at enumeration time, or SizeUnknown.
	ExpectedSize int64
}

// Describe names the moved item for logs and failure reports: the local
// path for uploads, the object key for downloads.
func (t Task) Describe() string {
	if t.Direction == Download {
		return t.RemoteKey
	}
	return t.LocalPath
}

// Outcome is the result of one task, produced exactly once.
type Outcome struct {
	Task Task

	// Bytes transferred. Zero-length objects are valid and report zero.
	Bytes int64

	// Attempts made, including the first.
	Attempts int

	// Err is nil on success, otherwise the last error after retries.
	Err error
}

// Success reports whether the task completed.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// FailedTask pairs a failed task with its reason for the summary report.
type FailedTask struct {
	Task Task
	Err  error
}

// Summary aggregates the outcomes of one run. Write-once after the pool
// drains; every submitted task is accounted for exactly once:
// Attempted == Succeeded + len(Failed).
type Summary struct {
	Attempted  int
	Succeeded  int
	Failed     []FailedTask
	TotalBytes int64
	Duration   time.Duration

	// DryRun marks a summary produced without executing any transfer.
	DryRun bool
}

// OK reports whether every task succeeded. Partial success is not success.
func (s *Summary) OK() bool {
	return len(s.Failed) == 0
}
