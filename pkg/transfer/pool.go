package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/cloudcp/pkg/provider"
)

// Pool executes a materialized task list with a fixed number of workers.
//
// Workers never touch shared counters: each completed task is sent as an
// Outcome over a channel to a single aggregator, which owns the Summary until
// the pool drains. Task completion order is unspecified.
type Pool struct {
	store   provider.Client
	retry   Retryer
	workers int
	logger  *zap.Logger
}

// NewPool builds a pool. workers <= 0 defaults to the host parallelism.
func NewPool(store provider.Client, retry Retryer, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{store: store, retry: retry, workers: workers, logger: logger}
}

// Run moves every task and returns the aggregated summary. Task-level
// failures never abort the pool; they are collected in Summary.Failed.
// Cancellation stops the pickup of new tasks, and tasks never started are
// recorded as failed with the context error.
func (p *Pool) Run(ctx context.Context, tasks []Task) *Summary {
	start := time.Now()

	taskCh := make(chan Task)
	outcomeCh := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				outcomeCh <- p.runTask(ctx, task)
			}
		}()
	}

	// Feeder: stops handing out tasks once the context is cancelled and
	// accounts for the remainder so the summary stays exactly additive.
	go func() {
		defer close(taskCh)
		for i, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				for _, skipped := range tasks[i:] {
					outcomeCh <- Outcome{Task: skipped, Err: ctx.Err()}
				}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomeCh)
	}()

	summary := &Summary{}
	for outcome := range outcomeCh {
		summary.Attempted++
		if outcome.Success() {
			summary.Succeeded++
			summary.TotalBytes += outcome.Bytes
		} else {
			summary.Failed = append(summary.Failed, FailedTask{Task: outcome.Task, Err: outcome.Err})
		}
	}

	summary.Duration = time.Since(start)
	return summary
}

// runTask prepares the local side and drives the remote attempt through the
// retryer. Preparation failures (missing file, unwritable directory) fail
// just this task.
func (p *Pool) runTask(ctx context.Context, task Task) Outcome {
	switch task.Direction {
	case Download:
		return p.download(ctx, task)
	default:
		return p.upload(ctx, task)
	}
}

func (p *Pool) upload(ctx context.Context, task Task) Outcome {
	// The file may have disappeared between enumeration and execution.
	info, err := os.Stat(task.LocalPath)
	if err != nil {
		return Outcome{Task: task, Err: fmt.Errorf("stat source: %w", err)}
	}
	size := info.Size()

	attempts, err := p.retry.Do(ctx, task.RemoteKey, func() error {
		f, openErr := os.Open(task.LocalPath)
		if openErr != nil {
			return fmt.Errorf("open source: %w", openErr)
		}
		defer func() { _ = f.Close() }()

		return p.store.PutObject(ctx, task.RemoteKey, f, size)
	})
	if err != nil {
		return Outcome{Task: task, Attempts: attempts, Err: err}
	}

	return Outcome{Task: task, Attempts: attempts, Bytes: size}
}

func (p *Pool) download(ctx context.Context, task Task) Outcome {
	// MkdirAll is idempotent and safe when sibling workers create the same
	// parent concurrently.
	if dir := filepath.Dir(task.LocalPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Outcome{Task: task, Err: fmt.Errorf("create directory: %w", err)}
		}
	}

	var written int64
	var reported int64
	attempts, err := p.retry.Do(ctx, task.RemoteKey, func() error {
		body, length, getErr := p.store.GetObject(ctx, task.RemoteKey)
		if getErr != nil {
			return getErr
		}
		defer func() { _ = body.Close() }()
		reported = length

		f, createErr := os.Create(task.LocalPath)
		if createErr != nil {
			return fmt.Errorf("create file: %w", createErr)
		}

		written, getErr = io.Copy(f, body)
		if closeErr := f.Close(); getErr == nil {
			getErr = closeErr
		}
		return getErr
	})
	if err != nil {
		return Outcome{Task: task, Attempts: attempts, Err: err}
	}

	// Size headers may be absent or approximate for some content encodings,
	// so a mismatch is logged and the transfer still counts as success.
	expected := reported
	if expected <= 0 {
		expected = task.ExpectedSize
	}
	if expected > 0 && written != expected {
		p.logger.Warn("Downloaded size does not match remote-reported size",
			zap.String("key", task.RemoteKey),
			zap.Int64("expected", expected),
			zap.Int64("written", written))
	}

	return Outcome{Task: task, Attempts: attempts, Bytes: written}
}
