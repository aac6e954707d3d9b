// Package report renders end-of-run transfer summaries.
//
// The summary is a short human-readable block written after a cp
// invocation: elapsed time, success and failure counts, bytes moved,
// and the per-item reasons for anything that failed.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3leaps/cloudcp/pkg/transfer"
)

// NewRunID returns a correlation ID for one CLI invocation. The ID ties
// log lines and the final summary together.
func NewRunID() string {
	return uuid.NewString()
}

// Printer writes transfer summaries to a stream, normally stderr so
// that stdout stays clean for listing output.
type Printer struct {
	w     io.Writer
	runID string
}

// NewPrinter creates a summary printer bound to a run ID.
func NewPrinter(w io.Writer, runID string) *Printer {
	return &Printer{w: w, runID: runID}
}

// Print renders the summary block for a completed transfer.
//
// Write errors on the output stream are ignored; a summary that cannot
// be printed must not change the run's outcome.
func (p *Printer) Print(title string, sum *transfer.Summary) {
	rule := "------------------------------"
	fmt.Fprintf(p.w, "%s %s %s\n", rule, title, rule)
	if sum.DryRun {
		fmt.Fprintf(p.w, "Dry run: %d transfer(s) planned, none executed.\n", sum.Attempted)
		fmt.Fprintf(p.w, "%s\n", rule)
		return
	}

	fmt.Fprintf(p.w, "Operation completed in %.2f seconds.\n", sum.Duration.Seconds())
	fmt.Fprintf(p.w, "Attempted: %d file(s)\n", sum.Attempted)
	fmt.Fprintf(p.w, "Succeeded: %d file(s) (%s)\n", sum.Succeeded, humanize.IBytes(uint64(sum.TotalBytes)))
	fmt.Fprintf(p.w, "Failed:    %d file(s)\n", len(sum.Failed))
	if len(sum.Failed) > 0 {
		fmt.Fprintln(p.w, "Failed items:")
		for _, f := range sum.Failed {
			fmt.Fprintf(p.w, "  - %s: %v\n", f.Task.Describe(), f.Err)
		}
	}
	fmt.Fprintf(p.w, "%s\n", rule)
}

// Log emits the one-line structured counterpart of Print.
func (p *Printer) Log(logger *zap.Logger, sum *transfer.Summary) {
	logger.Info("Transfer summary",
		zap.String("run_id", p.runID),
		zap.Int("attempted", sum.Attempted),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", len(sum.Failed)),
		zap.Int64("bytes", sum.TotalBytes),
		zap.Duration("duration", sum.Duration),
		zap.Bool("dry_run", sum.DryRun))
}
