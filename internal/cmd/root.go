// Package cmd implements the cloudcp command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/cloudcp/internal/config"
	"github.com/3leaps/cloudcp/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "cloudcp",
	Short: "Copy files between local storage and S3-compatible object storage",
	Long: `cloudcp moves files and folders between the local filesystem and
S3-compatible object storage, and lists remote paths.

Remote paths use the s3://bucket/key form. Bulk operations run in
parallel with per-object retry.

Examples:
  cloudcp cp report.csv s3://bucket/reports/
  cloudcp cp ./data s3://bucket/backups/data
  cloudcp cp s3://bucket/reports/report.csv ./downloads
  cloudcp ls s3://bucket/reports/ -l -H`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		observability.InitCLILogger(rootVerbose, rootQuiet)
		if _, err := config.Load(); err != nil {
			return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
		}
		return nil
	},
}

var (
	rootVerbose bool
	rootQuiet   bool

	rootRegion         string
	rootEndpoint       string
	rootProfile        string
	rootForcePathStyle bool
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false, "Log warnings and errors only")
	rootCmd.PersistentFlags().StringVar(&rootRegion, "region", "", "AWS region")
	rootCmd.PersistentFlags().StringVar(&rootProfile, "profile", "", "AWS credentials profile")
	rootCmd.PersistentFlags().StringVar(&rootEndpoint, "endpoint", "", "Custom S3 endpoint URL")
	rootCmd.PersistentFlags().BoolVar(&rootForcePathStyle, "force-path-style", false, "Use path-style bucket addressing")
}

// versionInfo holds build-time version metadata, injected via SetVersionInfo.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata and wires it into --version output.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate)
}

// Execute runs the CLI and returns the process exit code. SIGINT and
// SIGTERM cancel the command context so in-flight transfers drain.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	observability.Sync()
	if err == nil {
		return 0
	}

	var coded *ExitCodeError
	if errors.As(err, &coded) {
		observability.CLILogger.Error(coded.Message, zap.Error(coded.Err))
		return coded.Code
	}

	observability.CLILogger.Error("Command failed", zap.Error(err))
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// ExitCodeError carries a specific process exit code up through cobra.
type ExitCodeError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitCodeError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// exitError creates an error that causes the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &ExitCodeError{Code: code, Message: message, Err: err}
}
