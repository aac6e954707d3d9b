package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/cloudcp/internal/config"
	"github.com/3leaps/cloudcp/internal/observability"
	"github.com/3leaps/cloudcp/pkg/match"
	"github.com/3leaps/cloudcp/pkg/provider"
	s3store "github.com/3leaps/cloudcp/pkg/provider/s3"
	"github.com/3leaps/cloudcp/pkg/report"
	"github.com/3leaps/cloudcp/pkg/resolve"
	"github.com/3leaps/cloudcp/pkg/transfer"
)

var cpCmd = &cobra.Command{
	Use:   "cp <source> <destination>",
	Short: "Copy files to or from object storage",
	Long: `Copy a file, folder, or glob expansion between the local filesystem
and object storage. Exactly one side must be a remote s3:// path.

A local folder source uploads recursively. A remote prefix source
downloads recursively into a folder named after the prefix.

Examples:
  cloudcp cp report.csv s3://bucket/reports/
  cloudcp cp report.csv s3://bucket/reports/renamed.csv
  cloudcp cp ./data s3://bucket/backups
  cloudcp cp "logs/*.gz" s3://bucket/archive/
  cloudcp cp s3://bucket/reports/report.csv ./downloads
  cloudcp cp s3://bucket/backups/data ./restore
  cloudcp cp "s3://bucket/logs/**/*.gz" ./logs
  cloudcp cp ./data s3://bucket/backups --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runCp,
}

var (
	cpParallel      int
	cpMaxRetries    int
	cpDryRun        bool
	cpIncludes      []string
	cpExcludes      []string
	cpIncludeHidden bool
)

func init() {
	rootCmd.AddCommand(cpCmd)

	cpCmd.Flags().IntVarP(&cpParallel, "parallel", "n", 0, "Worker count (0 = number of CPU cores)")
	cpCmd.Flags().IntVar(&cpMaxRetries, "max-retries", transfer.DefaultMaxRetries, "Retries per object after the first attempt")
	cpCmd.Flags().BoolVar(&cpDryRun, "dry-run", false, "Show what would be transferred without executing")
	cpCmd.Flags().StringSliceVar(&cpIncludes, "include", nil, "Glob pattern to include (repeatable)")
	cpCmd.Flags().StringSliceVar(&cpExcludes, "exclude", nil, "Glob pattern to exclude (repeatable)")
	cpCmd.Flags().BoolVar(&cpIncludeHidden, "include-hidden", false, "Include dotfiles in recursive transfers")
}

func runCp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src, dst := args[0], args[1]

	srcRemote := resolve.IsRemote(src)
	dstRemote := resolve.IsRemote(dst)
	switch {
	case srcRemote && dstRemote:
		return exitError(foundry.ExitInvalidArgument, "Invalid arguments",
			fmt.Errorf("both paths are remote; bucket-to-bucket copy is not supported"))
	case !srcRemote && !dstRemote:
		return exitError(foundry.ExitInvalidArgument, "Invalid arguments",
			fmt.Errorf("neither path is remote; one side must be an %s:// path", resolve.Scheme))
	}

	matcher, err := match.New(match.Config{
		Includes:      cpIncludes,
		Excludes:      cpExcludes,
		IncludeHidden: cpIncludeHidden,
	})
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid filter pattern", err)
	}

	remote := dst
	if srcRemote {
		remote = src
	}
	loc, err := resolve.ParseRemote(remote)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid remote path", err)
	}

	store, err := newStore(ctx, loc.Bucket)
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage", err)
	}
	defer func() { _ = store.Close() }()

	cfg := config.GetConfig()
	opts := transfer.Options{
		Parallel:   cfg.Transfer.Parallel,
		MaxRetries: cfg.Transfer.MaxRetries,
		PageSize:   cfg.Transfer.PageSize,
		DryRun:     cpDryRun,
		Matcher:    matcher,
	}
	if cmd.Flags().Changed("parallel") {
		opts.Parallel = cpParallel
	}
	if cmd.Flags().Changed("max-retries") {
		opts.MaxRetries = cpMaxRetries
	}

	orch := transfer.New(store, observability.CLILogger, opts)

	var sum *transfer.Summary
	var title string
	if srcRemote {
		if err := checkDownloadDestination(dst); err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid destination", err)
		}
		title = "Download Summary"
		sum, err = orch.Download(ctx, loc, dst)
	} else {
		title = "Upload Summary"
		sum, err = orch.Upload(ctx, src, loc)
	}
	if err != nil {
		return cpExitError(ctx, err)
	}

	runID := report.NewRunID()
	printer := report.NewPrinter(os.Stderr, runID)
	printer.Print(title, sum)
	printer.Log(observability.CLILogger, sum)

	if ctx.Err() != nil {
		return exitError(foundry.ExitSignalInt, "Transfer cancelled", ctx.Err())
	}
	if !sum.OK() {
		return fmt.Errorf("%d of %d transfer(s) failed", len(sum.Failed), sum.Attempted)
	}
	return nil
}

// cpExitError maps enumeration and classification failures to exit codes.
func cpExitError(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return exitError(foundry.ExitSignalInt, "Transfer cancelled", ctx.Err())
	case errors.Is(err, resolve.ErrSourceNotFound), errors.Is(err, os.ErrNotExist):
		return exitError(foundry.ExitFileNotFound, "Source not found", err)
	case errors.Is(err, transfer.ErrNoMatches):
		return exitError(foundry.ExitFileNotFound, "No files matched", err)
	case provider.IsInvalidCredentials(err), provider.IsAccessDenied(err),
		provider.IsNotFound(err), provider.IsUnavailable(err), provider.IsThrottled(err):
		return exitError(foundry.ExitExternalServiceUnavailable, "Storage request failed", err)
	default:
		return err
	}
}

// checkDownloadDestination rejects an existing non-directory target.
// A missing directory is created lazily as objects land.
func checkDownloadDestination(dest string) error {
	info, err := os.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("destination %q exists and is not a directory", dest)
	}
	return nil
}

// newStore builds a bucket-bound S3 client from config and root flags.
// Flags win over config file and environment values.
func newStore(ctx context.Context, bucket string) (*s3store.Client, error) {
	cfg := config.GetConfig()

	region := cfg.S3.Region
	if rootRegion != "" {
		region = rootRegion
	}
	endpoint := cfg.S3.Endpoint
	if rootEndpoint != "" {
		endpoint = rootEndpoint
	}
	profile := cfg.S3.Profile
	if rootProfile != "" {
		profile = rootProfile
	}

	observability.CLILogger.Debug("Connecting to storage",
		zap.String("bucket", bucket),
		zap.String("region", region),
		zap.String("endpoint", endpoint),
		zap.String("profile", profile))

	return s3store.New(ctx, s3store.Config{
		Bucket:          bucket,
		Region:          region,
		Endpoint:        endpoint,
		Profile:         profile,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		// S3-compatible services (MinIO, moto, etc.) require path style.
		ForcePathStyle: rootForcePathStyle || cfg.S3.ForcePathStyle || endpoint != "",
		MaxKeys:        cfg.Transfer.PageSize,
	})
}
