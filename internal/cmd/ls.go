package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/cloudcp/internal/config"
	"github.com/3leaps/cloudcp/internal/observability"
	"github.com/3leaps/cloudcp/pkg/listing"
	"github.com/3leaps/cloudcp/pkg/provider"
	"github.com/3leaps/cloudcp/pkg/resolve"
)

var lsCmd = &cobra.Command{
	Use:   "ls <path>",
	Short: "List objects under a remote path",
	Long: `List objects under an s3:// path. The default view shows one level,
with sub-prefixes rendered as folders. Recursive mode lists every
object below the prefix.

Examples:
  cloudcp ls s3://bucket/
  cloudcp ls s3://bucket/reports/ -l
  cloudcp ls s3://bucket/reports/ -l -H
  cloudcp ls s3://bucket/reports/ -r`,
	Args: cobra.ExactArgs(1),
	RunE: runLs,
}

var (
	lsLong      bool
	lsHuman     bool
	lsRecursive bool
)

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Long format with size and modification time")
	lsCmd.Flags().BoolVarP(&lsHuman, "human-readable", "H", false, "Human-readable sizes (with -l)")
	lsCmd.Flags().BoolVarP(&lsRecursive, "recursive", "r", false, "List all objects below the prefix")
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	raw := args[0]

	if lsHuman && !lsLong {
		observability.CLILogger.Warn("--human-readable has no effect without --long")
	}

	loc, err := resolve.ParseRemote(raw)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid remote path", err)
	}

	store, err := newStore(ctx, loc.Bucket)
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage", err)
	}
	defer func() { _ = store.Close() }()

	lister := listing.New(store, config.GetConfig().Transfer.PageSize)

	var entries []listing.Entry
	if lsRecursive {
		entries, err = lister.Recursive(ctx, loc.Key)
	} else {
		entries, err = lister.Flat(ctx, loc.Key)
	}
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return exitError(foundry.ExitSignalInt, "Listing cancelled", ctx.Err())
		case provider.IsNotFound(err):
			return exitError(foundry.ExitFileNotFound, "Bucket or prefix not found", err)
		default:
			return exitError(foundry.ExitExternalServiceUnavailable, "Failed to list objects", err)
		}
	}

	return printEntries(entries)
}

func printEntries(entries []listing.Entry) error {
	if len(entries) == 0 {
		fmt.Println("No objects found.")
		return nil
	}

	if !lsLong {
		for _, e := range entries {
			fmt.Println(e.Name)
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	var objects int
	var totalSize int64
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(w, "%s\t%s\t  %s\n", "-", "-", e.Name)
			continue
		}
		objects++
		totalSize += e.Size
		fmt.Fprintf(w, "%s\t%s\t  %s\n",
			formatSize(e.Size),
			e.Modified.Format("2006-01-02 15:04:05"),
			e.Name)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	fmt.Printf("\nFound %d object(s) (%s total)\n", objects, formatSize(totalSize))
	return nil
}

// formatSize renders a byte count, honoring the -H flag.
func formatSize(n int64) string {
	if lsHuman {
		return humanize.IBytes(uint64(n))
	}
	return fmt.Sprintf("%d", n)
}
