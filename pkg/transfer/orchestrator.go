package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/3leaps/cloudcp/pkg/listing"
	"github.com/3leaps/cloudcp/pkg/match"
	"github.com/3leaps/cloudcp/pkg/provider"
	"github.com/3leaps/cloudcp/pkg/resolve"
)

// ErrNoMatches indicates a glob source pattern matched no regular files.
var ErrNoMatches = errors.New("pattern matched no files")

// Options configures an Orchestrator.
type Options struct {
	// Parallel is the worker count. Zero uses the host core count.
	Parallel int

	// MaxRetries per task. Negative uses the default.
	MaxRetries int

	// PageSize for remote enumeration. Zero uses the client default.
	PageSize int

	// DryRun replaces execution with a log of intended actions; the task list
	// is built exactly as in a real run.
	DryRun bool

	// Matcher optionally filters enumerated files/objects by relative path.
	Matcher *match.Matcher
}

// Orchestrator coordinates one cp invocation: classify the source, build the
// task list, execute it through the worker pool.
//
// Enumeration is single-threaded and completes before execution starts, so
// task count and total bytes are known up front.
type Orchestrator struct {
	store  provider.Client
	logger *zap.Logger
	opts   Options
}

// New builds an orchestrator around a bucket-bound storage client.
func New(store provider.Client, logger *zap.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{store: store, logger: logger, opts: opts}
}

// Upload copies a local file, directory tree, or glob expansion to the remote
// destination.
func (o *Orchestrator) Upload(ctx context.Context, source string, loc resolve.Locator) (*Summary, error) {
	var (
		tasks []Task
		err   error
	)

	switch {
	case match.IsGlobPattern(source):
		tasks, err = o.buildGlobUploadTasks(source, loc)
	default:
		info, statErr := os.Stat(source)
		if statErr != nil {
			return nil, fmt.Errorf("source %q: %w", source, statErr)
		}
		if info.IsDir() {
			tasks, err = o.buildTreeUploadTasks(source, loc)
		} else if info.Mode().IsRegular() {
			tasks = []Task{{
				LocalPath:    source,
				RemoteKey:    resolve.DestinationObjectName(filepath.Base(source), loc.Key),
				Direction:    Upload,
				ExpectedSize: info.Size(),
			}}
		} else {
			return nil, fmt.Errorf("source %q is neither a regular file nor a directory", source)
		}
	}
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		o.logger.Info("No files to upload", zap.String("source", source))
		return &Summary{DryRun: o.opts.DryRun}, nil
	}

	return o.execute(ctx, tasks), nil
}

// Download copies a remote object, prefix, or glob expansion into the local
// destination directory. A prefix is materialized under
// destDir/<prefix basename>/, as a recursive copy of a folder would be; glob
// matches are laid out relative to the pattern's static prefix.
func (o *Orchestrator) Download(ctx context.Context, loc resolve.Locator, destDir string) (*Summary, error) {
	if match.IsGlobPattern(loc.Key) {
		tasks, err := o.buildGlobDownloadTasks(ctx, loc, destDir)
		if err != nil {
			return nil, err
		}
		return o.execute(ctx, tasks), nil
	}

	kind, err := resolve.Classify(ctx, o.store, loc)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if kind == resolve.KindObject {
		size := SizeUnknown
		if meta, headErr := o.store.Head(ctx, loc.Key); headErr == nil {
			size = meta.Size
		}
		tasks = []Task{{
			LocalPath:    filepath.Join(destDir, path.Base(loc.Key)),
			RemoteKey:    loc.Key,
			Direction:    Download,
			ExpectedSize: size,
		}}
	} else {
		tasks, err = o.buildPrefixDownloadTasks(ctx, loc, destDir)
		if err != nil {
			return nil, err
		}
	}

	if len(tasks) == 0 {
		o.logger.Info("No objects to download", zap.String("source", loc.String()))
		return &Summary{DryRun: o.opts.DryRun}, nil
	}

	return o.execute(ctx, tasks), nil
}

// buildGlobUploadTasks expands a local glob (one task per matched regular
// file; matched directories are skipped). The destination key is treated as a
// prefix since a pattern can match many files.
func (o *Orchestrator) buildGlobUploadTasks(pattern string, loc resolve.Locator) ([]Task, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	var tasks []Task
	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil {
			o.logger.Warn("Skipping unreadable match", zap.String("path", m), zap.Error(statErr))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		tasks = append(tasks, Task{
			LocalPath:    m,
			RemoteKey:    joinKey(loc.Key, filepath.Base(m)),
			Direction:    Upload,
			ExpectedSize: info.Size(),
		})
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatches, pattern)
	}
	return tasks, nil
}

// buildTreeUploadTasks walks the local directory, producing one task per
// regular file. Symlinks are skipped; files that cannot be statted are
// skipped with a warning. Disappearance after enumeration fails only that
// task at execution time.
func (o *Orchestrator) buildTreeUploadTasks(dir string, loc resolve.Locator) ([]Task, error) {
	prefix := resolve.UploadPrefix(loc.Key, filepath.Base(filepath.Clean(dir)))

	var tasks []Task
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			o.logger.Debug("Skipping symbolic link", zap.String("path", p))
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			o.logger.Warn("Skipping file", zap.String("path", p), zap.Error(infoErr))
			return nil
		}

		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return relErr
		}
		relKey := filepath.ToSlash(rel)

		if o.opts.Matcher != nil && !o.opts.Matcher.Match(relKey) {
			return nil
		}

		tasks = append(tasks, Task{
			LocalPath:    p,
			RemoteKey:    joinKey(prefix, relKey),
			Direction:    Upload,
			ExpectedSize: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", dir, err)
	}
	return tasks, nil
}

// buildGlobDownloadTasks expands a remote glob: list the longest static
// prefix of the pattern, keep keys the full pattern matches, and lay the
// matches out under destDir relative to that prefix.
func (o *Orchestrator) buildGlobDownloadTasks(ctx context.Context, loc resolve.Locator, destDir string) ([]Task, error) {
	prefix := match.DerivePrefix(loc.Key)

	var tasks []Task
	pager := listing.NewPaginator(o.store, o.opts.PageSize)
	err := pager.Each(ctx, prefix, func(obj provider.ObjectSummary) error {
		if strings.HasSuffix(obj.Key, "/") {
			return nil
		}
		ok, matchErr := doublestar.Match(loc.Key, obj.Key)
		if matchErr != nil {
			return fmt.Errorf("pattern %q: %w", loc.Key, matchErr)
		}
		if !ok {
			return nil
		}
		rel := strings.TrimPrefix(obj.Key, prefix)
		if o.opts.Matcher != nil && !o.opts.Matcher.Match(rel) {
			return nil
		}
		tasks = append(tasks, Task{
			LocalPath:    filepath.Join(destDir, filepath.FromSlash(rel)),
			RemoteKey:    obj.Key,
			Direction:    Download,
			ExpectedSize: obj.Size,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatches, loc.String())
	}
	return tasks, nil
}

// buildPrefixDownloadTasks drains the paginator for the prefix. Directory
// marker objects (keys ending in the separator, including the prefix itself)
// are skipped, not transferred: a marker written to disk would occupy the
// name its children need as a directory.
func (o *Orchestrator) buildPrefixDownloadTasks(ctx context.Context, loc resolve.Locator, destDir string) ([]Task, error) {
	prefix := loc.Key
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	// Objects land under destDir/<prefix basename>/, mirroring how a
	// recursive folder copy materializes the folder itself.
	folderName := loc.Bucket
	if prefix != "" {
		folderName = path.Base(strings.TrimSuffix(prefix, "/"))
	}
	target := filepath.Join(destDir, folderName)

	var tasks []Task
	pager := listing.NewPaginator(o.store, o.opts.PageSize)
	err := pager.Each(ctx, prefix, func(obj provider.ObjectSummary) error {
		if strings.HasSuffix(obj.Key, "/") {
			return nil
		}
		rel := strings.TrimPrefix(obj.Key, prefix)
		if o.opts.Matcher != nil && !o.opts.Matcher.Match(rel) {
			return nil
		}
		tasks = append(tasks, Task{
			LocalPath:    filepath.Join(target, filepath.FromSlash(rel)),
			RemoteKey:    obj.Key,
			Direction:    Download,
			ExpectedSize: obj.Size,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// execute runs the task list, or logs it in dry-run mode.
func (o *Orchestrator) execute(ctx context.Context, tasks []Task) *Summary {
	if o.opts.DryRun {
		for _, task := range tasks {
			if task.Direction == Upload {
				o.logger.Info("DRY-RUN: would upload",
					zap.String("from", task.LocalPath),
					zap.String("to", task.RemoteKey))
			} else {
				o.logger.Info("DRY-RUN: would download",
					zap.String("from", task.RemoteKey),
					zap.String("to", task.LocalPath))
			}
		}
		return &Summary{Attempted: len(tasks), Succeeded: len(tasks), DryRun: true}
	}

	retry := NewRetryer(o.opts.MaxRetries, o.logger)
	pool := NewPool(o.store, retry, o.opts.Parallel, o.logger)
	return pool.Run(ctx, tasks)
}

// joinKey joins a key prefix and a relative name with a single separator.
func joinKey(prefix, rel string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}
