package listing

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/3leaps/cloudcp/pkg/provider"
)

// Entry is one display row of a listing: either a file with size and
// modification time, or a directory (common prefix).
type Entry struct {
	// Name is relative to the requested prefix. Directories carry a single
	// trailing separator.
	Name string

	// IsDir marks a common-prefix (directory) row.
	IsDir bool

	Size     int64
	Modified time.Time
}

// Lister composes paginated listing output into directory-style or fully
// recursive views for display.
type Lister struct {
	store    provider.Client
	pageSize int
}

// New creates a Lister. pageSize <= 0 uses the client default.
func New(store provider.Client, pageSize int) *Lister {
	return &Lister{store: store, pageSize: pageSize}
}

// Flat returns the one-level view of a prefix: objects directly under it as
// file rows and immediate child prefixes as directory rows. Zero matches is
// an empty result, not an error.
//
// A requested prefix without a trailing separator is listed as "prefix/", so
// `ls s3://b/dir` and `ls s3://b/dir/` show the same rows.
func (l *Lister) Flat(ctx context.Context, prefix string) ([]Entry, error) {
	apiPrefix := prefix
	if apiPrefix != "" && !strings.HasSuffix(apiPrefix, "/") {
		apiPrefix += "/"
	}

	var (
		objects []provider.ObjectSummary
		dirs    = map[string]struct{}{}
		token   string
	)
	for {
		res, err := l.store.ListWithDelimiter(ctx, provider.ListWithDelimiterOptions{
			Prefix:            apiPrefix,
			Delimiter:         "/",
			ContinuationToken: token,
			MaxKeys:           l.pageSize,
		})
		if err != nil {
			return nil, err
		}

		objects = append(objects, res.Objects...)
		for _, cp := range res.CommonPrefixes {
			dirs[cp] = struct{}{}
		}

		if !res.IsTruncated || res.ContinuationToken == "" {
			break
		}
		token = res.ContinuationToken
	}

	entries := make([]Entry, 0, len(objects)+len(dirs))
	seen := map[string]struct{}{}

	for dir := range dirs {
		if dir == apiPrefix {
			continue
		}
		rel := relativeName(dir, apiPrefix)
		if rel == "" {
			continue
		}
		rel = strings.TrimSuffix(rel, "/") + "/"
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		entries = append(entries, Entry{Name: rel, IsDir: true})
	}

	for _, obj := range objects {
		// The directory marker object for the prefix itself is not a row.
		rel := relativeName(obj.Key, apiPrefix)
		if rel == "" {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		entries = append(entries, Entry{Name: rel, Size: obj.Size, Modified: obj.LastModified})
	}

	sortEntries(entries)
	return entries, nil
}

// Recursive returns every object under the prefix as a file row with its name
// relative to the prefix. The directory marker for the prefix itself is
// skipped.
func (l *Lister) Recursive(ctx context.Context, prefix string) ([]Entry, error) {
	apiPrefix := prefix
	if apiPrefix != "" && !strings.HasSuffix(apiPrefix, "/") {
		apiPrefix += "/"
	}

	var entries []Entry
	seen := map[string]struct{}{}

	pager := NewPaginator(l.store, l.pageSize)
	err := pager.Each(ctx, apiPrefix, func(obj provider.ObjectSummary) error {
		rel := relativeName(obj.Key, apiPrefix)
		if rel == "" {
			return nil
		}
		if _, dup := seen[rel]; dup {
			return nil
		}
		seen[rel] = struct{}{}
		entries = append(entries, Entry{Name: rel, Size: obj.Size, Modified: obj.LastModified})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortEntries(entries)
	return entries, nil
}

// relativeName strips the requested prefix for display. Keys outside the
// prefix (possible with odd delimiters) are shown in full.
func relativeName(key, prefix string) string {
	if prefix != "" && strings.HasPrefix(key, prefix) {
		return key[len(prefix):]
	}
	return key
}

// sortEntries orders directories before files, each group alphabetically.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
}
