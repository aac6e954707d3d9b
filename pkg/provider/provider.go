// Package provider defines the object-storage capability surface consumed by
// the transfer engine and the listing commands.
//
// Implementations authenticate through their SDK's default credential chain
// and must be safe for concurrent use; the transfer worker pool calls a single
// Client from many goroutines.
package provider

import (
	"context"
	"io"
	"time"
)

// Client is the storage surface the engine depends on: metadata lookup,
// paginated listing (with and without a delimiter), and object streams.
//
// Head returns ErrNotFound (via wrapping) when the exact key does not exist;
// callers distinguish that from transport failures with IsNotFound.
type Client interface {
	// Head returns metadata for a single object.
	Head(ctx context.Context, key string) (*ObjectMeta, error)

	// List returns one page of objects under the given prefix. Pass the
	// ContinuationToken from the previous ListResult to fetch the next page.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// ListWithDelimiter returns one page of objects directly under the prefix
	// plus the immediate child prefixes, grouped by the delimiter.
	ListWithDelimiter(ctx context.Context, opts ListWithDelimiterOptions) (*ListWithDelimiterResult, error)

	// GetObject opens a read stream for an object. The returned length is the
	// remote-reported content length, or -1 when unknown.
	GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// PutObject creates or overwrites an object from the given reader.
	PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error

	// Close releases resources held by the client.
	Close() error
}

// ListOptions configures a List call.
type ListOptions struct {
	// Prefix filters results to keys starting with this value.
	// Empty lists the whole bucket.
	Prefix string

	// ContinuationToken resumes listing from a previous ListResult.
	// Empty starts from the beginning.
	ContinuationToken string

	// MaxKeys limits the page size. Zero uses the client default.
	MaxKeys int
}

// ListResult is one page of a listing.
type ListResult struct {
	Objects []ObjectSummary

	// ContinuationToken retrieves the next page. Empty means no more pages.
	ContinuationToken string

	// IsTruncated reports whether more results are available.
	IsTruncated bool
}

// ListWithDelimiterOptions configures a delimiter (directory-style) listing.
type ListWithDelimiterOptions struct {
	Prefix            string
	Delimiter         string
	ContinuationToken string
	MaxKeys           int
}

// ListWithDelimiterResult is one page of a delimiter listing.
type ListWithDelimiterResult struct {
	// Objects are directly under the prefix (no delimiter in the remainder).
	Objects []ObjectSummary

	// CommonPrefixes are the immediate child prefixes.
	CommonPrefixes []string

	ContinuationToken string
	IsTruncated       bool
}

// ObjectSummary is the per-object metadata returned by listings.
type ObjectSummary struct {
	// Key is the full object key in the bucket, never a display-relative name.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag with surrounding quotes stripped.
	ETag string

	// LastModified is the remote modification timestamp.
	LastModified time.Time
}

// ObjectMeta is the full metadata for a single object, returned by Head.
type ObjectMeta struct {
	ObjectSummary

	// ContentType is the MIME type of the object.
	ContentType string
}
