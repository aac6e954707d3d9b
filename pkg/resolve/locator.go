// Package resolve maps between local paths and remote object names.
//
// It owns the path/prefix policy of the tool: parsing s3:// locators,
// deciding whether a remote source is a single object or a prefix, and naming
// destination objects. Everything here is pure except Classify, which takes
// the storage client as an explicit collaborator.
package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme is the remote path scheme accepted by the tool.
const Scheme = "s3"

// Locator identifies a remote bucket and key (or key prefix).
type Locator struct {
	// Bucket is the bucket name. Never empty for a parsed locator.
	Bucket string

	// Key is the object key or prefix. Empty means the bucket root.
	Key string
}

// String returns the locator in s3://bucket/key form.
func (l Locator) String() string {
	if l.Key == "" {
		return fmt.Sprintf("%s://%s/", Scheme, l.Bucket)
	}
	return fmt.Sprintf("%s://%s/%s", Scheme, l.Bucket, l.Key)
}

// IsPrefix reports whether the key is explicitly a prefix: it ends with the
// separator, or is empty (bucket root).
func (l Locator) IsPrefix() bool {
	return l.Key == "" || strings.HasSuffix(l.Key, "/")
}

// Parse errors.
var (
	// ErrInvalidScheme indicates the path does not start with scheme://.
	ErrInvalidScheme = errors.New("invalid remote path scheme")

	// ErrMissingBucket indicates the bucket segment is empty.
	ErrMissingBucket = errors.New("missing bucket name")
)

// IsRemote reports whether the path carries the remote scheme prefix.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, Scheme+"://")
}

// ParseRemote parses a remote path of the form s3://bucket/key/path.
//
// The key may be empty (bucket root) and keeps any trailing separator, which
// downstream classification treats as an explicit prefix marker.
func ParseRemote(raw string) (Locator, error) {
	schemeEnd := strings.Index(raw, "://")
	if schemeEnd == -1 {
		return Locator{}, fmt.Errorf("%w: %q (expected %s://bucket/key)", ErrInvalidScheme, raw, Scheme)
	}
	if !strings.EqualFold(raw[:schemeEnd], Scheme) {
		return Locator{}, fmt.Errorf("%w: %q (supported: %s)", ErrInvalidScheme, raw[:schemeEnd], Scheme)
	}

	remainder := raw[schemeEnd+3:]
	bucket := remainder
	key := ""
	if slash := strings.Index(remainder, "/"); slash != -1 {
		bucket = remainder[:slash]
		key = remainder[slash+1:]
	}
	if bucket == "" {
		return Locator{}, fmt.Errorf("%w: in %q", ErrMissingBucket, raw)
	}

	return Locator{Bucket: bucket, Key: key}, nil
}
