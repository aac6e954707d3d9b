package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/3leaps/cloudcp/pkg/provider"
)

// Kind is the tagged result of classifying a remote source.
type Kind int

const (
	// KindObject means the key names an exact object.
	KindObject Kind = iota

	// KindPrefix means the key denotes a prefix (folder semantics).
	KindPrefix
)

func (k Kind) String() string {
	if k == KindPrefix {
		return "prefix"
	}
	return "object"
}

// ErrSourceNotFound indicates neither an exact object nor any key under the
// prefix exists.
var ErrSourceNotFound = errors.New("remote source not found")

// Classify decides whether a remote locator names a single object or a prefix.
//
// The key space is flat: a key can simultaneously be a prefix of other keys
// and have no literal object of that exact name, so classification is a
// two-step lookup rather than a single stat. A trailing separator (or empty
// key) short-circuits to KindPrefix. Otherwise the exact key is probed with
// Head; on a not-found result a bounded list (one key) against key+"/" decides
// between KindPrefix and ErrSourceNotFound. Non-not-found probe failures are
// returned as-is.
func Classify(ctx context.Context, store provider.Client, loc Locator) (Kind, error) {
	if loc.IsPrefix() {
		return KindPrefix, nil
	}

	_, err := store.Head(ctx, loc.Key)
	if err == nil {
		return KindObject, nil
	}
	if !provider.IsNotFound(err) {
		return KindObject, err
	}

	res, listErr := store.List(ctx, provider.ListOptions{
		Prefix:  loc.Key + "/",
		MaxKeys: 1,
	})
	if listErr != nil {
		return KindObject, listErr
	}
	if len(res.Objects) > 0 {
		return KindPrefix, nil
	}

	return KindObject, fmt.Errorf("%w: %s", ErrSourceNotFound, loc.String())
}
