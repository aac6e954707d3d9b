// Package listing implements paginated enumeration of remote prefixes and the
// flat/recursive views built on top of it.
package listing

import (
	"context"

	"github.com/3leaps/cloudcp/pkg/provider"
)

// Paginator drains a remote prefix page by page via continuation tokens.
//
// The sequence is finite and not restartable mid-iteration; a fresh Each call
// starts over from the beginning. Object order is whatever the remote listing
// returns (lexicographic for S3); no re-sorting happens here.
type Paginator struct {
	store    provider.Client
	pageSize int
}

// NewPaginator creates a Paginator. pageSize <= 0 uses the client default.
func NewPaginator(store provider.Client, pageSize int) *Paginator {
	return &Paginator{store: store, pageSize: pageSize}
}

// Each calls fn for every object under prefix, fetching pages as needed.
// An empty first page is not an error: fn is simply never called. Returning a
// non-nil error from fn stops iteration and propagates the error.
func (p *Paginator) Each(ctx context.Context, prefix string, fn func(provider.ObjectSummary) error) error {
	var token string
	for {
		res, err := p.store.List(ctx, provider.ListOptions{
			Prefix:            prefix,
			ContinuationToken: token,
			MaxKeys:           p.pageSize,
		})
		if err != nil {
			return err
		}

		for _, obj := range res.Objects {
			if err := fn(obj); err != nil {
				return err
			}
		}

		if !res.IsTruncated || res.ContinuationToken == "" {
			return nil
		}
		token = res.ContinuationToken
	}
}

// Collect drains the prefix into a materialized slice.
// Zero matches yields an empty slice, not an error; callers that require at
// least one match surface that themselves.
func (p *Paginator) Collect(ctx context.Context, prefix string) ([]provider.ObjectSummary, error) {
	var objects []provider.ObjectSummary
	err := p.Each(ctx, prefix, func(obj provider.ObjectSummary) error {
		objects = append(objects, obj)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}
