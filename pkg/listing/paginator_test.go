package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/cloudcp/pkg/provider"
)

// pagedStore implements provider.Client over a fixed in-memory key set,
// serving List and ListWithDelimiter in pages like the real service.
type pagedStore struct {
	keys     []provider.ObjectSummary
	pageSize int
	listErr  error

	listCalls int
}

func newPagedStore(pageSize int, keys ...string) *pagedStore {
	s := &pagedStore{pageSize: pageSize}
	for i, k := range keys {
		s.keys = append(s.keys, provider.ObjectSummary{
			Key:          k,
			Size:         int64(100 * (i + 1)),
			LastModified: time.Date(2026, 3, 1, 12, 0, i, 0, time.UTC),
		})
	}
	return s
}

func (s *pagedStore) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	for _, obj := range s.keys {
		if obj.Key == key {
			return &provider.ObjectMeta{ObjectSummary: obj}, nil
		}
	}
	return nil, fmt.Errorf("head %q: %w", key, provider.ErrNotFound)
}

func (s *pagedStore) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}

	pageSize := s.pageSize
	if opts.MaxKeys > 0 && opts.MaxKeys < pageSize {
		pageSize = opts.MaxKeys
	}

	start := 0
	if opts.ContinuationToken != "" {
		var err error
		start, err = strconv.Atoi(opts.ContinuationToken)
		if err != nil {
			return nil, fmt.Errorf("bad token %q", opts.ContinuationToken)
		}
	}

	var matched []provider.ObjectSummary
	for _, obj := range s.keys {
		if strings.HasPrefix(obj.Key, opts.Prefix) {
			matched = append(matched, obj)
		}
	}

	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	res := &provider.ListResult{Objects: matched[start:end]}
	if end < len(matched) {
		res.IsTruncated = true
		res.ContinuationToken = strconv.Itoa(end)
	}
	return res, nil
}

func (s *pagedStore) ListWithDelimiter(ctx context.Context, opts provider.ListWithDelimiterOptions) (*provider.ListWithDelimiterResult, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}

	// Group one level: keys containing the delimiter past the prefix roll up
	// into common prefixes.
	seenPrefix := map[string]struct{}{}
	var objects []provider.ObjectSummary
	var commons []string
	for _, obj := range s.keys {
		if !strings.HasPrefix(obj.Key, opts.Prefix) {
			continue
		}
		rest := obj.Key[len(opts.Prefix):]
		if idx := strings.Index(rest, opts.Delimiter); idx >= 0 {
			cp := opts.Prefix + rest[:idx+1]
			if _, dup := seenPrefix[cp]; !dup {
				seenPrefix[cp] = struct{}{}
				commons = append(commons, cp)
			}
			continue
		}
		objects = append(objects, obj)
	}

	return &provider.ListWithDelimiterResult{
		Objects:        objects,
		CommonPrefixes: commons,
	}, nil
}

func (s *pagedStore) GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	return nil, 0, fmt.Errorf("get %q: %w", key, provider.ErrNotFound)
}

func (s *pagedStore) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error {
	return nil
}

func (s *pagedStore) Close() error { return nil }

func TestPaginatorCollect(t *testing.T) {
	t.Run("drains all pages in order", func(t *testing.T) {
		store := newPagedStore(2,
			"data/a.txt", "data/b.txt", "data/c.txt", "data/d.txt", "data/e.txt")
		pager := NewPaginator(store, 2)

		objects, err := pager.Collect(context.Background(), "data/")
		require.NoError(t, err)

		var keys []string
		for _, obj := range objects {
			keys = append(keys, obj.Key)
		}
		assert.Equal(t, []string{"data/a.txt", "data/b.txt", "data/c.txt", "data/d.txt", "data/e.txt"}, keys)
		assert.Equal(t, 3, store.listCalls)
	})

	t.Run("empty prefix yields empty slice", func(t *testing.T) {
		store := newPagedStore(2, "other/x.txt")
		pager := NewPaginator(store, 2)

		objects, err := pager.Collect(context.Background(), "data/")
		require.NoError(t, err)
		assert.Empty(t, objects)
		assert.Equal(t, 1, store.listCalls)
	})

	t.Run("list failure propagates", func(t *testing.T) {
		store := newPagedStore(2, "data/a.txt")
		store.listErr = provider.ErrUnavailable
		pager := NewPaginator(store, 2)

		_, err := pager.Collect(context.Background(), "data/")
		require.ErrorIs(t, err, provider.ErrUnavailable)
	})
}

func TestPaginatorEach(t *testing.T) {
	t.Run("callback error stops iteration", func(t *testing.T) {
		store := newPagedStore(1, "data/a.txt", "data/b.txt", "data/c.txt")
		pager := NewPaginator(store, 1)

		boom := errors.New("stop here")
		var visited int
		err := pager.Each(context.Background(), "data/", func(provider.ObjectSummary) error {
			visited++
			if visited == 2 {
				return boom
			}
			return nil
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 2, visited)
	})

	t.Run("each object visited exactly once across pages", func(t *testing.T) {
		store := newPagedStore(3,
			"logs/1.gz", "logs/2.gz", "logs/3.gz", "logs/4.gz", "logs/5.gz", "logs/6.gz", "logs/7.gz")
		pager := NewPaginator(store, 3)

		counts := map[string]int{}
		err := pager.Each(context.Background(), "logs/", func(obj provider.ObjectSummary) error {
			counts[obj.Key]++
			return nil
		})
		require.NoError(t, err)
		assert.Len(t, counts, 7)
		for key, n := range counts {
			assert.Equal(t, 1, n, "key %s visited %d times", key, n)
		}
	})
}
