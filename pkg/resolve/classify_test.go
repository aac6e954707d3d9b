package resolve

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/cloudcp/pkg/provider"
)

// mockStore implements provider.Client for classification tests.
type mockStore struct {
	heads   map[string]provider.ObjectMeta
	headErr error
	keys    []string
	listErr error

	headCalls int
	listCalls int
}

func (m *mockStore) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	m.headCalls++
	if m.headErr != nil {
		return nil, m.headErr
	}
	if meta, ok := m.heads[key]; ok {
		return &meta, nil
	}
	return nil, fmt.Errorf("head %q: %w", key, provider.ErrNotFound)
}

func (m *mockStore) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var objects []provider.ObjectSummary
	for _, k := range m.keys {
		if !strings.HasPrefix(k, opts.Prefix) {
			continue
		}
		objects = append(objects, provider.ObjectSummary{Key: k})
		if opts.MaxKeys > 0 && len(objects) >= opts.MaxKeys {
			break
		}
	}
	return &provider.ListResult{Objects: objects}, nil
}

func (m *mockStore) ListWithDelimiter(ctx context.Context, opts provider.ListWithDelimiterOptions) (*provider.ListWithDelimiterResult, error) {
	return &provider.ListWithDelimiterResult{}, nil
}

func (m *mockStore) GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	return nil, 0, fmt.Errorf("get %q: %w", key, provider.ErrNotFound)
}

func (m *mockStore) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error {
	return nil
}

func (m *mockStore) Close() error { return nil }

func TestClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("trailing separator short-circuits to prefix", func(t *testing.T) {
		store := &mockStore{}
		kind, err := Classify(ctx, store, Locator{Bucket: "b", Key: "dir/"})
		require.NoError(t, err)
		assert.Equal(t, KindPrefix, kind)
		assert.Zero(t, store.headCalls)
		assert.Zero(t, store.listCalls)
	})

	t.Run("empty key is the bucket root prefix", func(t *testing.T) {
		store := &mockStore{}
		kind, err := Classify(ctx, store, Locator{Bucket: "b"})
		require.NoError(t, err)
		assert.Equal(t, KindPrefix, kind)
	})

	t.Run("exact object wins over prefix probe", func(t *testing.T) {
		store := &mockStore{
			heads: map[string]provider.ObjectMeta{"data": {}},
			keys:  []string{"data/nested.txt"},
		}
		kind, err := Classify(ctx, store, Locator{Bucket: "b", Key: "data"})
		require.NoError(t, err)
		assert.Equal(t, KindObject, kind)
		assert.Zero(t, store.listCalls)
	})

	t.Run("missing object falls back to prefix probe", func(t *testing.T) {
		store := &mockStore{keys: []string{"data/a.txt", "data/b.txt"}}
		kind, err := Classify(ctx, store, Locator{Bucket: "b", Key: "data"})
		require.NoError(t, err)
		assert.Equal(t, KindPrefix, kind)
		assert.Equal(t, 1, store.headCalls)
		assert.Equal(t, 1, store.listCalls)
	})

	t.Run("nothing found", func(t *testing.T) {
		store := &mockStore{}
		_, err := Classify(ctx, store, Locator{Bucket: "b", Key: "missing"})
		require.ErrorIs(t, err, ErrSourceNotFound)
		assert.Contains(t, err.Error(), "s3://b/missing")
	})

	t.Run("head transport failure propagates", func(t *testing.T) {
		store := &mockStore{headErr: provider.ErrAccessDenied}
		_, err := Classify(ctx, store, Locator{Bucket: "b", Key: "secret"})
		require.ErrorIs(t, err, provider.ErrAccessDenied)
		assert.Zero(t, store.listCalls)
	})

	t.Run("probe list failure propagates", func(t *testing.T) {
		store := &mockStore{listErr: provider.ErrUnavailable}
		_, err := Classify(ctx, store, Locator{Bucket: "b", Key: "data"})
		require.ErrorIs(t, err, provider.ErrUnavailable)
	})
}
