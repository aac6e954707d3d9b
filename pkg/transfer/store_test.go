package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/3leaps/cloudcp/pkg/provider"
)

// memStore is an in-memory provider.Client shared by the pool and
// orchestrator tests. Error hooks let tests script per-key failures.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	putErr func(key string) error
	getErr func(key string) error

	putCalls int
	getCalls int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) put(key string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = content
}

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *memStore) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if content, ok := m.objects[key]; ok {
		return &provider.ObjectMeta{ObjectSummary: provider.ObjectSummary{
			Key:          key,
			Size:         int64(len(content)),
			LastModified: time.Now(),
		}}, nil
	}
	return nil, fmt.Errorf("head %q: %w", key, provider.ErrNotFound)
}

func (m *memStore) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []provider.ObjectSummary
	for _, k := range m.sortedKeysLocked() {
		if strings.HasPrefix(k, opts.Prefix) {
			matched = append(matched, provider.ObjectSummary{Key: k, Size: int64(len(m.objects[k]))})
			if opts.MaxKeys > 0 && len(matched) >= opts.MaxKeys {
				break
			}
		}
	}
	return &provider.ListResult{Objects: matched}, nil
}

func (m *memStore) ListWithDelimiter(ctx context.Context, opts provider.ListWithDelimiterOptions) (*provider.ListWithDelimiterResult, error) {
	return &provider.ListWithDelimiterResult{}, nil
}

func (m *memStore) GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		if err := m.getErr(key); err != nil {
			return nil, 0, err
		}
	}
	content, ok := m.objects[key]
	if !ok {
		return nil, 0, fmt.Errorf("get %q: %w", key, provider.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(content)), int64(len(content)), nil
}

func (m *memStore) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		if err := m.putErr(key); err != nil {
			return err
		}
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) sortedKeysLocked() []string {
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// fastRetryer retries without real waits.
func fastRetryer(maxRetries int) Retryer {
	r := NewRetryer(maxRetries, nil)
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return r
}
