package provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *StoreError
		want string
	}{
		{
			name: "with key",
			err:  &StoreError{Op: "Head", Bucket: "b", Key: "a/x.txt", Err: ErrNotFound},
			want: "Head b/a/x.txt: object not found",
		},
		{
			name: "bucket only",
			err:  &StoreError{Op: "List", Bucket: "b", Err: ErrAccessDenied},
			want: "List b: access denied",
		},
		{
			name: "bare op",
			err:  &StoreError{Op: "Close", Err: errors.New("boom")},
			want: "Close: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	wrap := func(sentinel error) error {
		return &StoreError{Op: "Head", Bucket: "b", Key: "k", Err: sentinel}
	}

	assert.True(t, IsNotFound(wrap(ErrNotFound)))
	assert.True(t, IsNotFound(wrap(ErrBucketNotFound)))
	assert.False(t, IsNotFound(wrap(ErrAccessDenied)))

	assert.True(t, IsAccessDenied(wrap(ErrAccessDenied)))
	assert.True(t, IsInvalidCredentials(wrap(ErrInvalidCredentials)))
	assert.True(t, IsThrottled(wrap(ErrThrottled)))
	assert.True(t, IsUnavailable(wrap(ErrUnavailable)))

	deep := fmt.Errorf("outer: %w", wrap(ErrThrottled))
	assert.True(t, IsThrottled(deep))

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("unrelated")))
}
