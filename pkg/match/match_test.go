package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid patterns", func(t *testing.T) {
		m, err := New(Config{Includes: []string{"**/*.csv"}, Excludes: []string{"tmp/**"}})
		require.NoError(t, err)
		assert.False(t, m.Empty())
	})

	t.Run("invalid include pattern", func(t *testing.T) {
		_, err := New(Config{Includes: []string{"[unclosed"}})
		require.ErrorIs(t, err, ErrInvalidPattern)

		var perr *PatternError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "[unclosed", perr.Pattern)
	})

	t.Run("invalid exclude pattern", func(t *testing.T) {
		_, err := New(Config{Excludes: []string{"[bad"}})
		require.ErrorIs(t, err, ErrInvalidPattern)
	})
}

func TestMatcherMatch(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		path string
		want bool
	}{
		{
			name: "no patterns matches everything",
			cfg:  Config{},
			path: "data/file.txt",
			want: true,
		},
		{
			name: "hidden path rejected by default",
			cfg:  Config{},
			path: ".git/config",
			want: false,
		},
		{
			name: "hidden segment rejected anywhere",
			cfg:  Config{},
			path: "data/.cache/blob",
			want: false,
		},
		{
			name: "hidden allowed when opted in",
			cfg:  Config{IncludeHidden: true},
			path: ".env",
			want: true,
		},
		{
			name: "include must match",
			cfg:  Config{Includes: []string{"**/*.csv"}},
			path: "data/report.csv",
			want: true,
		},
		{
			name: "include miss",
			cfg:  Config{Includes: []string{"**/*.csv"}},
			path: "data/report.json",
			want: false,
		},
		{
			name: "exclude wins over include",
			cfg:  Config{Includes: []string{"**/*.csv"}, Excludes: []string{"tmp/**"}},
			path: "tmp/report.csv",
			want: false,
		},
		{
			name: "any include suffices",
			cfg:  Config{Includes: []string{"*.json", "*.csv"}},
			path: "report.csv",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(".env"))
	assert.True(t, IsHidden("dir/.hidden/file"))
	assert.False(t, IsHidden("dir/visible.txt"))
	assert.False(t, IsHidden("dir.with.dots/file"))
}
