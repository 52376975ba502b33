package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLevel("warn"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestWith(t *testing.T) {
	l := With("session", "abc")
	require.NotNil(t, l)
	require.NotSame(t, L(), l)
	require.True(t, l.Enabled(context.Background(), slog.LevelError))
}
