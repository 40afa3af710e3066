package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Debug("debug")
	l.Info("info")
	require.Equal(t, 2, logs.Len())

	l.SetLevel(LevelWarn)
	require.Equal(t, LevelWarn, l.GetLevel())
	l.Info("dropped")
	l.Warn("kept")
	require.Equal(t, 3, logs.Len())

	l.SetLevel(LevelSilent)
	l.Error("dropped")
	require.Equal(t, 3, logs.Len())
}

func TestLogger_FieldsAndWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core)).With(String("component", "test"))

	l.Error("fault",
		Uint32("owner", 7),
		Duration("delta", 16*time.Millisecond),
		Bool("skipped", true),
		Error(errors.New("boom")),
	)

	entries := logs.FilterMessage("fault").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	require.Equal(t, "test", ctx["component"])
	require.EqualValues(t, 7, ctx["owner"])
	require.Equal(t, 16*time.Millisecond, ctx["delta"])
	require.Equal(t, true, ctx["skipped"])
	require.Equal(t, "boom", ctx["error"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("nothing happens")
	require.Equal(t, LevelSilent, l.GetLevel())
}
