package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromEnv(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for value, want := range cases {
		t.Setenv("LOG_LEVEL", value)
		assert.Equal(t, want, LevelFromEnv(), value)
	}
}

// failingHandler always errors on Handle.
type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }
func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return f }
func (f failingHandler) WithGroup(string) slog.Handler           { return f }

func TestMultiHandlerDeliversPastFailures(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewJSONHandler(&buf, nil)

	multi := NewMultiHandler(failingHandler{}, ok)
	logger := slog.New(multi)
	logger.Info("still delivered", "k", "v")

	// The healthy handler got the record, the failure surfaced.
	assert.Contains(t, buf.String(), "still delivered")

	record := slog.Record{Level: slog.LevelInfo, Message: "again"}
	err := multi.Handle(context.Background(), record)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "again")
}

func TestMultiHandlerSkipsDisabledHandlers(t *testing.T) {
	var info, errOnly bytes.Buffer
	multi := NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(multi)

	logger.Info("routine")
	logger.Error("broken")

	assert.Contains(t, info.String(), "routine")
	assert.NotContains(t, errOnly.String(), "routine")
	assert.Contains(t, errOnly.String(), "broken")
}
