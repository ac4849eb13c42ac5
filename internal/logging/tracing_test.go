package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Amund211/pokecache/internal/logging"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTracingLogHandler(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, buf *bytes.Buffer) map[string]any {
		t.Helper()
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		return entry
	}

	t.Run("adds span context", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := slog.New(logging.NewTracingLogHandler(slog.NewJSONHandler(buf, nil))).With("component", "test")

		traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		require.NoError(t, err)
		spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
		require.NoError(t, err)
		ctx := trace.ContextWithSpanContext(t.Context(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))

		logger.InfoContext(ctx, "test")

		entry := decode(t, buf)
		require.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
		require.Equal(t, "00f067aa0ba902b7", entry["span_id"])
		require.Equal(t, true, entry["trace_sampled"])
		require.Equal(t, "test", entry["component"])
	})

	t.Run("no span context", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := slog.New(logging.NewTracingLogHandler(slog.NewJSONHandler(buf, nil)))

		logger.InfoContext(t.Context(), "test")

		entry := decode(t, buf)
		require.NotContains(t, entry, "trace_id")
		require.NotContains(t, entry, "span_id")
	})
}
