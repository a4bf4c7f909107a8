package correlation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewLogHandler(slog.NewJSONHandler(buf, nil)))
}

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogHandlerTagsBoundContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := New("corr-1", "t1")
	c.UserID = "u1"
	c.TraceID = "trace-1"
	ctx, err := With(context.Background(), c)
	require.NoError(t, err)

	logger.InfoContext(ctx, "quote requested")

	line := logLine(t, &buf)
	assert.Equal(t, "corr-1", line[LogKeyCorrelationID])
	assert.Equal(t, "t1", line[LogKeyTenantID])
	assert.Equal(t, "u1", line[LogKeyUserID])
	assert.Equal(t, "trace-1", line[LogKeyTraceID])
}

func TestLogHandlerOmitsAbsentOptionalKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx, err := With(context.Background(), New("corr-1", "t1"))
	require.NoError(t, err)

	logger.InfoContext(ctx, "quote requested")

	line := logLine(t, &buf)
	assert.Equal(t, "corr-1", line[LogKeyCorrelationID])
	for _, key := range []string{LogKeyUserID, LogKeyRequestID, LogKeySpanID, LogKeyTraceID} {
		_, present := line[key]
		assert.False(t, present, "key %s must be omitted, not written empty", key)
	}
}

func TestLogHandlerUnboundContextLogsPlainly(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.InfoContext(context.Background(), "startup")

	line := logLine(t, &buf)
	assert.Equal(t, "startup", line["msg"])
	_, present := line[LogKeyCorrelationID]
	assert.False(t, present)
}

func TestLogHandlerPreservesWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).With("component", "rfq")

	ctx, err := With(context.Background(), New("corr-1", "t1"))
	require.NoError(t, err)

	logger.WithGroup("detail").InfoContext(ctx, "priced", "venue", "XLON")

	line := logLine(t, &buf)
	assert.Equal(t, "rfq", line["component"])
	detail, ok := line["detail"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "XLON", detail["venue"])
	// Correlation attrs land in the active group, carried by the record.
	assert.Equal(t, "corr-1", detail[LogKeyCorrelationID])
}
