package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics(10)
	m.RecordRequest("parse")
	m.RecordRequest("parse")
	m.RecordRequest("finalize")
	m.RecordFailure("finalize")
	m.RecordDuration("parse", 10*time.Millisecond)
	m.RecordDuration("parse", 30*time.Millisecond)
	m.RecordMatches(5, 1)

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.RequestTotal)
	assert.Equal(t, int64(1), s.RequestFailed)
	assert.Equal(t, int64(5), s.MatchTotal)
	assert.Equal(t, int64(1), s.ParsingErrors)
	require.Contains(t, s.Operations, "parse")
	assert.Equal(t, int64(2), s.Operations["parse"].Count)
	assert.Equal(t, int64(20), s.Operations["parse"].AverageDuration)
	assert.Equal(t, int64(1), s.Operations["finalize"].Errors)
	assert.InDelta(t, 66.67, s.SuccessRate(), 0.01)

	m.Reset()
	s = m.Snapshot()
	assert.Zero(t, s.RequestTotal)
	assert.Empty(t, s.Operations)
	assert.Equal(t, 100.0, s.SuccessRate())
}

func TestMetrics_DurationWindow(t *testing.T) {
	m := NewMetrics(3)
	for i := 1; i <= 5; i++ {
		m.RecordDuration("parse", time.Duration(i)*time.Millisecond)
	}
	assert.Len(t, m.durations, 3)
	assert.Equal(t, 3*time.Millisecond, m.durations[0])
	assert.Equal(t, int64(4), m.Snapshot().P95Duration)
}

func TestRequestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rc := NewRequestContext(logger, "parse")
	assert.Len(t, rc.RequestID, 36)

	ctx := WithRequestContext(context.Background(), rc)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, rc, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)

	rc.Info("parsed", slog.Int(LogFieldMatches, 3))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, rc.RequestID, line[LogFieldRequestID])
	assert.Equal(t, "parse", line[LogFieldOperation])
	assert.Equal(t, float64(3), line[LogFieldMatches])
}
