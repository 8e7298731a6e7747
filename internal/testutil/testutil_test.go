package testutil

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilacgalaxy/vts-face-tracker/internal/engine"
	"github.com/lilacgalaxy/vts-face-tracker/internal/monitoring"
)

func TestQuietLogs(t *testing.T) {
	var got []string
	monitoring.SetLogger(func(format string, v ...interface{}) { got = append(got, format) })
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	t.Run("muted", func(t *testing.T) {
		QuietLogs(t)
		monitoring.Logf("hidden")
	})
	monitoring.Logf("visible")
	assert.Equal(t, []string{"visible"}, got)
}

func TestObserveLogs(t *testing.T) {
	logs := ObserveLogs(t)
	monitoring.L().Warn("structured")
	monitoring.Logf("formatted %d", 1)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "structured", logs.All()[0].Message)
	assert.Equal(t, "formatted 1", logs.All()[1].Message)
}

func TestApproxFloats(t *testing.T) {
	assert.True(t, cmp.Equal([]float64{1, 2}, []float64{1 + 1e-10, 2}, ApproxFloats(1e-9)))
	assert.False(t, cmp.Equal([]float64{1, 2}, []float64{1.1, 2}, ApproxFloats(1e-9)))
}

func TestEncodeFrames(t *testing.T) {
	data := EncodeFrames(t, []engine.Frame{{Timestamp: 1}, {Timestamp: 2}})
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))

	r := engine.NewFrameReader(bytes.NewReader(data))
	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.Timestamp)
}
