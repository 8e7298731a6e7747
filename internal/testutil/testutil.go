// Package testutil provides shared test helpers and fixtures.
package testutil

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lilacgalaxy/vts-face-tracker/internal/engine"
	"github.com/lilacgalaxy/vts-face-tracker/internal/monitoring"
)

// QuietLogs mutes monitoring.Logf for the duration of the test.
func QuietLogs(t testing.TB) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}

// ObserveLogs routes the structured logger into memory at debug level and
// returns the captured entries.
func ObserveLogs(t testing.TB) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev, prevf := monitoring.L(), monitoring.Logf
	monitoring.Use(zap.New(core))
	t.Cleanup(func() {
		monitoring.Use(prev)
		monitoring.SetLogger(prevf)
	})
	return logs
}

// ApproxFloats compares float64 values within an absolute tolerance.
func ApproxFloats(tol float64) cmp.Option {
	return cmpopts.EquateApprox(0, tol)
}

// EncodeFrames returns frames as a JSON-lines recording.
func EncodeFrames(t testing.TB, frames []engine.Frame) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := engine.NewFrameWriter(&buf)
	for _, f := range frames {
		if err := w.Write(f); err != nil {
			t.Fatalf("encode frame %d: %v", f.Timestamp, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush frames: %v", err)
	}
	return buf.Bytes()
}
