package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilacgalaxy/vts-face-tracker/internal/params"
	"github.com/lilacgalaxy/vts-face-tracker/internal/testutil"
	"github.com/lilacgalaxy/vts-face-tracker/internal/timeutil"
)

func openTestRecorder(t *testing.T, opts ...Option) *Recorder {
	t.Helper()
	testutil.QuietLogs(t)

	r, err := Open(filepath.Join(t.TempDir(), "results.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func outputs(kv ...any) []params.Output {
	var out []params.Output
	for i := 0; i < len(kv); i += 2 {
		out = append(out, params.Output{ID: kv[i].(string), Value: kv[i+1].(float64)})
	}
	return out
}

func TestOpen_MigratesToLatest(t *testing.T) {
	r := openTestRecorder(t)
	version, dirty, err := r.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Already up to date.
	require.NoError(t, r.MigrateUp())
}

func TestOpen_Reopen(t *testing.T) {
	testutil.QuietLogs(t)
	path := filepath.Join(t.TempDir(), "results.db")

	r, err := Open(path)
	require.NoError(t, err)
	s, err := r.StartSession("first.jsonl")
	require.NoError(t, err)
	require.NoError(t, r.Record(s.SessionID, 10, outputs("MouthOpen", 0.5)))
	require.NoError(t, r.Close())

	r, err = Open(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.GetSession(s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Frames)
	assert.Equal(t, "first.jsonl", got.Source)
}

func TestRecordAndSeries(t *testing.T) {
	r := openTestRecorder(t)
	s, err := r.StartSession("synthetic")
	require.NoError(t, err)
	assert.NotEmpty(t, s.SessionID)

	require.NoError(t, r.Record(s.SessionID, 0, outputs("EyeOpenLeft", 0.2, "MouthSmile", 0.1, "MouthSmile", 0.3)))
	require.NoError(t, r.Record(s.SessionID, 33, outputs("EyeOpenLeft", 0.4, "MouthSmile", 0.0, "MouthSmile", 0.5)))
	// Polling an unchanged snapshot records nothing new.
	require.NoError(t, r.Record(s.SessionID, 33, outputs("EyeOpenLeft", 9.0, "MouthSmile", 9.0, "MouthSmile", 9.0)))

	series, err := r.Series(s.SessionID)
	require.NoError(t, err)

	want := []Series{
		{ID: "EyeOpenLeft", Samples: []Sample{{0, 0.2}, {33, 0.4}}},
		{ID: "MouthSmile", Samples: []Sample{{0, 0.4}, {33, 0.5}}},
	}
	if diff := cmp.Diff(want, series, testutil.ApproxFloats(1e-12)); diff != "" {
		t.Errorf("Series mismatch (-want +got):\n%s", diff)
	}

	got, err := r.GetSession(s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Frames)
}

func TestRecord_UnknownSession(t *testing.T) {
	r := openTestRecorder(t)
	err := r.Record("nope", 0, outputs("X", 1.0))
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = r.Series("nope")
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = r.GetSession("nope")
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.ErrorIs(t, r.DeleteSession("nope"), ErrUnknownSession)
}

func TestSessions_ListAndDelete(t *testing.T) {
	clk := timeutil.NewManualClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	r := openTestRecorder(t, WithClock(clk))
	a, err := r.StartSession("a")
	require.NoError(t, err)
	clk.Advance(time.Minute)
	b, err := r.StartSession("b")
	require.NoError(t, err)
	require.NoError(t, r.Record(b.SessionID, 1, outputs("X", 1.0)))

	list, err := r.Sessions()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.SessionID, list[0].SessionID, "newest first")
	assert.Equal(t, 1, list[0].Frames)
	assert.Equal(t, a.SessionID, list[1].SessionID)
	assert.Equal(t, clk.Now().Add(-time.Minute).UnixNano(), list[1].StartedAt)

	require.NoError(t, r.DeleteSession(b.SessionID))
	list, err = r.Sessions()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.SessionID, list[0].SessionID)

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM session_outputs`).Scan(&n))
	assert.Zero(t, n, "outputs are deleted with their session")
}
