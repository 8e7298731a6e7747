package plotting

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilacgalaxy/vts-face-tracker/internal/fsutil"
	"github.com/lilacgalaxy/vts-face-tracker/internal/landmarks"
	"github.com/lilacgalaxy/vts-face-tracker/internal/storage/sqlite"
	"github.com/lilacgalaxy/vts-face-tracker/internal/synth"
)

func neutralSets(t *testing.T) landmarks.Sets {
	t.Helper()
	frame := synth.Neutral().Frame()
	sets, err := landmarks.Classify(frame.Points())
	require.NoError(t, err)
	return sets
}

func TestSaveLandmarks_WritesPNG(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, SaveLandmarks(mfs, "/plots/landmarks.png", neutralSets(t), "frame 0"))

	data, err := mfs.ReadFile("/plots/landmarks.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "png signature")
}

func TestLandmarkPlot_RequiresCatchAll(t *testing.T) {
	sets := neutralSets(t)
	delete(sets, landmarks.Name(landmarks.All, true))
	_, err := LandmarkPlot(sets, "")
	assert.Error(t, err)
}

func TestFeatureKeys(t *testing.T) {
	keys := featureKeys(neutralSets(t))
	assert.Equal(t, []string{
		"face_oval_xy", "left_eye_xy", "left_eyebrow_xy", "left_iris_xy",
		"lips_xy", "right_eye_xy", "right_eyebrow_xy", "right_iris_xy",
	}, keys)

	sets := landmarks.Sets{
		"all_xy":    {Planar: true},
		"lips_xyz":  {},
		"nose":      {Planar: true},
		"cheeks_xy": {Planar: true},
	}
	assert.Equal(t, []string{"cheeks_xy"}, featureKeys(sets))
}

func TestViewXYs_MirrorsAndFlips(t *testing.T) {
	set := landmarks.Set{Planar: true, Points: []landmarks.Point{{X: 0.25, Y: 0.75}}}
	xys := viewXYs(set)
	require.Len(t, xys, 1)
	assert.InDelta(t, 0.25, xys[0].X, 1e-12)
	assert.InDelta(t, -0.25, xys[0].Y, 1e-12)
}

func TestWriteOutputChart(t *testing.T) {
	series := []sqlite.Series{
		{ID: "MouthOpen", Samples: []sqlite.Sample{{Timestamp: 0, Value: 0.1}, {Timestamp: 66, Value: 0.3}}},
		{ID: "EyeOpenLeft", Samples: []sqlite.Sample{{Timestamp: 33, Value: 0.5}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOutputChart(&buf, series, "session", "synthetic"))
	html := buf.String()
	assert.Contains(t, html, "MouthOpen")
	assert.Contains(t, html, "EyeOpenLeft")
	assert.Contains(t, html, "echarts")
}

func TestSaveOutputChart(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, SaveOutputChart(mfs, "/out/chart.html", nil, "empty", ""))
	assert.True(t, mfs.Exists("/out/chart.html"))
}
