// Package plotting renders computed results: a PNG of a frame's classified
// landmarks and an HTML chart of recorded output series.
package plotting

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lilacgalaxy/vts-face-tracker/internal/fsutil"
	"github.com/lilacgalaxy/vts-face-tracker/internal/landmarks"
)

var (
	allColor     = color.RGBA{R: 255, G: 255, A: 255}
	featureColor = color.RGBA{R: 255, A: 255}
)

// viewXYs maps planar landmarks into a mirrored, upright view: the camera
// image is mirrored horizontally and image y grows downwards.
func viewXYs(set landmarks.Set) plotter.XYs {
	xys := make(plotter.XYs, len(set.Points))
	for i, p := range set.Points {
		xys[i] = plotter.XY{X: 0.5 - p.X, Y: 0.5 - p.Y}
	}
	return xys
}

func scatter(set landmarks.Set, c color.Color, radius vg.Length) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(viewXYs(set))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = radius
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

// LandmarkPlot draws every landmark in yellow and the named feature subsets
// over them in red.
func LandmarkPlot(sets landmarks.Sets, title string) (*plot.Plot, error) {
	all, ok := sets.Lookup(landmarks.Name(landmarks.All, true))
	if !ok {
		return nil, fmt.Errorf("landmark sets have no %s", landmarks.Name(landmarks.All, true))
	}

	p := plot.New()
	p.Title.Text = title
	p.BackgroundColor = color.Black
	p.Title.TextStyle.Color = color.White
	p.HideAxes()
	p.X.Min, p.X.Max = -0.5, 0.5
	p.Y.Min, p.Y.Max = -0.5, 0.5

	s, err := scatter(all, allColor, vg.Points(1))
	if err != nil {
		return nil, fmt.Errorf("all landmarks: %w", err)
	}
	p.Add(s)

	for _, key := range featureKeys(sets) {
		set := sets[key]
		if len(set.Points) == 0 {
			continue
		}
		s, err := scatter(set, featureColor, vg.Points(1.5))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		p.Add(s)
	}
	return p, nil
}

// featureKeys returns the planar keys of sets other than the catch-all, in
// name order.
func featureKeys(sets landmarks.Sets) []string {
	var keys []string
	for key := range sets {
		subset, planar, ok := landmarks.SplitName(key)
		if !ok || !planar || subset == landmarks.All {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SaveLandmarks renders sets to a square PNG at path.
func SaveLandmarks(fsys fsutil.FileSystem, path string, sets landmarks.Sets, title string) error {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	p, err := LandmarkPlot(sets, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(6*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render landmarks: %w", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
