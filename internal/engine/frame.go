package engine

import (
	"github.com/lilacgalaxy/vts-face-tracker/internal/landmarks"
	"github.com/lilacgalaxy/vts-face-tracker/internal/pose"
)

// Category is one blendshape score from the landmarker.
type Category struct {
	Name  string  `json:"category_name"`
	Score float64 `json:"score"`
}

// Landmark is one face-mesh point in normalised image coordinates.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Frame is one detection result for the first face in view. An empty
// Blendshapes list means no face was found.
type Frame struct {
	Timestamp   int64          `json:"timestamp_ms"`
	Blendshapes []Category     `json:"blendshapes"`
	Landmarks   []Landmark     `json:"landmarks"`
	Transform   pose.Transform `json:"transform"`
}

// BlendshapeMap indexes the scores by category name. Later duplicates win.
func (f *Frame) BlendshapeMap() map[string]float64 {
	m := make(map[string]float64, len(f.Blendshapes))
	for _, c := range f.Blendshapes {
		m[c.Name] = c.Score
	}
	return m
}

// Points converts the landmarks for classification.
func (f *Frame) Points() []landmarks.Point {
	pts := make([]landmarks.Point, len(f.Landmarks))
	for i, l := range f.Landmarks {
		pts[i] = landmarks.Point{X: l.X, Y: l.Y, Z: l.Z}
	}
	return pts
}
