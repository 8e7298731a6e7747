package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func ellipsePoints(n int, a, b, rot float64, centre r2.Vec) []r2.Vec {
	pts := make([]r2.Vec, n)
	s, c := math.Sincos(rot)
	for i := range pts {
		th := 2 * math.Pi * float64(i) / float64(n)
		x, y := a*math.Cos(th), b*math.Sin(th)
		pts[i] = r2.Vec{X: centre.X + c*x - s*y, Y: centre.Y + s*x + c*y}
	}
	return pts
}

func TestEllipseAxisRatio_Shapes(t *testing.T) {
	tests := []struct {
		name string
		pts  []r2.Vec
		want float64
	}{
		{"circle", ellipsePoints(16, 1, 1, 0, r2.Vec{}), 1},
		{"wide", ellipsePoints(16, 2, 1, 0, r2.Vec{}), 0.5},
		{"tall rotated", ellipsePoints(16, 0.25, 1, 0.7, r2.Vec{X: 3, Y: -2}), 0.25},
		{"eye-like", ellipsePoints(8, 0.03, 0.006, 0.1, r2.Vec{X: 0.4, Y: 0.38}), 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EllipseAxisRatio(tt.pts)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestEllipseAxisRatio_ScaleAndTranslationInvariant(t *testing.T) {
	base := ellipsePoints(12, 3, 1.2, 0.3, r2.Vec{})
	want, err := EllipseAxisRatio(base)
	require.NoError(t, err)

	moved := make([]r2.Vec, len(base))
	for i, p := range base {
		moved[i] = r2.Add(r2.Scale(0.01, p), r2.Vec{X: 0.5, Y: 0.5})
	}
	got, err := EllipseAxisRatio(moved)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-6)
}

func TestEllipseAxisRatio_NoisyStaysInRange(t *testing.T) {
	pts := ellipsePoints(16, 1, 0.6, 0, r2.Vec{})
	for i := range pts {
		pts[i].X += 0.01 * math.Sin(float64(7*i))
		pts[i].Y += 0.01 * math.Cos(float64(5*i))
	}
	got, err := EllipseAxisRatio(pts)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
	assert.InDelta(t, 0.6, got, 0.05)
}

func TestEllipseAxisRatio_Errors(t *testing.T) {
	_, err := EllipseAxisRatio(ellipsePoints(4, 1, 1, 0, r2.Vec{}))
	assert.ErrorIs(t, err, ErrTooFewPoints)

	same := []r2.Vec{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	_, err = EllipseAxisRatio(same)
	assert.ErrorIs(t, err, ErrDegenerate)

	line := []r2.Vec{{X: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}, {X: 5, Y: 5}}
	_, err = EllipseAxisRatio(line)
	assert.Error(t, err)
}

func cube(size float64, origin r3.Vec) []r3.Vec {
	var pts []r3.Vec
	for _, x := range []float64{0, size} {
		for _, y := range []float64{0, size} {
			for _, z := range []float64{0, size} {
				pts = append(pts, r3.Add(origin, r3.Vec{X: x, Y: y, Z: z}))
			}
		}
	}
	return pts
}

func TestHullArea3_Cube(t *testing.T) {
	pts := cube(2, r3.Vec{X: -1, Y: 4, Z: 0.5})
	// Interior points must not change the hull.
	pts = append(pts, r3.Vec{X: 0, Y: 5, Z: 1.5}, r3.Vec{X: -0.5, Y: 4.2, Z: 1})

	area, err := HullArea3(pts)
	require.NoError(t, err)
	assert.InDelta(t, 24.0, area, 1e-9)
}

func TestHullArea3_Sphere(t *testing.T) {
	var pts []r3.Vec
	for i := 0; i < 20; i++ {
		for j := 0; j < 40; j++ {
			th := math.Pi * (float64(i) + 0.5) / 20
			ph := 2 * math.Pi * float64(j) / 40
			pts = append(pts, r3.Vec{
				X: math.Sin(th) * math.Cos(ph),
				Y: math.Sin(th) * math.Sin(ph),
				Z: math.Cos(th),
			})
		}
	}
	area, err := HullArea3(pts)
	require.NoError(t, err)
	assert.InDelta(t, 4*math.Pi, area, 0.15)
	assert.Less(t, area, 4*math.Pi)
}

func TestHullArea3_Degenerate(t *testing.T) {
	_, err := HullArea3(cube(1, r3.Vec{})[:3])
	assert.ErrorIs(t, err, ErrTooFewPoints)

	flat := []r3.Vec{{X: 0}, {X: 1}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0.5, Y: 0.5}}
	_, err = HullArea3(flat)
	assert.ErrorIs(t, err, ErrDegenerate)

	line := []r3.Vec{{X: 0}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}, {X: 3, Y: 3, Z: 3}}
	_, err = HullArea3(line)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestHullArea2(t *testing.T) {
	square := []r2.Vec{{X: 0}, {X: 2}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	area, err := HullArea2(square)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, area, 1e-12)

	hull, err := ConvexHull2(square)
	require.NoError(t, err)
	assert.Len(t, hull, 4)

	_, err = HullArea2(square[:2])
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = HullArea2([]r2.Vec{{X: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestHullRatio(t *testing.T) {
	ref := cube(2, r3.Vec{})

	got, err := HullRatio(ref, ref)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)

	got, err = HullRatio(cube(1, r3.Vec{X: 0.5}), ref)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got, 1e-12)

	_, err = HullRatio(ref[:2], ref)
	assert.ErrorIs(t, err, ErrTooFewPoints)

	planar := []r2.Vec{{X: 0}, {X: 1}, {X: 0, Y: 1}}
	got, err = PlanarHullRatio(planar, ref)
	require.NoError(t, err)
	assert.InDelta(t, 0.5/24, got, 1e-12)
}

func TestHullRatio_SimilarityInvariant(t *testing.T) {
	target := []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0.1}, {X: 0.2, Y: 1.3, Z: 0},
		{X: 0.4, Y: 0.3, Z: 0.9}, {X: 0.9, Y: 0.8, Z: 0.5}, {X: 0.3, Y: 0.5, Z: 0.4},
	}
	reference := []r3.Vec{
		{X: -1, Y: -1.2, Z: -0.3}, {X: 2, Y: -1, Z: 0.2}, {X: 1.8, Y: 2.1, Z: -0.1},
		{X: -1.1, Y: 1.9, Z: 0.3}, {X: 0.5, Y: 0.4, Z: 1.4}, {X: 0.2, Y: 0.6, Z: -1.2},
	}
	planar := []r2.Vec{{X: 0, Y: 0}, {X: 1.5, Y: 0.2}, {X: 1.1, Y: 1.4}, {X: -0.2, Y: 0.9}, {X: 0.5, Y: 0.5}}

	base, err := HullRatio(target, reference)
	require.NoError(t, err)
	planarBase, err := PlanarHullRatio(planar, reference)
	require.NoError(t, err)

	tests := []struct {
		name string
		k    float64
		off  r3.Vec
	}{
		{"shrink", 0.01, r3.Vec{}},
		{"grow", 250, r3.Vec{}},
		{"shift", 1, r3.Vec{X: 0.5, Y: -3, Z: 12}},
		{"shrink and shift", 0.3, r3.Vec{X: -7, Y: 0.25, Z: 0.5}},
		{"grow and shift", 40, r3.Vec{X: 100, Y: 100, Z: -100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move := func(pts []r3.Vec) []r3.Vec {
				out := make([]r3.Vec, len(pts))
				for i, p := range pts {
					out[i] = r3.Add(r3.Scale(tt.k, p), tt.off)
				}
				return out
			}
			movePlanar := func(pts []r2.Vec) []r2.Vec {
				out := make([]r2.Vec, len(pts))
				for i, p := range pts {
					out[i] = r2.Add(r2.Scale(tt.k, p), r2.Vec{X: tt.off.X, Y: tt.off.Y})
				}
				return out
			}

			got, err := HullRatio(move(target), move(reference))
			require.NoError(t, err)
			assert.InDelta(t, base, got, 1e-9)

			got, err = PlanarHullRatio(movePlanar(planar), move(reference))
			require.NoError(t, err)
			assert.InDelta(t, planarBase, got, 1e-9)
		})
	}
}
