package geometry

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// relEps scales the coplanarity/visibility tolerance to the extent of the
// input cloud.
const relEps = 1e-9

// HullRatio returns the surface area of the 3-D convex hull of target divided
// by that of reference.
func HullRatio(target, reference []r3.Vec) (float64, error) {
	t, err := HullArea3(target)
	if err != nil {
		return 0, fmt.Errorf("target hull: %w", err)
	}
	r, err := HullArea3(reference)
	if err != nil {
		return 0, fmt.Errorf("reference hull: %w", err)
	}
	return t / r, nil
}

// PlanarHullRatio returns the enclosed area of the 2-D convex hull of target
// divided by the surface area of the 3-D hull of reference. Both measures
// scale quadratically, so the ratio keeps HullRatio's invariances.
func PlanarHullRatio(target []r2.Vec, reference []r3.Vec) (float64, error) {
	t, err := HullArea2(target)
	if err != nil {
		return 0, fmt.Errorf("target hull: %w", err)
	}
	r, err := HullArea3(reference)
	if err != nil {
		return 0, fmt.Errorf("reference hull: %w", err)
	}
	return t / r, nil
}

// HullArea2 returns the area enclosed by the convex hull of points.
func HullArea2(points []r2.Vec) (float64, error) {
	hull, err := ConvexHull2(points)
	if err != nil {
		return 0, err
	}
	area := 0.0
	for i := range hull {
		j := (i + 1) % len(hull)
		area += r2.Cross(hull[i], hull[j])
	}
	return math.Abs(area) / 2, nil
}

// ConvexHull2 returns the counter-clockwise convex hull of points using
// Andrew's monotone chain. Collinear boundary points are dropped.
func ConvexHull2(points []r2.Vec) ([]r2.Vec, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: planar hull needs 3, got %d", ErrTooFewPoints, len(points))
	}

	pts := make([]r2.Vec, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	eps := relEps * extent2(pts) * extent2(pts)
	turn := func(o, a, b r2.Vec) float64 {
		return r2.Cross(r2.Sub(a, o), r2.Sub(b, o))
	}

	hull := make([]r2.Vec, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= eps {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= eps {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	if len(hull) < 3 {
		return nil, fmt.Errorf("%w: points are collinear", ErrDegenerate)
	}
	return hull, nil
}

func extent2(pts []r2.Vec) float64 {
	var lo, hi r2.Vec
	for i, p := range pts {
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return math.Max(hi.X-lo.X, hi.Y-lo.Y)
}

// face is an outward-oriented hull triangle. Points p with
// Dot(normal, p) > offset lie outside it.
type face struct {
	a, b, c int
	normal  r3.Vec
	offset  float64
}

// HullArea3 returns the surface area of the convex hull of points.
func HullArea3(points []r3.Vec) (float64, error) {
	faces, err := convexHull3(points)
	if err != nil {
		return 0, err
	}
	area := 0.0
	for _, f := range faces {
		area += triangleArea(points[f.a], points[f.b], points[f.c])
	}
	return area, nil
}

func triangleArea(a, b, c r3.Vec) float64 {
	return r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) / 2
}

// convexHull3 builds the hull incrementally from an extreme-point tetrahedron.
// Each remaining point deletes the faces it can see and is joined to the
// horizon of the deleted region.
func convexHull3(pts []r3.Vec) ([]face, error) {
	if len(pts) < 4 {
		return nil, fmt.Errorf("%w: hull needs 4, got %d", ErrTooFewPoints, len(pts))
	}

	ext := extent3(pts)
	if ext == 0 {
		return nil, fmt.Errorf("%w: points are coincident", ErrDegenerate)
	}
	eps := relEps * ext

	i0 := 0
	i1 := farthestFrom(pts, func(p r3.Vec) float64 { return r3.Norm(r3.Sub(p, pts[i0])) })
	if r3.Norm(r3.Sub(pts[i1], pts[i0])) <= eps {
		return nil, fmt.Errorf("%w: points are coincident", ErrDegenerate)
	}
	axis := r3.Unit(r3.Sub(pts[i1], pts[i0]))
	i2 := farthestFrom(pts, func(p r3.Vec) float64 { return r3.Norm(r3.Cross(r3.Sub(p, pts[i0]), axis)) })
	if r3.Norm(r3.Cross(r3.Sub(pts[i2], pts[i0]), axis)) <= eps {
		return nil, fmt.Errorf("%w: points are collinear", ErrDegenerate)
	}
	planeN := r3.Unit(r3.Cross(r3.Sub(pts[i1], pts[i0]), r3.Sub(pts[i2], pts[i0])))
	i3 := farthestFrom(pts, func(p r3.Vec) float64 { return math.Abs(r3.Dot(r3.Sub(p, pts[i0]), planeN)) })
	if math.Abs(r3.Dot(r3.Sub(pts[i3], pts[i0]), planeN)) <= eps {
		return nil, fmt.Errorf("%w: points are coplanar", ErrDegenerate)
	}

	// The tetrahedron centroid stays strictly inside every later hull.
	inside := r3.Scale(0.25, r3.Add(r3.Add(pts[i0], pts[i1]), r3.Add(pts[i2], pts[i3])))
	mk := func(a, b, c int) face {
		n := r3.Unit(r3.Cross(r3.Sub(pts[b], pts[a]), r3.Sub(pts[c], pts[a])))
		if r3.Dot(n, r3.Sub(inside, pts[a])) > 0 {
			b, c = c, b
			n = r3.Scale(-1, n)
		}
		return face{a: a, b: b, c: c, normal: n, offset: r3.Dot(n, pts[a])}
	}

	faces := []face{mk(i0, i1, i2), mk(i0, i1, i3), mk(i0, i2, i3), mk(i1, i2, i3)}

	type edge struct{ from, to int }
	for i, p := range pts {
		if i == i0 || i == i1 || i == i2 || i == i3 {
			continue
		}

		visible := make(map[edge]bool)
		kept := faces[:0:0]
		for _, f := range faces {
			if r3.Dot(f.normal, p)-f.offset > eps {
				visible[edge{f.a, f.b}] = true
				visible[edge{f.b, f.c}] = true
				visible[edge{f.c, f.a}] = true
				continue
			}
			kept = append(kept, f)
		}
		if len(visible) == 0 {
			continue
		}

		// Horizon edges border exactly one visible face.
		for e := range visible {
			if !visible[edge{e.to, e.from}] {
				kept = append(kept, mk(e.from, e.to, i))
			}
		}
		faces = kept
	}
	return faces, nil
}

func farthestFrom(pts []r3.Vec, dist func(r3.Vec) float64) int {
	best, bestD := 0, -1.0
	for i, p := range pts {
		if d := dist(p); d > bestD {
			best, bestD = i, d
		}
	}
	return best
}

func extent3(pts []r3.Vec) float64 {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	d := r3.Sub(hi, lo)
	return math.Max(d.X, math.Max(d.Y, d.Z))
}
