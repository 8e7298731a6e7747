// Package geometry holds the stateless point-set measures used by the
// landmark-measure parameters: the ellipse-fit axis ratio ("openness") and
// the convex-hull measure ratio ("expansion").
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrTooFewPoints is returned when a point set is below the minimum a
	// measure needs to be determined.
	ErrTooFewPoints = errors.New("too few points")
	// ErrDegenerate is returned for collinear, coplanar or coincident input.
	ErrDegenerate = errors.New("degenerate point set")
	// ErrNotEllipse is returned when the best conic through the points is not
	// a real ellipse.
	ErrNotEllipse = errors.New("conic fit is not an ellipse")
)

// MinEllipsePoints is the smallest point count that determines a general conic.
const MinEllipsePoints = 5

// imagTolerance bounds the imaginary part accepted for a "real" eigenvector
// component in the conic fit.
const imagTolerance = 1e-9

// c1Inv is the inverse of the 3x3 ellipse constraint matrix 4ac - b^2 = 1
// restricted to the quadratic coefficients.
var c1Inv = mat.NewDense(3, 3, []float64{
	0, 0, 0.5,
	0, -1, 0,
	0.5, 0, 0,
})

// EllipseAxisRatio fits the least-squares ellipse through points and returns
// minor-axis / major-axis, in (0, 1]. Round point sets give values near 1,
// flattened ones values near 0.
//
// The fit is the direct ellipse-specific conic fit (Fitzgibbon) in the
// numerically stable Halir–Flusser partitioning. Points are centred and
// scaled first, so the ratio does not depend on position or size.
func EllipseAxisRatio(points []r2.Vec) (float64, error) {
	if len(points) < MinEllipsePoints {
		return 0, fmt.Errorf("%w: ellipse fit needs %d, got %d", ErrTooFewPoints, MinEllipsePoints, len(points))
	}

	pts, err := normalise2(points)
	if err != nil {
		return 0, err
	}

	n := len(pts)
	d1 := mat.NewDense(n, 3, nil)
	d2 := mat.NewDense(n, 3, nil)
	for i, p := range pts {
		d1.SetRow(i, []float64{p.X * p.X, p.X * p.Y, p.Y * p.Y})
		d2.SetRow(i, []float64{p.X, p.Y, 1})
	}

	var s1, s2, s3 mat.Dense
	s1.Mul(d1.T(), d1)
	s2.Mul(d1.T(), d2)
	s3.Mul(d2.T(), d2)

	var s3Inv mat.Dense
	if err := s3Inv.Inverse(&s3); err != nil {
		return 0, fmt.Errorf("%w: linear terms are singular: %v", ErrDegenerate, err)
	}

	// t maps quadratic coefficients to the optimal linear ones.
	var t mat.Dense
	t.Mul(&s3Inv, s2.T())
	t.Scale(-1, &t)

	var m, reduced mat.Dense
	m.Mul(&s2, &t)
	m.Add(&s1, &m)
	reduced.Mul(c1Inv, &m)

	var eig mat.Eigen
	if ok := eig.Factorize(&reduced, mat.EigenRight); !ok {
		return 0, fmt.Errorf("%w: eigen decomposition failed", ErrDegenerate)
	}
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	quad, found := ellipticEigenvector(&vecs)
	if !found {
		return 0, ErrNotEllipse
	}

	var lin mat.VecDense
	lin.MulVec(&t, quad)

	return conicAxisRatio(quad.AtVec(0), quad.AtVec(1), quad.AtVec(2), lin.AtVec(0), lin.AtVec(1), lin.AtVec(2))
}

// ellipticEigenvector picks the real eigenvector satisfying 4ac - b^2 > 0.
func ellipticEigenvector(vecs *mat.CDense) (*mat.VecDense, bool) {
	_, cols := vecs.Dims()
	best := -1
	bestCond := 0.0
	for j := 0; j < cols; j++ {
		a, b, c := vecs.At(0, j), vecs.At(1, j), vecs.At(2, j)
		if math.Abs(imag(a)) > imagTolerance || math.Abs(imag(b)) > imagTolerance || math.Abs(imag(c)) > imagTolerance {
			continue
		}
		cond := 4*real(a)*real(c) - real(b)*real(b)
		if cond > bestCond {
			best, bestCond = j, cond
		}
	}
	if best < 0 {
		return nil, false
	}
	return mat.NewVecDense(3, []float64{real(vecs.At(0, best)), real(vecs.At(1, best)), real(vecs.At(2, best))}), true
}

// conicAxisRatio returns minor/major for the conic
// a x^2 + b xy + c y^2 + d x + e y + f = 0.
func conicAxisRatio(a, b, c, d, e, f float64) (float64, error) {
	det := 4*a*c - b*b
	if det <= 0 {
		return 0, ErrNotEllipse
	}

	x0 := (b*e - 2*c*d) / det
	y0 := (b*d - 2*a*e) / det
	f0 := a*x0*x0 + b*x0*y0 + c*y0*y0 + d*x0 + e*y0 + f

	var es mat.EigenSym
	if ok := es.Factorize(mat.NewSymDense(2, []float64{a, b / 2, b / 2, c}), false); !ok {
		return 0, fmt.Errorf("%w: axis decomposition failed", ErrDegenerate)
	}
	vals := es.Values(nil)
	lo, hi := vals[0], vals[1]
	if hi < 0 {
		// Both eigenvalues negative: flip the whole conic.
		lo, hi, f0 = -hi, -lo, -f0
	}
	if lo <= 0 || f0 >= 0 {
		return 0, ErrNotEllipse
	}

	// Semi-axes are sqrt(-f0/lambda); their ratio drops f0.
	return math.Sqrt(lo / hi), nil
}

// normalise2 centres points on their centroid and scales them so the RMS
// distance from the centroid is sqrt(2).
func normalise2(points []r2.Vec) ([]r2.Vec, error) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	n := float64(len(points))
	cx, cy := floats.Sum(xs)/n, floats.Sum(ys)/n
	floats.AddConst(-cx, xs)
	floats.AddConst(-cy, ys)

	ms := (floats.Dot(xs, xs) + floats.Dot(ys, ys)) / n
	if ms == 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return nil, fmt.Errorf("%w: points are coincident", ErrDegenerate)
	}
	k := math.Sqrt(2 / ms)
	floats.Scale(k, xs)
	floats.Scale(k, ys)

	out := make([]r2.Vec, len(points))
	for i := range out {
		out[i] = r2.Vec{X: xs[i], Y: ys[i]}
	}
	return out, nil
}
