package landmarks

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrLandmarkCount is returned when a frame's landmark array does not have
// ExpectedCount entries, which indicates an incompatible landmarker model.
var ErrLandmarkCount = errors.New("unexpected landmark count")

// Point is one landmark in normalised image space. Its identity is its index
// in the frame's landmark array.
type Point = r3.Vec

// Set is one classified subset in a single projection. Planar sets carry
// Z = 0 for every point.
type Set struct {
	Planar bool
	Points []Point
}

// XY returns the planar coordinates of the set.
func (s Set) XY() []r2.Vec {
	out := make([]r2.Vec, len(s.Points))
	for i, p := range s.Points {
		out[i] = r2.Vec{X: p.X, Y: p.Y}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	return Set{Planar: s.Planar, Points: pts}
}

// Sets maps `<subset>_xy` / `<subset>_xyz` keys to classified sets.
type Sets map[string]Set

// Name returns the Sets key for a subset in the given projection.
func Name(subset string, planar bool) string {
	if planar {
		return subset + SuffixXY
	}
	return subset + SuffixXYZ
}

// SplitName reverses Name. ok is false when the key has no projection suffix.
func SplitName(key string) (subset string, planar bool, ok bool) {
	switch {
	case strings.HasSuffix(key, SuffixXYZ):
		return strings.TrimSuffix(key, SuffixXYZ), false, true
	case strings.HasSuffix(key, SuffixXY):
		return strings.TrimSuffix(key, SuffixXY), true, true
	default:
		return "", false, false
	}
}

// Lookup returns the named set.
func (s Sets) Lookup(key string) (Set, bool) {
	set, ok := s[key]
	return set, ok
}

// Clone returns a deep copy of every set.
func (s Sets) Clone() Sets {
	if s == nil {
		return nil
	}
	out := make(Sets, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

func newSets(capacity int) Sets {
	sets := make(Sets, 2*(len(subsetNames)+1))
	for _, name := range append(SubsetNames(), All) {
		n, _ := MembershipCount(name)
		if name == All {
			n = capacity
		}
		sets[Name(name, true)] = Set{Planar: true, Points: make([]Point, 0, n)}
		sets[Name(name, false)] = Set{Points: make([]Point, 0, n)}
	}
	return sets
}

func (s Sets) add(subset string, p Point) {
	xy := s[Name(subset, true)]
	xy.Points = append(xy.Points, Point{X: p.X, Y: p.Y})
	s[Name(subset, true)] = xy

	xyz := s[Name(subset, false)]
	xyz.Points = append(xyz.Points, p)
	s[Name(subset, false)] = xyz
}

// Classify builds the classified sets for one frame. Points are visited in
// index order, so every subset preserves ascending landmark order.
//
// When len(points) != ExpectedCount the sets populated so far are still
// returned together with an error wrapping ErrLandmarkCount; indices beyond
// the static tables only land in the catch-all subset.
func Classify(points []Point) (Sets, error) {
	sets := newSets(len(points))
	for i, p := range points {
		if i < ExpectedCount {
			for _, subset := range membership[i] {
				sets.add(subset, p)
			}
		}
		sets.add(All, p)
	}
	if len(points) != ExpectedCount {
		return sets, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(points), ExpectedCount)
	}
	return sets, nil
}
