package landmarks

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexedPoints encodes each landmark's index in X so order can be checked.
func indexedPoints(n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: float64(i), Y: float64(i) / 10, Z: -float64(i) / 100}
	}
	return pts
}

func TestTablesAreSortedAndInRange(t *testing.T) {
	for name, idx := range Subsets {
		assert.True(t, sort.IntsAreSorted(idx), "subset %s not sorted", name)
		seen := make(map[int]bool, len(idx))
		for _, i := range idx {
			assert.GreaterOrEqual(t, i, 0)
			assert.Less(t, i, ExpectedCount, "subset %s", name)
			assert.False(t, seen[i], "subset %s repeats index %d", name, i)
			seen[i] = true
		}
	}
}

func TestClassify_Counts(t *testing.T) {
	sets, err := Classify(indexedPoints(ExpectedCount))
	require.NoError(t, err)

	for _, name := range append(SubsetNames(), All) {
		want, ok := MembershipCount(name)
		require.True(t, ok)
		for _, planar := range []bool{true, false} {
			set, ok := sets.Lookup(Name(name, planar))
			require.True(t, ok, "missing %s", Name(name, planar))
			assert.Len(t, set.Points, want, Name(name, planar))
			assert.Equal(t, planar, set.Planar)
		}
	}
}

func TestClassify_OrderAndProjection(t *testing.T) {
	sets, err := Classify(indexedPoints(ExpectedCount))
	require.NoError(t, err)

	for key, set := range sets {
		for i := 1; i < len(set.Points); i++ {
			assert.Less(t, set.Points[i-1].X, set.Points[i].X, "%s out of index order", key)
		}
		if set.Planar {
			for _, p := range set.Points {
				assert.Zero(t, p.Z, key)
			}
		}
	}

	lips := sets[Name(Lips, false)]
	for i, p := range lips.Points {
		assert.Equal(t, float64(Subsets[Lips][i]), p.X)
		assert.InDelta(t, -float64(Subsets[Lips][i])/100, p.Z, 1e-12)
	}

	all := sets[Name(All, true)]
	for i, p := range all.Points {
		assert.Equal(t, float64(i), p.X, "catch-all must contain each point once, in order")
	}
}

func TestClassify_CountMismatch(t *testing.T) {
	sets, err := Classify(indexedPoints(100))
	require.ErrorIs(t, err, ErrLandmarkCount)

	// Partial sets are still handed back.
	assert.Len(t, sets[Name(All, false)].Points, 100)
	assert.Len(t, sets[Name(LeftIris, false)].Points, 0)

	_, err = Classify(indexedPoints(ExpectedCount + 2))
	require.ErrorIs(t, err, ErrLandmarkCount)
}

func TestSetsClone_IsIndependent(t *testing.T) {
	sets, err := Classify(indexedPoints(ExpectedCount))
	require.NoError(t, err)

	cp := sets.Clone()
	cp[Name(Lips, false)].Points[0] = Point{X: -1}
	assert.Equal(t, float64(Subsets[Lips][0]), sets[Name(Lips, false)].Points[0].X)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		key    string
		subset string
		planar bool
		ok     bool
	}{
		{"lips_xy", Lips, true, true},
		{"face_oval_xyz", FaceOval, false, true},
		{"left_eye", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			subset, planar, ok := SplitName(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.subset, subset)
			assert.Equal(t, tt.planar, planar)
		})
	}
}
