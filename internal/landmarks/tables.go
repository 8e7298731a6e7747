package landmarks

import "sort"

// ExpectedCount is the number of landmarks the face landmarker emits per face
// (468 mesh vertices plus 10 iris points).
const ExpectedCount = 478

// Subset names. The catch-all subset is not listed in Subsets.
const (
	Lips         = "lips"
	LeftEye      = "left_eye"
	RightEye     = "right_eye"
	LeftEyebrow  = "left_eyebrow"
	RightEyebrow = "right_eyebrow"
	LeftIris     = "left_iris"
	RightIris    = "right_iris"
	FaceOval     = "face_oval"
	All          = "all"
)

// Projection suffixes appended to subset names.
const (
	SuffixXY  = "_xy"
	SuffixXYZ = "_xyz"
)

// Subsets maps each named subset to its face-mesh vertex indices, taken from
// the face-mesh connection tables (unique vertices of each contour).
var Subsets = map[string][]int{
	Lips: {
		0, 13, 14, 17, 37, 39, 40, 61, 78, 80,
		81, 82, 84, 87, 88, 91, 95, 146, 178, 181,
		185, 191, 267, 269, 270, 291, 308, 310, 311, 312,
		314, 317, 318, 321, 324, 375, 402, 405, 409, 415,
	},
	LeftEye: {
		249, 263, 362, 373, 374, 380, 381, 382,
		384, 385, 386, 387, 388, 390, 398, 466,
	},
	RightEye: {
		7, 33, 133, 144, 145, 153, 154, 155,
		157, 158, 159, 160, 161, 163, 173, 246,
	},
	LeftEyebrow:  {276, 282, 283, 285, 293, 295, 296, 300, 334, 336},
	RightEyebrow: {46, 52, 53, 55, 63, 65, 66, 70, 105, 107},
	LeftIris:     {474, 475, 476, 477},
	RightIris:    {469, 470, 471, 472},
	FaceOval: {
		10, 21, 54, 58, 67, 93, 103, 109, 127, 132,
		136, 148, 149, 150, 152, 162, 172, 176, 234, 251,
		284, 288, 297, 323, 332, 338, 356, 361, 365, 377,
		378, 379, 389, 397, 400, 454,
	},
}

// membership[i] lists the subsets that contain landmark index i, in the
// stable order of subsetNames.
var (
	subsetNames []string
	membership  [ExpectedCount][]string
)

func init() {
	subsetNames = make([]string, 0, len(Subsets))
	for name := range Subsets {
		subsetNames = append(subsetNames, name)
	}
	sort.Strings(subsetNames)

	for _, name := range subsetNames {
		for _, idx := range Subsets[name] {
			membership[idx] = append(membership[idx], name)
		}
	}
}

// SubsetNames returns the named subsets (excluding the catch-all) in sorted order.
func SubsetNames() []string {
	out := make([]string, len(subsetNames))
	copy(out, subsetNames)
	return out
}

// MembershipCount returns how many indices are statically assigned to subset,
// or ExpectedCount for the catch-all subset.
func MembershipCount(subset string) (int, bool) {
	if subset == All {
		return ExpectedCount, true
	}
	idx, ok := Subsets[subset]
	return len(idx), ok
}
