// Package pose turns the landmarker's facial transformation matrix into the
// six head-pose output parameters.
package pose

import "math"

// Output identifiers for the pose parameters, in emission order.
const (
	FacePositionX = "FacePositionX"
	FacePositionY = "FacePositionY"
	FacePositionZ = "FacePositionZ"
	FaceAngleX    = "FaceAngleX"
	FaceAngleY    = "FaceAngleY"
	FaceAngleZ    = "FaceAngleZ"
)

// Names lists the pose identifiers in emission order.
var Names = [6]string{FacePositionX, FacePositionY, FacePositionZ, FaceAngleX, FaceAngleY, FaceAngleZ}

// Transform is a 4x4 homogeneous transform stored row-major:
// m00,m01,m02,m03, m10,...,m33. Translation lives in T[3], T[7], T[11].
type Transform [16]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Vector3 is a calibration offset (x, y, z).
type Vector3 [3]float64

// Add returns v + o component-wise.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Values holds the six pose outputs.
type Values struct {
	Position Vector3 // FacePositionX/Y/Z
	Angle    Vector3 // FaceAngleX/Y/Z, degrees
}

// At returns the value for a pose identifier.
func (v Values) At(name string) (float64, bool) {
	switch name {
	case FacePositionX:
		return v.Position[0], true
	case FacePositionY:
		return v.Position[1], true
	case FacePositionZ:
		return v.Position[2], true
	case FaceAngleX:
		return v.Angle[0], true
	case FaceAngleY:
		return v.Angle[1], true
	case FaceAngleZ:
		return v.Angle[2], true
	}
	return 0, false
}

// Ordered returns the six values in Names order.
func (v Values) Ordered() [6]float64 {
	return [6]float64{v.Position[0], v.Position[1], v.Position[2], v.Angle[0], v.Angle[1], v.Angle[2]}
}

// gimbalEps is how close |sin(pitch)| may come to 1 before roll is pinned to 0.
const gimbalEps = 1e-9

// EulerZYX decomposes the rotation block of T as R = Rz(a) * Ry(b) * Rx(c)
// (intrinsic z, then y', then x'') and returns (a, b, c) in degrees. In gimbal
// lock c is fixed at 0 and the whole residual rotation is reported in a.
func EulerZYX(T Transform) (a, b, c float64) {
	r00, r01 := T[0], T[1]
	r10, r11 := T[4], T[5]
	r20, r21, r22 := T[8], T[9], T[10]

	s := math.Max(-1, math.Min(1, -r20))
	b = math.Asin(s)
	if math.Abs(s) < 1-gimbalEps {
		a = math.Atan2(r10, r00)
		c = math.Atan2(r21, r22)
	} else {
		a = math.Atan2(-r01, r11)
		c = 0
	}
	return deg(a), deg(b), deg(c)
}

func deg(rad float64) float64 { return rad * 180 / math.Pi }

// Extract computes the pose outputs from T and subtracts the calibration
// offsets. Translation X and Z are negated to move from tracking space into
// avatar space. Angles map as FaceAngleX = -b, FaceAngleY = -c, FaceAngleZ = a.
// No scaling or clamping is applied.
func Extract(T Transform, position, rotation Vector3) Values {
	a, b, c := EulerZYX(T)
	return Values{
		Position: Vector3{
			-T[3] - position[0],
			T[7] - position[1],
			-T[11] - position[2],
		},
		Angle: Vector3{
			-b - rotation[0],
			-c - rotation[1],
			a - rotation[2],
		},
	}
}

// IsRigid reports whether T looks like a rigid transform: a rotation block
// with determinant ~1 and orthonormal rows, and a bottom row of [0 0 0 1].
// The landmarker occasionally emits a uniformly scaled rotation block; such
// frames are still usable, so callers only log the result.
func IsRigid(T Transform) bool {
	if math.Abs(T[12]) > 1e-6 || math.Abs(T[13]) > 1e-6 ||
		math.Abs(T[14]) > 1e-6 || math.Abs(T[15]-1) > 1e-6 {
		return false
	}

	det := T[0]*(T[5]*T[10]-T[6]*T[9]) -
		T[1]*(T[4]*T[10]-T[6]*T[8]) +
		T[2]*(T[4]*T[9]-T[5]*T[8])
	if math.Abs(det-1) > 0.01 {
		return false
	}

	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			dot := T[4*i]*T[4*j] + T[4*i+1]*T[4*j+1] + T[4*i+2]*T[4*j+2]
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(dot-want) > 0.01 {
				return false
			}
		}
	}
	return true
}

// Compose builds a transform from intrinsic Z-Y-X angles in degrees and a
// translation. It is the inverse of EulerZYX outside gimbal lock.
func Compose(a, b, c float64, t Vector3) Transform {
	sa, ca := math.Sincos(a * math.Pi / 180)
	sb, cb := math.Sincos(b * math.Pi / 180)
	sc, cc := math.Sincos(c * math.Pi / 180)
	return Transform{
		ca * cb, ca*sb*sc - sa*cc, ca*sb*cc + sa*sc, t[0],
		sa * cb, sa*sb*sc + ca*cc, sa*sb*cc - ca*sc, t[1],
		-sb, cb * sc, cb * cc, t[2],
		0, 0, 0, 1,
	}
}
