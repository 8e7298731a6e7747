// Package synth generates synthetic detection frames with known eye
// openness, mouth opening, blendshape scores and head pose. Tests use it as a
// fixture and cmd/tools/gen-frames records it for replay.
package synth

import (
	"math"

	"github.com/lilacgalaxy/vts-face-tracker/internal/engine"
	"github.com/lilacgalaxy/vts-face-tracker/internal/landmarks"
	"github.com/lilacgalaxy/vts-face-tracker/internal/pose"
)

// BlendshapeNames is the landmarker's blendshape vocabulary, in its output order.
var BlendshapeNames = []string{
	"_neutral",
	"browDownLeft", "browDownRight", "browInnerUp", "browOuterUpLeft", "browOuterUpRight",
	"cheekPuff", "cheekSquintLeft", "cheekSquintRight",
	"eyeBlinkLeft", "eyeBlinkRight",
	"eyeLookDownLeft", "eyeLookDownRight", "eyeLookInLeft", "eyeLookInRight",
	"eyeLookOutLeft", "eyeLookOutRight", "eyeLookUpLeft", "eyeLookUpRight",
	"eyeSquintLeft", "eyeSquintRight", "eyeWideLeft", "eyeWideRight",
	"jawForward", "jawLeft", "jawOpen", "jawRight",
	"mouthClose", "mouthDimpleLeft", "mouthDimpleRight", "mouthFrownLeft", "mouthFrownRight",
	"mouthFunnel", "mouthLeft", "mouthLowerDownLeft", "mouthLowerDownRight",
	"mouthPressLeft", "mouthPressRight", "mouthPucker", "mouthRight",
	"mouthRollLower", "mouthRollUpper", "mouthShrugLower", "mouthShrugUpper",
	"mouthSmileLeft", "mouthSmileRight", "mouthStretchLeft", "mouthStretchRight",
	"mouthUpperUpLeft", "mouthUpperUpRight", "noseSneerLeft", "noseSneerRight",
}

// Face describes one synthetic frame.
type Face struct {
	Timestamp int64

	// EyeOpenLeft and EyeOpenRight are the minor/major axis ratios of the eye
	// contours, in (0, 1].
	EyeOpenLeft, EyeOpenRight float64
	// MouthOpen is lip contour height over width.
	MouthOpen float64

	// Scores overrides blendshape scores; unlisted names score 0.
	Scores map[string]float64

	// Yaw, Pitch and Roll are the Z-Y-X intrinsic angles in degrees.
	Yaw, Pitch, Roll float64
	Translation      pose.Vector3
}

// Neutral returns a relaxed, centred face.
func Neutral() Face {
	return Face{EyeOpenLeft: 0.35, EyeOpenRight: 0.35, MouthOpen: 0.1}
}

// ring lays idx out on an ellipse in index order with a saddle-shaped depth
// so that no contour is coplanar.
func ring(pts []engine.Landmark, idx []int, cx, cy, a, b, z0, dz float64) {
	for k, i := range idx {
		th := 2 * math.Pi * float64(k) / float64(len(idx))
		pts[i] = engine.Landmark{
			X: cx + a*math.Cos(th),
			Y: cy + b*math.Sin(th),
			Z: z0 + dz*math.Cos(2*th),
		}
	}
}

func arc(pts []engine.Landmark, idx []int, cx, cy, width, rise float64) {
	for k, i := range idx {
		t := float64(k) / float64(len(idx)-1)
		pts[i] = engine.Landmark{
			X: cx - width/2 + width*t,
			Y: cy - rise*math.Sin(math.Pi*t),
			Z: -0.01 - 0.005*math.Sin(math.Pi*t),
		}
	}
}

// Landmarks returns the full landmark array in normalised image space.
func (f Face) Landmarks() []engine.Landmark {
	pts := make([]engine.Landmark, landmarks.ExpectedCount)

	// Fill everything on a head-shaped ellipsoid first.
	n := float64(len(pts))
	for i := range pts {
		th := math.Acos(1 - 2*(float64(i)+0.5)/n)
		ph := math.Pi * (1 + math.Sqrt(5)) * float64(i)
		pts[i] = engine.Landmark{
			X: 0.5 + 0.25*math.Sin(th)*math.Cos(ph),
			Y: 0.5 + 0.35*math.Sin(th)*math.Sin(ph),
			Z: 0.08 * math.Cos(th),
		}
	}

	mouth := math.Max(f.MouthOpen, 0.02)
	ring(pts, landmarks.Subsets[landmarks.FaceOval], 0.5, 0.5, 0.3, 0.4, 0, 0.03)
	ring(pts, landmarks.Subsets[landmarks.Lips], 0.5, 0.72, 0.09, 0.09*mouth, -0.02, 0.01)
	ring(pts, landmarks.Subsets[landmarks.LeftEye], 0.62, 0.42, 0.05, 0.05*math.Max(f.EyeOpenLeft, 0.02), -0.01, 0.004)
	ring(pts, landmarks.Subsets[landmarks.RightEye], 0.38, 0.42, 0.05, 0.05*math.Max(f.EyeOpenRight, 0.02), -0.01, 0.004)
	ring(pts, landmarks.Subsets[landmarks.LeftIris], 0.62, 0.42, 0.01, 0.01, -0.012, 0)
	ring(pts, landmarks.Subsets[landmarks.RightIris], 0.38, 0.42, 0.01, 0.01, -0.012, 0)
	arc(pts, landmarks.Subsets[landmarks.LeftEyebrow], 0.62, 0.35, 0.12, 0.02)
	arc(pts, landmarks.Subsets[landmarks.RightEyebrow], 0.38, 0.35, 0.12, 0.02)
	return pts
}

// Blendshapes returns every vocabulary entry with its score.
func (f Face) Blendshapes() []engine.Category {
	out := make([]engine.Category, len(BlendshapeNames))
	for i, name := range BlendshapeNames {
		out[i] = engine.Category{Name: name, Score: f.Scores[name]}
	}
	return out
}

// Transform returns the facial transformation matrix for the head pose.
func (f Face) Transform() pose.Transform {
	return pose.Compose(f.Yaw, f.Pitch, f.Roll, f.Translation)
}

// Frame assembles the detection frame.
func (f Face) Frame() engine.Frame {
	return engine.Frame{
		Timestamp:   f.Timestamp,
		Blendshapes: f.Blendshapes(),
		Landmarks:   f.Landmarks(),
		Transform:   f.Transform(),
	}
}

// NoFace returns a frame in which the landmarker found nothing.
func NoFace(ts int64) engine.Frame {
	return engine.Frame{Timestamp: ts, Transform: pose.Identity()}
}

// Sequence animates n frames at the given interval: periodic blinks, a
// talking mouth and a slow head sway. Every seventh second has no face.
func Sequence(n int, intervalMS int64) []engine.Frame {
	frames := make([]engine.Frame, 0, n)
	for i := 0; i < n; i++ {
		ts := int64(i) * intervalMS
		sec := float64(ts) / 1000
		if int(sec)%7 == 6 {
			frames = append(frames, NoFace(ts))
			continue
		}

		f := Neutral()
		f.Timestamp = ts
		blink := math.Pow(math.Abs(math.Sin(math.Pi*sec/3)), 40)
		f.EyeOpenLeft = 0.35 - 0.3*blink
		f.EyeOpenRight = f.EyeOpenLeft
		talk := 0.5 + 0.5*math.Sin(2*math.Pi*sec*1.5)
		f.MouthOpen = 0.05 + 0.4*talk
		f.Yaw = 15 * math.Sin(2*math.Pi*sec/5)
		f.Pitch = 8 * math.Sin(2*math.Pi*sec/4)
		f.Roll = 5 * math.Sin(2*math.Pi*sec/6)
		f.Translation = pose.Vector3{2 * math.Sin(sec), 0, -40}
		f.Scores = map[string]float64{
			"jawOpen":         talk,
			"eyeBlinkLeft":    blink,
			"eyeBlinkRight":   blink,
			"browInnerUp":     0.2 + 0.2*math.Sin(sec),
			"mouthSmileLeft":  0.3,
			"mouthSmileRight": 0.3,
		}
		frames = append(frames, f.Frame())
	}
	return frames
}
