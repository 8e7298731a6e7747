package config

import (
	"github.com/lilacgalaxy/vts-face-tracker/internal/params"
)

func blend(name, outputID string, inputs ...params.Input) params.Definition {
	d := params.NewDefinition(name, outputID, params.BlendshapeCombination{Inputs: inputs})
	d.Clamp = false
	return d
}

func measure(name, outputID, set string, m params.Method, scale, offset float64) params.Definition {
	d := params.NewDefinition(name, outputID, params.LandmarkMeasure{Set: set, Method: m})
	d.Scale, d.Offset = scale, offset
	return d
}

func up(name string) params.Input   { return params.Input{Name: name, Sign: params.Positive} }
func down(name string) params.Input { return params.Input{Name: name, Sign: params.Negative} }

// Defaults returns the built-in parameter set with zero calibration offsets.
func Defaults() *Configuration {
	cheek := measure("Cheek Puff", "CheekPuff", "face_oval_xy", params.EllipseFit, 20, 0.65)

	mouthOpen := measure("Mouth Open", "MouthOpen", "lips_xyz", params.HullCalculation, 20, 0.035)
	mouthOpen.Clamp = false
	mouthVolume := measure("Mouth Open Plus Volume", "VoiceVolumePlusMouthOpen", "lips_xyz", params.HullCalculation, 20, 0.045)
	mouthVolume.Clamp = false

	smileFreq := blend("Mouth Smile Plus Frequency", "VoiceFrequencyPlusMouthSmile",
		up("mouthSmileLeft"), up("mouthSmileRight"), down("mouthPucker"), down("mouthShrugLower"))
	smileFreq.Scale = 0.5

	mouthX := params.NewDefinition("Mouth X Blendshape", "mouthX", params.BlendshapeCombination{Inputs: []params.Input{
		up("mouthRight"), up("mouthPressRight"), down("mouthLeft"), down("mouthPressLeft"),
	}})
	mouthX.Scale = 3
	mouthX.SetMin(-1)

	return &Configuration{
		Parameters: []params.Definition{
			blend("Brows Shape", "Brows",
				up("browInnerUp"), up("browOuterUpLeft"), up("browOuterUpRight"), down("browDownLeft"), down("browDownRight")),
			blend("Brow Left Y", "BrowLeftY", up("browInnerUp"), up("browOuterUpLeft"), down("browDownLeft")),
			blend("Brow Right Y", "BrowRightY", up("browInnerUp"), up("browOuterUpRight"), down("browDownRight")),
			cheek,
			measure("Left Eye Open", "EyeOpenLeft", "left_eye_xy", params.EllipseFit, 10, 0.3),
			measure("Right Eye Open", "EyeOpenRight", "right_eye_xy", params.EllipseFit, 10, 0.3),
			blend("Left Eye X", "EyeLeftX", up("eyeLookOutLeft"), down("eyeLookInLeft")),
			blend("Right Eye X", "EyeRightX", down("eyeLookOutRight"), up("eyeLookInRight")),
			blend("Left Eye Y", "EyeLeftY", up("eyeLookUpLeft"), down("eyeLookDownLeft")),
			blend("Right Eye Y", "EyeRightY", up("eyeLookUpRight"), down("eyeLookDownRight")),
			mouthOpen,
			mouthVolume,
			blend("Mouth Smile", "MouthSmile",
				up("mouthSmileLeft"), up("mouthSmileRight"), down("mouthPucker"), down("mouthShrugLower")),
			smileFreq,
			mouthX,
		},
	}
}
