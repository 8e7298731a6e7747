// Package params defines output parameters: how each one derives a raw value
// from a frame's blendshapes or landmark sets, and the affine+clamp post
// processing shared by every definition.
package params

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownBlendshape is returned when a definition references a
	// blendshape category missing from the frame.
	ErrUnknownBlendshape = errors.New("unknown blendshape")
	// ErrUnknownLandmarkSet is returned when a definition references a
	// landmark subset that was not classified.
	ErrUnknownLandmarkSet = errors.New("unknown landmark set")
	// ErrInvalidDefinition is returned by Validate.
	ErrInvalidDefinition = errors.New("invalid parameter definition")
)

// Output is one (identifier, value) pair sent downstream. Identifiers may
// repeat within a frame.
type Output struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// Sign selects whether a blendshape input raises or lowers the raw value.
type Sign int

const (
	Positive Sign = 1
	Negative Sign = -1
)

// Input is one signed blendshape reference.
type Input struct {
	Name string
	Sign Sign
}

// Method selects the geometric measure of a LandmarkMeasure.
type Method int

const (
	EllipseFit Method = iota + 1
	HullCalculation
)

// legacyHullName is an older spelling still found in saved files.
const legacyHullName = "HULL_CALCUATION"

func (m Method) String() string {
	switch m {
	case EllipseFit:
		return "ELLIPSE_FIT"
	case HullCalculation:
		return "HULL_CALCULATION"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod accepts the canonical names, the legacy hull spelling and the
// numeric enum values 1 and 2.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ELLIPSE_FIT", "1":
		return EllipseFit, nil
	case "HULL_CALCULATION", legacyHullName, "2":
		return HullCalculation, nil
	}
	return 0, fmt.Errorf("%w: unknown calculate option %q", ErrInvalidDefinition, s)
}

// Calculation is the variant part of a Definition: either a
// BlendshapeCombination or a LandmarkMeasure.
type Calculation interface {
	isCalculation()
	clone() Calculation
}

// BlendshapeCombination combines signed blendshape coefficients.
type BlendshapeCombination struct {
	Inputs []Input
}

// LandmarkMeasure applies a geometric measure to one classified landmark set.
type LandmarkMeasure struct {
	Set    string
	Method Method
}

func (BlendshapeCombination) isCalculation() {}
func (LandmarkMeasure) isCalculation()       {}

func (c BlendshapeCombination) clone() Calculation {
	in := make([]Input, len(c.Inputs))
	copy(in, c.Inputs)
	return BlendshapeCombination{Inputs: in}
}

func (c LandmarkMeasure) clone() Calculation { return c }

// Definition is one configured output parameter.
//
// Min and Max only take effect when Clamp is set. Use SetMin and SetMax to
// edit the bounds; they keep Min <= Max.
type Definition struct {
	Name        string
	OutputID    string
	Scale       float64
	Offset      float64
	Clamp       bool
	Min         float64
	Max         float64
	Calculation Calculation
}

// NewDefinition returns a definition with the documented defaults
// (scale 1, offset 0, clamp on, bounds [0, 1]).
func NewDefinition(name, outputID string, calc Calculation) Definition {
	return Definition{
		Name:        name,
		OutputID:    outputID,
		Scale:       1,
		Clamp:       true,
		Min:         0,
		Max:         1,
		Calculation: calc,
	}
}

// SetMin sets the lower bound, pulling it down to Max if it would exceed it.
func (d *Definition) SetMin(v float64) {
	d.Min = math.Min(v, d.Max)
}

// SetMax sets the upper bound, pushing it up to Min if it would fall below it.
func (d *Definition) SetMax(v float64) {
	d.Max = math.Max(v, d.Min)
}

// PostProcess applies (raw - Offset) * Scale and, when enabled, the clamp.
func (d Definition) PostProcess(raw float64) float64 {
	v := (raw - d.Offset) * d.Scale
	if d.Clamp {
		v = math.Max(math.Min(v, d.Max), d.Min)
	}
	return v
}

// Clone returns a deep copy.
func (d Definition) Clone() Definition {
	if d.Calculation != nil {
		d.Calculation = d.Calculation.clone()
	}
	return d
}

// Validate checks the structural invariants of a definition.
func (d Definition) Validate() error {
	var errs []string
	if d.OutputID == "" {
		errs = append(errs, "output_id is empty")
	}
	for _, v := range []float64{d.Scale, d.Offset, d.Min, d.Max} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, "scale, offset and bounds must be finite")
			break
		}
	}
	if d.Min > d.Max {
		errs = append(errs, fmt.Sprintf("min_val %v exceeds max_val %v", d.Min, d.Max))
	}

	switch c := d.Calculation.(type) {
	case BlendshapeCombination:
		for i, in := range c.Inputs {
			if in.Name == "" {
				errs = append(errs, fmt.Sprintf("input %d has no name", i))
			}
			if in.Sign != Positive && in.Sign != Negative {
				errs = append(errs, fmt.Sprintf("input %q has sign %d, want 1 or -1", in.Name, in.Sign))
			}
		}
	case LandmarkMeasure:
		if c.Set == "" {
			errs = append(errs, "input_landmark_set is empty")
		}
		if c.Method != EllipseFit && c.Method != HullCalculation {
			errs = append(errs, fmt.Sprintf("unknown calculate option %v", c.Method))
		}
	case nil:
		errs = append(errs, "no calculation")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidDefinition, d.Name, strings.Join(errs, "; "))
	}
	return nil
}
