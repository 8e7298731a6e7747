package params

import (
	"fmt"

	"github.com/lilacgalaxy/vts-face-tracker/internal/geometry"
	"github.com/lilacgalaxy/vts-face-tracker/internal/landmarks"
)

// ReferenceSet is the subset every hull ratio is measured against.
var ReferenceSet = landmarks.Name(landmarks.FaceOval, false)

// Inputs is the per-frame data a definition reads.
type Inputs struct {
	Blendshapes map[string]float64
	Landmarks   landmarks.Sets
}

// Compute evaluates the definition against one frame. Errors name the
// parameter and the missing key.
func (d Definition) Compute(in Inputs) ([]Output, error) {
	raw, err := d.Raw(in)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", d.Name, err)
	}
	return []Output{{ID: d.OutputID, Value: d.PostProcess(raw)}}, nil
}

// Raw returns the value before post-processing.
func (d Definition) Raw(in Inputs) (float64, error) {
	switch c := d.Calculation.(type) {
	case BlendshapeCombination:
		return c.raw(in.Blendshapes)
	case LandmarkMeasure:
		return c.raw(in.Landmarks)
	default:
		return 0, fmt.Errorf("%w: no calculation", ErrInvalidDefinition)
	}
}

// raw is max(0, positive inputs) - max(0, negative inputs).
func (c BlendshapeCombination) raw(scores map[string]float64) (float64, error) {
	var pos, neg float64
	for _, in := range c.Inputs {
		v, ok := scores[in.Name]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownBlendshape, in.Name)
		}
		switch in.Sign {
		case Positive:
			pos = max(pos, v)
		case Negative:
			neg = max(neg, v)
		}
	}
	return pos - neg, nil
}

func (c LandmarkMeasure) raw(sets landmarks.Sets) (float64, error) {
	set, ok := sets.Lookup(c.Set)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownLandmarkSet, c.Set)
	}

	switch c.Method {
	case EllipseFit:
		v, err := geometry.EllipseAxisRatio(set.XY())
		if err != nil {
			return 0, fmt.Errorf("ellipse fit on %s: %w", c.Set, err)
		}
		return v, nil
	case HullCalculation:
		ref, ok := sets.Lookup(ReferenceSet)
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownLandmarkSet, ReferenceSet)
		}
		var (
			v   float64
			err error
		)
		if set.Planar {
			v, err = geometry.PlanarHullRatio(set.XY(), ref.Points)
		} else {
			v, err = geometry.HullRatio(set.Points, ref.Points)
		}
		if err != nil {
			return 0, fmt.Errorf("hull ratio on %s: %w", c.Set, err)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: unknown calculate option %v", ErrInvalidDefinition, c.Method)
	}
}

// OutputMap folds an output list into id -> value. Later duplicates win.
func OutputMap(outs []Output) map[string]float64 {
	m := make(map[string]float64, len(outs))
	for _, o := range outs {
		m[o.ID] = o.Value
	}
	return m
}
