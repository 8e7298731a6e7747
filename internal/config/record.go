package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/lilacgalaxy/vts-face-tracker/internal/params"
)

// Parameter type tags.
const (
	TypeBlendshape = "BLENDSHAPE"
	TypeLandmark   = "LANDMARK"
)

// Token is an enum value that older files may store either by name or by
// number. It unmarshals from a JSON string or number and always marshals as
// the name it was given.
type Token string

// UnmarshalJSON accepts "NAME" or a bare integer.
func (t *Token) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("enum token: %w", err)
		}
		*t = Token(s)
		return nil
	}
	if _, err := strconv.Atoi(string(b)); err != nil {
		return fmt.Errorf("enum token must be a string or integer, got %s", b)
	}
	*t = Token(b)
	return nil
}

// InputRecord is one blendshape input in the persisted file.
type InputRecord struct {
	Name string `json:"name"`
	Sign *int   `json:"sign,omitempty"`
}

// GetSign returns the sign or the default +1.
func (r InputRecord) GetSign() int {
	if r.Sign == nil {
		return 1
	}
	return *r.Sign
}

// ParameterRecord is one parameter in the persisted file. Optional fields are
// pointers so a missing field can be told apart from a zero value; Get*
// methods supply the defaults.
type ParameterRecord struct {
	ParameterType Token    `json:"parameter_type"`
	Name          string   `json:"name"`
	OutputID      string   `json:"output_id"`
	Scale         *float64 `json:"scale,omitempty"`
	Offset        *float64 `json:"offset,omitempty"`
	Clamp         *bool    `json:"clamp,omitempty"`
	MinVal        *float64 `json:"min_val,omitempty"`
	MaxVal        *float64 `json:"max_val,omitempty"`

	// Blendshape combination
	InputParameters *[]InputRecord `json:"input_parameters,omitempty"`

	// Landmark measure
	InputLandmarkSet *string `json:"input_landmark_set,omitempty"`
	CalculateOption  *Token  `json:"calculate_option,omitempty"`
}

// File is the persisted configuration document.
type File struct {
	Parameters         []ParameterRecord `json:"parameters"`
	FacePositionOffset *[3]float64       `json:"face_position_offset,omitempty"`
	FaceRotationOffset *[3]float64       `json:"face_rotation_offset,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// GetScale returns the scale value or the default.
func (r *ParameterRecord) GetScale() float64 {
	if r.Scale == nil {
		return 1.0
	}
	return *r.Scale
}

// GetOffset returns the offset value or the default.
func (r *ParameterRecord) GetOffset() float64 {
	if r.Offset == nil {
		return 0
	}
	return *r.Offset
}

// GetClamp returns the clamp value or the default.
func (r *ParameterRecord) GetClamp() bool {
	if r.Clamp == nil {
		return true
	}
	return *r.Clamp
}

// GetMinVal returns the min_val value or the default.
func (r *ParameterRecord) GetMinVal() float64 {
	if r.MinVal == nil {
		return 0
	}
	return *r.MinVal
}

// GetMaxVal returns the max_val value or the default.
func (r *ParameterRecord) GetMaxVal() float64 {
	if r.MaxVal == nil {
		return 1.0
	}
	return *r.MaxVal
}

func parseType(t Token) (string, error) {
	switch strings.ToUpper(string(t)) {
	case TypeBlendshape, "1":
		return TypeBlendshape, nil
	case TypeLandmark, "2":
		return TypeLandmark, nil
	}
	return "", fmt.Errorf("unknown parameter_type %q", string(t))
}

// Definition converts the record, applying defaults, and validates the result.
func (r *ParameterRecord) Definition() (params.Definition, error) {
	typ, err := parseType(r.ParameterType)
	if err != nil {
		return params.Definition{}, err
	}

	var calc params.Calculation
	switch typ {
	case TypeBlendshape:
		var inputs []params.Input
		if r.InputParameters != nil {
			inputs = make([]params.Input, 0, len(*r.InputParameters))
			for _, in := range *r.InputParameters {
				inputs = append(inputs, params.Input{Name: in.Name, Sign: params.Sign(in.GetSign())})
			}
		}
		calc = params.BlendshapeCombination{Inputs: inputs}
	case TypeLandmark:
		lm := params.LandmarkMeasure{}
		if r.InputLandmarkSet != nil {
			lm.Set = *r.InputLandmarkSet
		}
		if r.CalculateOption == nil {
			return params.Definition{}, fmt.Errorf("calculate_option is required for %s", TypeLandmark)
		}
		m, err := params.ParseMethod(string(*r.CalculateOption))
		if err != nil {
			return params.Definition{}, err
		}
		lm.Method = m
		calc = lm
	}

	d := params.Definition{
		Name:        r.Name,
		OutputID:    r.OutputID,
		Scale:       r.GetScale(),
		Offset:      r.GetOffset(),
		Clamp:       r.GetClamp(),
		Min:         r.GetMinVal(),
		Max:         r.GetMaxVal(),
		Calculation: calc,
	}
	if err := d.Validate(); err != nil {
		return params.Definition{}, err
	}
	return d, nil
}

// RecordFrom converts a definition into a fully populated record.
func RecordFrom(d params.Definition) ParameterRecord {
	r := ParameterRecord{
		Name:     d.Name,
		OutputID: d.OutputID,
		Scale:    ptrFloat64(d.Scale),
		Offset:   ptrFloat64(d.Offset),
		Clamp:    ptrBool(d.Clamp),
		MinVal:   ptrFloat64(d.Min),
		MaxVal:   ptrFloat64(d.Max),
	}
	switch c := d.Calculation.(type) {
	case params.BlendshapeCombination:
		r.ParameterType = TypeBlendshape
		inputs := make([]InputRecord, 0, len(c.Inputs))
		for _, in := range c.Inputs {
			inputs = append(inputs, InputRecord{Name: in.Name, Sign: ptrInt(int(in.Sign))})
		}
		r.InputParameters = &inputs
	case params.LandmarkMeasure:
		r.ParameterType = TypeLandmark
		r.InputLandmarkSet = ptrString(c.Set)
		opt := Token(c.Method.String())
		r.CalculateOption = &opt
	}
	return r
}
