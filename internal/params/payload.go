package params

// InjectMode is how the avatar application combines injected values with
// its own tracking.
const InjectMode = "add"

// InjectParameterData is the data block of the avatar application's
// parameter injection request. It is built here and shipped by the caller.
type InjectParameterData struct {
	FaceFound       bool     `json:"faceFound"`
	Mode            string   `json:"mode"`
	ParameterValues []Output `json:"parameterValues"`
}

// NewInjectParameterData wraps one frame's outputs. An empty list means no
// face was found; callers skip sending those.
func NewInjectParameterData(outs []Output) InjectParameterData {
	values := make([]Output, len(outs))
	copy(values, outs)
	return InjectParameterData{
		FaceFound:       len(outs) > 0,
		Mode:            InjectMode,
		ParameterValues: values,
	}
}
