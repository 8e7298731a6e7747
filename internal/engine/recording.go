package engine

import (
	"bufio"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/lilacgalaxy/vts-face-tracker/internal/params"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxLineSize bounds one encoded frame (478 landmarks is ~40KB).
const maxLineSize = 1 << 20

// FrameReader decodes a recording of one JSON frame per line.
type FrameReader struct {
	sc   *bufio.Scanner
	line int
}

// NewFrameReader reads frames from r.
func NewFrameReader(r io.Reader) *FrameReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &FrameReader{sc: sc}
}

// Next returns the next frame, or io.EOF after the last one. Blank lines are
// skipped.
func (r *FrameReader) Next() (Frame, error) {
	for r.sc.Scan() {
		r.line++
		b := r.sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(b, &f); err != nil {
			return Frame{}, fmt.Errorf("recording line %d: %w", r.line, err)
		}
		return f, nil
	}
	if err := r.sc.Err(); err != nil {
		return Frame{}, fmt.Errorf("recording line %d: %w", r.line+1, err)
	}
	return Frame{}, io.EOF
}

// FrameWriter encodes frames one per line.
type FrameWriter struct {
	w *bufio.Writer
}

// NewFrameWriter writes frames to w. Call Flush when done.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: bufio.NewWriter(w)}
}

// Write appends one frame.
func (w *FrameWriter) Write(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", f.Timestamp, err)
	}
	if _, err := w.w.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

// Flush writes any buffered frames.
func (w *FrameWriter) Flush() error {
	return w.w.Flush()
}

// WriteOutputs encodes one frame's outputs as the injection payload the
// avatar application expects, one JSON object per line.
func WriteOutputs(w io.Writer, timestamp int64, outs []params.Output) error {
	b, err := json.Marshal(struct {
		Timestamp int64                      `json:"timestamp_ms"`
		Data      params.InjectParameterData `json:"data"`
	}{timestamp, params.NewInjectParameterData(outs)})
	if err != nil {
		return fmt.Errorf("encode outputs: %w", err)
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
