package engine

import (
	"maps"
	"sync"

	"github.com/lilacgalaxy/vts-face-tracker/internal/landmarks"
	"github.com/lilacgalaxy/vts-face-tracker/internal/params"
	"github.com/lilacgalaxy/vts-face-tracker/internal/pose"
)

// Result is everything one computed frame produced. A retained Result is
// never modified; readers get a Clone.
type Result struct {
	Timestamp   int64
	Outputs     []params.Output
	Landmarks   landmarks.Sets
	Blendshapes map[string]float64
	// Pose holds the six pose outputs, also present at the tail of Outputs.
	Pose pose.Values
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	outs := make([]params.Output, len(r.Outputs))
	copy(outs, r.Outputs)
	return &Result{
		Timestamp:   r.Timestamp,
		Outputs:     outs,
		Landmarks:   r.Landmarks.Clone(),
		Blendshapes: maps.Clone(r.Blendshapes),
		Pose:        r.Pose,
	}
}

// OutputMap folds Outputs into id -> value.
func (r *Result) OutputMap() map[string]float64 {
	return params.OutputMap(r.Outputs)
}

// snapshotCell is a single slot holding the latest Result. Writes swap the
// whole pointer under the lock; reads copy under the lock.
type snapshotCell struct {
	mu     sync.RWMutex
	latest *Result
}

func (c *snapshotCell) store(r *Result) {
	c.mu.Lock()
	c.latest = r
	c.mu.Unlock()
}

func (c *snapshotCell) load() *Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest.Clone()
}
