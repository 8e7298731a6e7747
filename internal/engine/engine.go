// Package engine turns detection frames into output parameter lists and keeps
// the latest result for a separate consumer.
//
// One producer calls Compute per frame; any number of consumers may call
// Latest concurrently. Configuration edits go through Update, Calibrate,
// Reset and RestoreDefaults, which are safe to call while frames are being
// computed.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lilacgalaxy/vts-face-tracker/internal/config"
	"github.com/lilacgalaxy/vts-face-tracker/internal/landmarks"
	"github.com/lilacgalaxy/vts-face-tracker/internal/monitoring"
	"github.com/lilacgalaxy/vts-face-tracker/internal/params"
	"github.com/lilacgalaxy/vts-face-tracker/internal/pose"
)

// ErrNoSnapshot is returned by Calibrate before any frame was retained.
var ErrNoSnapshot = errors.New("no retained result")

// Engine computes output parameters from frames.
type Engine struct {
	store     *config.Store
	snapshots bool

	cfgMu sync.RWMutex
	cfg   *config.Configuration

	snap snapshotCell

	nonRigid atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSnapshots enables or disables retaining the latest Result. It is on by
// default.
func WithSnapshots(on bool) Option {
	return func(e *Engine) { e.snapshots = on }
}

// WithConfiguration starts the engine from cfg instead of loading the store.
func WithConfiguration(cfg *config.Configuration) Option {
	return func(e *Engine) { e.cfg = cfg.Clone() }
}

// New returns an engine backed by store. Unless WithConfiguration is given
// the configuration is loaded from the store, and a malformed file is an
// error.
func New(store *config.Store, opts ...Option) (*Engine, error) {
	e := &Engine{store: store, snapshots: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg == nil {
		cfg, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		e.cfg = cfg
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return e, nil
}

// Compute evaluates every configured parameter and the six pose parameters
// for one frame, in configuration order followed by pose order.
//
// A frame without blendshapes yields an empty list and leaves the retained
// result alone. Any error aborts the frame; nothing is retained for it.
func (e *Engine) Compute(f Frame) ([]params.Output, error) {
	if len(f.Blendshapes) == 0 {
		return []params.Output{}, nil
	}

	scores := f.BlendshapeMap()
	sets, err := landmarks.Classify(f.Points())
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", f.Timestamp, err)
	}

	if !pose.IsRigid(f.Transform) && e.nonRigid.Add(1) == 1 {
		monitoring.L().Warn("transform is not rigid; pose values may be skewed",
			zap.Int64("timestamp_ms", f.Timestamp))
	}

	in := params.Inputs{Blendshapes: scores, Landmarks: sets}

	e.cfgMu.RLock()
	outs := make([]params.Output, 0, len(e.cfg.Parameters)+len(pose.Names))
	for _, d := range e.cfg.Parameters {
		o, err := d.Compute(in)
		if err != nil {
			e.cfgMu.RUnlock()
			return nil, fmt.Errorf("frame %d: %w", f.Timestamp, err)
		}
		outs = append(outs, o...)
	}
	pv := pose.Extract(f.Transform, e.cfg.PositionOffset, e.cfg.RotationOffset)
	e.cfgMu.RUnlock()

	for i, v := range pv.Ordered() {
		outs = append(outs, params.Output{ID: pose.Names[i], Value: v})
	}

	if e.snapshots {
		retained := make([]params.Output, len(outs))
		copy(retained, outs)
		e.snap.store(&Result{
			Timestamp:   f.Timestamp,
			Outputs:     retained,
			Landmarks:   sets,
			Blendshapes: scores,
			Pose:        pv,
		})
	}
	return outs, nil
}

// Latest returns a copy of the retained result, or nil.
func (e *Engine) Latest() *Result {
	return e.snap.load()
}

// NonRigidFrames counts frames whose transform failed the rigidity check.
func (e *Engine) NonRigidFrames() int64 {
	return e.nonRigid.Load()
}

// Calibrate makes the retained head pose the new neutral: each retained pose
// value is added onto its calibration offset, and the configuration is saved.
func (e *Engine) Calibrate() error {
	r := e.snap.load()
	if r == nil {
		return ErrNoSnapshot
	}

	e.cfgMu.Lock()
	e.cfg.PositionOffset = e.cfg.PositionOffset.Add(r.Pose.Position)
	e.cfg.RotationOffset = e.cfg.RotationOffset.Add(r.Pose.Angle)
	cfg := e.cfg.Clone()
	e.cfgMu.Unlock()

	monitoring.L().Info("calibrated head pose",
		zap.Float64s("face_position_offset", cfg.PositionOffset[:]),
		zap.Float64s("face_rotation_offset", cfg.RotationOffset[:]),
		zap.Int64("timestamp_ms", r.Timestamp))
	return e.store.Save(cfg)
}

// Configuration returns a copy of the live configuration.
func (e *Engine) Configuration() *config.Configuration {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg.Clone()
}

// Update applies fn to a copy of the live configuration and installs the
// copy if fn succeeds and the result validates.
func (e *Engine) Update(fn func(*config.Configuration) error) error {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()

	next := e.cfg.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	e.cfg = next
	return nil
}

// Save persists the live configuration.
func (e *Engine) Save() error {
	return e.store.Save(e.Configuration())
}

// Reset replaces the live configuration with the persisted one. On error the
// live configuration is kept.
func (e *Engine) Reset() error {
	cfg, err := e.store.Reset()
	if err != nil {
		return err
	}
	e.install(cfg)
	monitoring.L().Info("configuration reset", zap.String("path", e.store.Path()))
	return nil
}

// RestoreDefaults replaces the live configuration with the built-in set. The
// file is not touched until Save.
func (e *Engine) RestoreDefaults() {
	e.install(e.store.RestoreDefaults())
	monitoring.L().Info("configuration restored to defaults")
}

func (e *Engine) install(cfg *config.Configuration) {
	e.cfgMu.Lock()
	e.cfg = cfg
	e.cfgMu.Unlock()
}
