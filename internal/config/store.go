// Package config holds the live parameter configuration, its persisted JSON
// form, and the YAML runtime settings of the facetrack binary.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/lilacgalaxy/vts-face-tracker/internal/fsutil"
	"github.com/lilacgalaxy/vts-face-tracker/internal/monitoring"
	"github.com/lilacgalaxy/vts-face-tracker/internal/params"
	"github.com/lilacgalaxy/vts-face-tracker/internal/pose"
)

// DefaultParametersPath is where the parameter configuration is kept when no
// other path is given.
const DefaultParametersPath = "parameters.json"

// maxFileSize bounds the persisted configuration.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// ErrInvalidConfig wraps every load failure caused by file content.
var ErrInvalidConfig = errors.New("invalid configuration")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Configuration is the ordered parameter list plus the two calibration
// offsets. The engine owns the live instance.
type Configuration struct {
	Parameters     []params.Definition
	PositionOffset pose.Vector3
	RotationOffset pose.Vector3
}

// Clone returns a deep copy.
func (c *Configuration) Clone() *Configuration {
	out := &Configuration{
		Parameters:     make([]params.Definition, len(c.Parameters)),
		PositionOffset: c.PositionOffset,
		RotationOffset: c.RotationOffset,
	}
	for i, d := range c.Parameters {
		out.Parameters[i] = d.Clone()
	}
	return out
}

// Validate checks every definition.
func (c *Configuration) Validate() error {
	var errs []error
	for i, d := range c.Parameters {
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("parameters[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Index returns the position of the first definition with the given name.
func (c *Configuration) Index(name string) (int, bool) {
	for i, d := range c.Parameters {
		if d.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Add appends a validated definition.
func (c *Configuration) Add(d params.Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	c.Parameters = append(c.Parameters, d)
	return nil
}

// Remove deletes the definition at i.
func (c *Configuration) Remove(i int) error {
	if i < 0 || i >= len(c.Parameters) {
		return fmt.Errorf("parameter index %d out of range [0,%d)", i, len(c.Parameters))
	}
	c.Parameters = append(c.Parameters[:i], c.Parameters[i+1:]...)
	return nil
}

// Move relocates the definition at from to position to.
func (c *Configuration) Move(from, to int) error {
	n := len(c.Parameters)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d -> %d out of range [0,%d)", from, to, n)
	}
	d := c.Parameters[from]
	c.Parameters = append(c.Parameters[:from], c.Parameters[from+1:]...)
	c.Parameters = append(c.Parameters[:to], append([]params.Definition{d}, c.Parameters[to:]...)...)
	return nil
}

// Store reads and writes the persisted configuration at one path.
type Store struct {
	fs   fsutil.FileSystem
	path string
}

// NewStore returns a store for path on fsys. A nil fsys means the OS
// filesystem.
func NewStore(fsys fsutil.FileSystem, path string) *Store {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	if path == "" {
		path = DefaultParametersPath
	}
	return &Store{fs: fsys, path: filepath.Clean(path)}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string { return s.path }

// Load reads the persisted configuration. When the file does not exist the
// built-in defaults are returned. A file that exists but cannot be read,
// parsed or validated is an error: the defaults are never substituted for a
// user's broken file.
func (s *Store) Load() (*Configuration, error) {
	if !s.fs.Exists(s.path) {
		monitoring.L().Info("no parameter file, using defaults", zap.String("path", s.path))
		return Defaults(), nil
	}

	if ext := filepath.Ext(s.path); ext != ".json" {
		return nil, fmt.Errorf("%w: config file must have .json extension, got %q", ErrInvalidConfig, ext)
	}
	info, err := s.fs.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%w: config file too large: %d bytes (max %d)", ErrInvalidConfig, info.Size(), maxFileSize)
	}

	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	monitoring.L().Info("loaded parameter configuration",
		zap.String("path", s.path), zap.Int("parameters", len(cfg.Parameters)))
	return cfg, nil
}

// Reset re-reads the persisted configuration; callers drop their in-memory
// copy for the result.
func (s *Store) Reset() (*Configuration, error) {
	return s.Load()
}

// RestoreDefaults returns the built-in set, ignoring any persisted file.
func (s *Store) RestoreDefaults() *Configuration {
	return Defaults()
}

// Save writes every field of cfg, replacing the file atomically.
func (s *Store) Save(cfg *Configuration) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	monitoring.L().Info("saved parameter configuration",
		zap.String("path", s.path), zap.Int("parameters", len(cfg.Parameters)))
	return nil
}

// Decode parses and validates a persisted configuration document. Unknown
// fields are ignored; missing optional fields take their defaults.
func Decode(data []byte) (*Configuration, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config JSON: %v", ErrInvalidConfig, err)
	}

	cfg := &Configuration{Parameters: make([]params.Definition, 0, len(f.Parameters))}
	for i := range f.Parameters {
		d, err := f.Parameters[i].Definition()
		if err != nil {
			return nil, fmt.Errorf("%w: parameters[%d] %q: %v", ErrInvalidConfig, i, f.Parameters[i].Name, err)
		}
		cfg.Parameters = append(cfg.Parameters, d)
	}
	if f.FacePositionOffset != nil {
		cfg.PositionOffset = pose.Vector3(*f.FacePositionOffset)
	}
	if f.FaceRotationOffset != nil {
		cfg.RotationOffset = pose.Vector3(*f.FaceRotationOffset)
	}
	return cfg, nil
}

// Encode renders cfg as an indented JSON document with every field present.
func Encode(cfg *Configuration) ([]byte, error) {
	pos, rot := [3]float64(cfg.PositionOffset), [3]float64(cfg.RotationOffset)
	f := File{
		Parameters:         make([]ParameterRecord, 0, len(cfg.Parameters)),
		FacePositionOffset: &pos,
		FaceRotationOffset: &rot,
	}
	for _, d := range cfg.Parameters {
		f.Parameters = append(f.Parameters, RecordFrom(d))
	}
	data, err := json.MarshalIndent(f, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	return append(data, '\n'), nil
}
