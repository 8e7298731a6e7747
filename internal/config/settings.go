package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lilacgalaxy/vts-face-tracker/internal/fsutil"
)

// Settings are the runtime options of the facetrack binary, read from a YAML
// file. Command-line flags override them.
type Settings struct {
	ParametersFile string `yaml:"parameters_file" validate:"required"`
	Snapshots      bool   `yaml:"snapshots"`
	PollInterval   string `yaml:"poll_interval" validate:"required,duration"`
	LogLevel       string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Development    bool   `yaml:"development"`
	RecorderDB     string `yaml:"recorder_db"`
	PlotDir        string `yaml:"plot_dir"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		ParametersFile: DefaultParametersPath,
		Snapshots:      true,
		PollInterval:   "100ms",
		LogLevel:       "info",
	}
}

// GetPollInterval returns the consumer poll interval.
func (s Settings) GetPollInterval() time.Duration {
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}

// Validate checks field constraints.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadSettings reads a YAML settings file over DefaultSettings. Keys absent
// from the file keep their defaults.
func LoadSettings(fsys fsutil.FileSystem, path string) (Settings, error) {
	s := DefaultSettings()
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
	default:
		return s, fmt.Errorf("%w: settings file must have .yaml extension, got %q", ErrInvalidConfig, ext)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: failed to parse settings YAML: %v", ErrInvalidConfig, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
