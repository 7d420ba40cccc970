package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
	"github.com/oshokin/gen-update-config/internal/ota/propertyfiles"
	"github.com/oshokin/gen-update-config/internal/version"
)

// Config holds defaults shared by the gen-update-config commands.
type Config struct {
	// InstallType is the default A/B install type.
	InstallType updateconfig.InstallType `yaml:"ab_install_type"`
	// ForceSwitchSlot makes the device boot the new slot without user action.
	ForceSwitchSlot bool `yaml:"ab_force_switch_slot"`
	// VerifyPayloadMetadata makes the client verify payload metadata before downloading.
	VerifyPayloadMetadata bool `yaml:"ab_verify_payload_metadata"`
	// PropertyFilesSource selects how byte ranges are obtained.
	PropertyFilesSource propertyfiles.Source `yaml:"property_files_source"`
	// Generator is the tool name written into the "__" banner.
	Generator string `yaml:"generator"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// HTTPTimeout bounds fetching remote configs.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

const (
	// DefaultConfigFilename is the settings file looked up in the working directory.
	DefaultConfigFilename = "gen-update-config.yaml"

	// DefaultHTTPTimeout is the default duration for fetching remote configs.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultLogLevel is used when the settings do not name one.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadLogLevel is returned for an unknown log level name.
	errBadLogLevel = errors.New("unknown log level")
)

// Default returns settings matching the command line defaults.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Zero values always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads settings from path. When path is empty the default file is used
// if present, and built-in defaults otherwise.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks enumerated fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.InstallType == "" {
		settings.InstallType = updateconfig.InstallTypeNonStreaming
	}

	if _, err := updateconfig.ParseInstallType(string(settings.InstallType)); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if settings.PropertyFilesSource == "" {
		settings.PropertyFilesSource = propertyfiles.SourceComputed
	}

	if _, err := propertyfiles.ParseSource(string(settings.PropertyFilesSource)); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if strings.TrimSpace(settings.Generator) == "" {
		settings.Generator = version.ToolName
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("invalid settings: %w %q", errBadLogLevel, settings.LogLevel)
	}

	// Set default timeout if not specified
	if settings.HTTPTimeout <= 0 {
		settings.HTTPTimeout = DefaultHTTPTimeout
	}

	return nil
}
