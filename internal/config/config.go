package config

import "errors"

// Config is the top-level configuration struct for treegrep.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
	Rules  RulesConfig  `mapstructure:"rules"`
}

// ScanConfig holds file walking and parallelism knobs.
type ScanConfig struct {
	Workers     int   `mapstructure:"workers"`
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// OutputConfig holds match reporting settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// RulesConfig holds rule discovery settings.
type RulesConfig struct {
	Dirs  []string `mapstructure:"dirs"`
	Globs []string `mapstructure:"globs"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("scan.workers must be non-negative")
	// ErrInvalidMaxFileSize indicates the max file size is not positive.
	ErrInvalidMaxFileSize = errors.New("scan.max_file_size must be positive")
	// ErrInvalidFormat indicates an unknown output format.
	ErrInvalidFormat = errors.New("output.format must be text or json")
	// ErrInvalidColor indicates an unknown color mode.
	ErrInvalidColor = errors.New("output.color must be auto, always, or never")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Scan.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Scan.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return ErrInvalidFormat
	}

	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return ErrInvalidColor
	}

	return nil
}
