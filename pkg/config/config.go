package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes environment variables that override configuration keys,
// e.g. KGCURATE_DATASET_SPLIT for dataset.split.
const EnvPrefix = "KGCURATE"

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Dataset building
	Dataset DatasetConfig `mapstructure:"dataset"`

	// Negative sampling
	Negatives NegativesConfig `mapstructure:"negatives"`

	// Workers sizes the worker pools; 0 means one per CPU.
	Workers int `mapstructure:"workers"`

	// Output file settings
	Output OutputConfig `mapstructure:"output"`

	// Export configuration
	Export ExportConfig `mapstructure:"export"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json, logfmt
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	// ParquetPath is the directory receiving warning and error records. Empty disables it.
	ParquetPath string `mapstructure:"parquet_path"`
}

// DatasetConfig holds the dataset building parameters
type DatasetConfig struct {
	Split          float64  `mapstructure:"split"`      // valid and test fraction each
	Dist           int      `mapstructure:"dist"`       // subgraph hops
	PruneDist      int      `mapstructure:"prune_dist"` // 0 means Dist
	RatioOff       float64  `mapstructure:"ratio_off"`
	AllowRelations []string `mapstructure:"allow_relations"`
	DenyRelations  []string `mapstructure:"deny_relations"`
	Seeds          []string `mapstructure:"seeds"`
	SeedsFile      string   `mapstructure:"seeds_file"`
	Relabel        bool     `mapstructure:"relabel"`
	Lowercase      bool     `mapstructure:"lowercase"`
}

// NegativesConfig holds the negative sampling parameters
type NegativesConfig struct {
	MaxDepth   int    `mapstructure:"max_depth"`
	N          int    `mapstructure:"n"`
	WalkBudget int    `mapstructure:"walk_budget"`
	Seed       uint64 `mapstructure:"seed"` // 0 draws a random seed
}

// OutputConfig holds output file settings
type OutputConfig struct {
	Compression string `mapstructure:"compression"` // none, gzip, zstd
}

// ExportConfig holds the optional Parquet export
type ExportConfig struct {
	ParquetDir string `mapstructure:"parquet_dir"`
}

// Load loads configuration from the global viper instance, which holds the config file,
// bound flags and environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom decodes and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns the default configuration. It does not read the environment.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Dataset: DatasetConfig{
			Split:     0.01,
			Dist:      3,
			RatioOff:  0.1,
			Relabel:   true,
			Lowercase: true,
		},
		Negatives: NegativesConfig{
			MaxDepth:   4,
			N:          5,
			WalkBudget: 1000,
		},
		Output: OutputConfig{Compression: "none"},
	}
}

// SetDefaults sets default configuration values and enables environment overrides on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()

	// Log defaults
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("telemetry.parquet_path", d.Telemetry.ParquetPath)

	// Dataset defaults
	v.SetDefault("dataset.split", d.Dataset.Split)
	v.SetDefault("dataset.dist", d.Dataset.Dist)
	v.SetDefault("dataset.prune_dist", d.Dataset.PruneDist)
	v.SetDefault("dataset.ratio_off", d.Dataset.RatioOff)
	v.SetDefault("dataset.allow_relations", []string{})
	v.SetDefault("dataset.deny_relations", []string{})
	v.SetDefault("dataset.seeds", []string{})
	v.SetDefault("dataset.seeds_file", d.Dataset.SeedsFile)
	v.SetDefault("dataset.relabel", d.Dataset.Relabel)
	v.SetDefault("dataset.lowercase", d.Dataset.Lowercase)

	// Negative sampling defaults
	v.SetDefault("negatives.max_depth", d.Negatives.MaxDepth)
	v.SetDefault("negatives.n", d.Negatives.N)
	v.SetDefault("negatives.walk_budget", d.Negatives.WalkBudget)
	v.SetDefault("negatives.seed", d.Negatives.Seed)

	v.SetDefault("workers", d.Workers)
	v.SetDefault("output.compression", d.Output.Compression)
	v.SetDefault("export.parquet_dir", d.Export.ParquetDir)
}

// MaxPruneDist is the pruning distance: PruneDist, or Dist when PruneDist is 0.
func (d DatasetConfig) MaxPruneDist() int {
	if d.PruneDist == 0 {
		return d.Dist
	}
	return d.PruneDist
}

// Validate rejects values no pipeline stage can run with. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if !inUnitInterval(c.Dataset.Split) {
		invalid("dataset.split must be in [0, 1), got %v", c.Dataset.Split)
	}
	if !inUnitInterval(c.Dataset.RatioOff) {
		invalid("dataset.ratio_off must be in [0, 1), got %v", c.Dataset.RatioOff)
	}
	if c.Dataset.Dist < 0 {
		invalid("dataset.dist must be non-negative, got %d", c.Dataset.Dist)
	}
	if c.Dataset.PruneDist < 0 {
		invalid("dataset.prune_dist must be non-negative, got %d", c.Dataset.PruneDist)
	}
	if c.Negatives.MaxDepth < 2 {
		invalid("negatives.max_depth must be at least 2, got %d", c.Negatives.MaxDepth)
	}
	if c.Negatives.N < 1 {
		invalid("negatives.n must be at least 1, got %d", c.Negatives.N)
	}
	if c.Negatives.WalkBudget < 0 {
		invalid("negatives.walk_budget must be non-negative, got %d", c.Negatives.WalkBudget)
	}
	if c.Workers < 0 {
		invalid("workers must be non-negative, got %d", c.Workers)
	}
	switch strings.ToLower(c.Output.Compression) {
	case "", "none", "gzip", "zstd":
	default:
		invalid("output.compression must be none, gzip or zstd, got %q", c.Output.Compression)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json", "logfmt":
	default:
		invalid("log.format must be text, json or logfmt, got %q", c.Log.Format)
	}
	return errors.Join(errs...)
}

func inUnitInterval(f float64) bool {
	return !math.IsNaN(f) && f >= 0 && f < 1
}
