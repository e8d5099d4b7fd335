// Package config handles project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matsen/topictrace/internal/rank"
	"github.com/matsen/topictrace/internal/report"
	"github.com/matsen/topictrace/internal/spread"
	"github.com/matsen/topictrace/internal/yeargraph"
	"gopkg.in/yaml.v3"
)

// Config represents project configuration stored in .topictrace/config.yml.
type Config struct {
	DS1Path             string  `yaml:"ds1_path"`             // Keyword co-citation TSV
	DS2Path             string  `yaml:"ds2_path"`             // Author collaboration TSV
	K                   int     `yaml:"k"`                    // Seeds per year and topic budget
	Metric              string  `yaml:"metric"`               // Seed ranking metric
	Model               string  `yaml:"model"`                // Propagation model
	ThresholdStrategy   string  `yaml:"threshold_strategy"`   // Activation threshold strategy
	Weights             string  `yaml:"weights"`              // Edge weighting
	SimilarityThreshold float64 `yaml:"similarity_threshold"` // Tracing similarity threshold
	Merge               bool    `yaml:"merge"`                // Absorb consecutive matches
	TraceOutput         string  `yaml:"trace_output"`         // emit, persist, or silent
	OutputDir           string  `yaml:"output_dir"`           // Log directory, relative to the project root
	Seed                uint64  `yaml:"seed"`                 // RNG seed for the cascade model
	LogLevel            string  `yaml:"log_level"`
}

const (
	ProjectDir = ".topictrace"
	ConfigFile = "config.yml"
	CacheDir   = "cache"
	DBFile     = "records.db"
)

// Environment variables.
const (
	EnvRoot     = "TOPICTRACE_ROOT"
	EnvDS1      = "TOPICTRACE_DS1"
	EnvDS2      = "TOPICTRACE_DS2"
	EnvK        = "TOPICTRACE_K"
	EnvLogLevel = "TOPICTRACE_LOG_LEVEL"
)

// ErrNotProject is returned when no .topictrace directory is found.
var ErrNotProject = errors.New("not in a topictrace project (no .topictrace directory found)")

// Default returns the configuration a new project starts with.
func Default() *Config {
	return &Config{
		K:                   5,
		Metric:              rank.MetricPageRank,
		Model:               spread.ModelTipping,
		ThresholdStrategy:   string(spread.StrategyDegree),
		Weights:             string(yeargraph.WeightFraction),
		SimilarityThreshold: 0.5,
		Merge:               true,
		TraceOutput:         string(report.ModeSilent),
		OutputDir:           "output",
		Seed:                1,
		LogLevel:            "info",
	}
}

// ProjectPath returns the path to the .topictrace directory from a root path.
func ProjectPath(root string) string {
	return filepath.Join(root, ProjectDir)
}

// ConfigPath returns the path to config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ProjectDir, ConfigFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, ProjectDir, CacheDir)
}

// DBPath returns the path to records.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, ProjectDir, CacheDir, DBFile)
}

// IsProject checks if the given path contains a topictrace project.
func IsProject(root string) bool {
	info, err := os.Stat(ProjectPath(root))
	return err == nil && info.IsDir()
}

// FindProject returns TOPICTRACE_ROOT when set, otherwise walks up from start
// to find a topictrace project.
func FindProject(start string) (string, error) {
	if root := os.Getenv(EnvRoot); root != "" {
		root = ExpandPath(root)
		if !IsProject(root) {
			return "", fmt.Errorf("%s=%s: %w", EnvRoot, root, ErrNotProject)
		}
		return root, nil
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsProject(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotProject
		}
		abs = parent
	}
}

// Load reads configuration from the project at the given root. Fields missing
// from the file keep their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the project at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from TOPICTRACE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvDS1); v != "" {
		c.DS1Path = v
	}
	if v := os.Getenv(EnvDS2); v != "" {
		c.DS2Path = v
	}
	if v := os.Getenv(EnvK); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvK, v)
		}
		c.K = k
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks every field that has a fixed set of values or a range.
// Dataset paths are checked only when set.
func (c *Config) Validate() error {
	var errs []error

	if c.K < 1 {
		errs = append(errs, fmt.Errorf("k must be at least 1, got %d", c.K))
	}
	if !contains(rank.ValidMetrics, c.Metric) {
		errs = append(errs, fmt.Errorf("invalid metric: %s (valid: %v)", c.Metric, rank.ValidMetrics))
	}
	if !contains(spread.ValidModels, c.Model) {
		errs = append(errs, fmt.Errorf("invalid model: %s (valid: %v)", c.Model, spread.ValidModels))
	}
	if _, err := spread.ParseStrategy(c.ThresholdStrategy); err != nil {
		errs = append(errs, err)
	}
	if _, err := yeargraph.ParseWeighting(c.Weights); err != nil {
		errs = append(errs, err)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity_threshold must be in (0, 1], got %v", c.SimilarityThreshold))
	}
	if _, err := report.ParseMode(c.TraceOutput); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateDataset(c.DS1Path); err != nil {
		errs = append(errs, fmt.Errorf("ds1_path: %w", err))
	}
	if err := ValidateDataset(c.DS2Path); err != nil {
		errs = append(errs, fmt.Errorf("ds2_path: %w", err))
	}

	return errors.Join(errs...)
}

// ValidateDataset checks that a dataset path exists and is a regular file.
func ValidateDataset(path string) error {
	if path == "" {
		return nil // Empty is allowed (not yet configured)
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("file does not exist: %s", expandedPath)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", expandedPath)
	}

	return nil
}

// ResolveOutputDir returns the output directory as an absolute path, resolving
// a relative one against the project root.
func (c *Config) ResolveOutputDir(root string) string {
	dir := ExpandPath(c.OutputDir)
	if dir == "" {
		dir = "output"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// Get returns the string form of a field by its YAML key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "ds1_path":
		return c.DS1Path, nil
	case "ds2_path":
		return c.DS2Path, nil
	case "k":
		return strconv.Itoa(c.K), nil
	case "metric":
		return c.Metric, nil
	case "model":
		return c.Model, nil
	case "threshold_strategy":
		return c.ThresholdStrategy, nil
	case "weights":
		return c.Weights, nil
	case "similarity_threshold":
		return strconv.FormatFloat(c.SimilarityThreshold, 'f', -1, 64), nil
	case "merge":
		return strconv.FormatBool(c.Merge), nil
	case "trace_output":
		return c.TraceOutput, nil
	case "output_dir":
		return c.OutputDir, nil
	case "seed":
		return strconv.FormatUint(c.Seed, 10), nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}
}

// Set parses value into the field named by its YAML key.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "ds1_path":
		c.DS1Path = value
	case "ds2_path":
		c.DS2Path = value
	case "k":
		c.K, err = strconv.Atoi(value)
	case "metric":
		c.Metric = value
	case "model":
		c.Model = value
	case "threshold_strategy":
		c.ThresholdStrategy = value
	case "weights":
		c.Weights = value
	case "similarity_threshold":
		c.SimilarityThreshold, err = strconv.ParseFloat(value, 64)
	case "merge":
		c.Merge, err = strconv.ParseBool(value)
	case "trace_output":
		c.TraceOutput = value
	case "output_dir":
		c.OutputDir = value
	case "seed":
		c.Seed, err = strconv.ParseUint(value, 10, 64)
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", key, value)
	}
	return nil
}

// Keys lists the config keys in file order.
var Keys = []string{
	"ds1_path", "ds2_path", "k", "metric", "model", "threshold_strategy", "weights",
	"similarity_threshold", "merge", "trace_output", "output_dir", "seed", "log_level",
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
