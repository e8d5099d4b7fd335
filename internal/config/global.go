package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds user-wide fallbacks stored in ~/.config/topictrace/config.yml.
// They fill fields a project leaves empty.
type GlobalConfig struct {
	DS1Path   string `yaml:"ds1_path,omitempty"`
	DS2Path   string `yaml:"ds2_path,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "topictrace"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/topictrace/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.DS1Path = ExpandPath(cfg.DS1Path)
	cfg.DS2Path = ExpandPath(cfg.DS2Path)
	cfg.OutputDir = ExpandPath(cfg.OutputDir)

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Resolve loads the project config at root, fills empty fields from the global
// config, then applies environment overrides. The result is not validated.
func Resolve(root string) (*Config, error) {
	cfg, err := Load(root)
	if err != nil {
		return nil, err
	}

	global, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DS1Path == "" {
		cfg.DS1Path = global.DS1Path
	}
	if cfg.DS2Path == "" {
		cfg.DS2Path = global.DS2Path
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = global.OutputDir
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
