package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProject creates a temporary project root with a .topictrace directory.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(ProjectPath(root), 0755))
	return root
}

func TestPathFunctions(t *testing.T) {
	root := "/test/proj"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"ProjectPath", ProjectPath, "/test/proj/.topictrace"},
		{"ConfigPath", ConfigPath, "/test/proj/.topictrace/config.yml"},
		{"CachePath", CachePath, "/test/proj/.topictrace/cache"},
		{"DBPath", DBPath, "/test/proj/.topictrace/cache/records.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(root))
		})
	}
}

func TestIsProject(t *testing.T) {
	tmpDir := t.TempDir()
	assert.False(t, IsProject(tmpDir))

	require.NoError(t, os.Mkdir(ProjectPath(tmpDir), 0755))
	assert.True(t, IsProject(tmpDir))
}

func TestIsProject_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(ProjectPath(tmpDir), []byte("not a dir"), 0644))
	assert.False(t, IsProject(tmpDir))
}

func TestFindProject(t *testing.T) {
	t.Setenv(EnvRoot, "")
	tmpDir := t.TempDir()
	projDir := filepath.Join(tmpDir, "proj")
	nestedDir := filepath.Join(projDir, "data", "raw")

	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.Mkdir(ProjectPath(projDir), 0755))

	found, err := FindProject(nestedDir)
	require.NoError(t, err)
	assert.Equal(t, projDir, found)

	found, err = FindProject(projDir)
	require.NoError(t, err)
	assert.Equal(t, projDir, found)
}

func TestFindProject_NotFound(t *testing.T) {
	t.Setenv(EnvRoot, "")
	_, err := FindProject(t.TempDir())
	require.ErrorIs(t, err, ErrNotProject)
}

func TestFindProject_EnvRoot(t *testing.T) {
	root := newProject(t)
	t.Setenv(EnvRoot, root)

	found, err := FindProject(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, root, found)

	t.Setenv(EnvRoot, t.TempDir())
	_, err = FindProject(".")
	require.ErrorIs(t, err, ErrNotProject)
}

func TestConfig_SaveAndLoad(t *testing.T) {
	root := newProject(t)

	cfg := Default()
	cfg.DS1Path = "/data/ds-1.tsv"
	cfg.K = 10
	cfg.Merge = false
	cfg.Seed = 42
	require.NoError(t, cfg.Save(root))

	loaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	root := newProject(t)
	require.NoError(t, os.WriteFile(ConfigPath(root), []byte("k: 7\nmetric: degree\n"), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.K)
	assert.Equal(t, "degree", cfg.Metric)
	assert.Equal(t, Default().Model, cfg.Model)
	assert.True(t, cfg.Merge)
	assert.InDelta(t, 0.5, cfg.SimilarityThreshold, 1e-9)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(newProject(t))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	root := newProject(t)
	require.NoError(t, os.WriteFile(ConfigPath(root), []byte("k: [unclosed"), 0644))

	_, err := Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero k", func(c *Config) { c.K = 0 }, "k must be at least 1"},
		{"bad metric", func(c *Config) { c.Metric = "eigenvector" }, "invalid metric"},
		{"bad model", func(c *Config) { c.Model = "sir" }, "invalid model"},
		{"bad strategy", func(c *Config) { c.ThresholdStrategy = "third" }, "unknown threshold strategy"},
		{"bad weights", func(c *Config) { c.Weights = "log" }, "invalid weighting"},
		{"zero threshold", func(c *Config) { c.SimilarityThreshold = 0 }, "similarity_threshold"},
		{"threshold above one", func(c *Config) { c.SimilarityThreshold = 1.5 }, "similarity_threshold"},
		{"bad output", func(c *Config) { c.TraceOutput = "print" }, "invalid output mode"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"missing dataset", func(c *Config) { c.DS1Path = "/nonexistent/ds-1.tsv" }, "ds1_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.K = -1
	cfg.Metric = "nope"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "k must be at least 1")
	assert.Contains(t, err.Error(), "invalid metric")
}

func TestValidateDataset(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "ds-1.tsv")
	require.NoError(t, os.WriteFile(tmpFile, []byte("2000\ta\tb\t{}\n"), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", false},
		{"valid file", tmpFile, false},
		{"non-existent path", "/nonexistent/ds-1.tsv", true},
		{"directory", tmpDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataset(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDS1, "/env/ds-1.tsv")
	t.Setenv(EnvDS2, "/env/ds-2.tsv")
	t.Setenv(EnvK, "12")
	t.Setenv(EnvLogLevel, "debug")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "/env/ds-1.tsv", cfg.DS1Path)
	assert.Equal(t, "/env/ds-2.tsv", cfg.DS2Path)
	assert.Equal(t, 12, cfg.K)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnv_BadK(t *testing.T) {
	t.Setenv(EnvK, "five")
	err := Default().ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvK)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	for _, key := range Keys {
		t.Run(key, func(t *testing.T) {
			v, err := cfg.Get(key)
			require.NoError(t, err)
			require.NoError(t, cfg.Set(key, v), "value %q must round trip", v)
		})
	}
	assert.Equal(t, Default(), cfg)

	require.NoError(t, cfg.Set("similarity_threshold", "0.75"))
	assert.InDelta(t, 0.75, cfg.SimilarityThreshold, 1e-9)

	require.Error(t, cfg.Set("merge", "maybe"))
	require.Error(t, cfg.Set("k", "1.5"))
	_, err := cfg.Get("pdf_root")
	require.Error(t, err)
}

func TestResolveOutputDir(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/proj/output", cfg.ResolveOutputDir("/proj"))

	cfg.OutputDir = "/var/tt"
	assert.Equal(t, "/var/tt", cfg.ResolveOutputDir("/proj"))
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"", "debug", "INFO", "warn", "error"} {
		_, err := ParseLevel(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger("warn", &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Int("year", 2004).Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "year=2004")
}
