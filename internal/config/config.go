package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Marker persistence modes.
const (
	ReportsNone     = "none"
	ReportsFailures = "failures"
	ReportsAll      = "all"
)

// Marker store backends.
const (
	StoreFiles  = "files"
	StoreSQLite = "sqlite"
)

// API configures the remote conversion service endpoint and polling cadence.
type API struct {
	URL          string   `toml:"url"`
	HTTPTimeout  Duration `toml:"http_timeout"`
	PollInterval Duration `toml:"poll_interval"`
	// PollStep is added per attempt when a status check fails transiently.
	PollStep Duration `toml:"poll_step"`
}

// Convert configures input discovery and batch execution.
type Convert struct {
	Inputs           []string `toml:"inputs"`
	Effect           string   `toml:"effect"`
	MediaType        string   `toml:"media_type"`
	OutputDir        string   `toml:"output_dir"`
	Recursive        bool     `toml:"recursive"`
	FileMasks        []string `toml:"file_masks"`
	Parallelism      int      `toml:"parallelism"`
	Timeout          Duration `toml:"timeout"`
	ConfirmOverwrite bool     `toml:"confirm_overwrite"`
	Silent           bool     `toml:"silent"`
}

// Markers configures the durable per-file progress records.
type Markers struct {
	Reports    string `toml:"reports"`
	Store      string `toml:"store"`
	SQLitePath string `toml:"sqlite_path"`
}

// Paths contains directories owned by deepart itself.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for deepart.
type Config struct {
	API     API     `toml:"api"`
	Convert Convert `toml:"convert"`
	Markers Markers `toml:"markers"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/deepart/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has env overrides applied and all path fields expanded. A missing
// file is not an error: defaults are used and exists is false.
func Load(path string) (cfg *Config, resolvedPath string, exists bool, err error) {
	loaded := Default()

	resolvedPath, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&loaded); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := loaded.applyEnv(); err != nil {
		return nil, "", false, err
	}
	if err := loaded.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, "", false, err
	}
	return &loaded, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("deepart.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and the sqlite parent directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if c.Markers.Store == StoreSQLite && c.Markers.SQLitePath != "" {
		dirs = append(dirs, filepath.Dir(c.Markers.SQLitePath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the file used to prevent two batch runs sharing the same state.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "deepart.lock")
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is left untouched unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
