package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppDir and FileName locate the config file under the user config home.
const (
	AppDir   = "citegraph"
	FileName = "config.yml"
)

// FileConfig is the content of the config file. A nil field is absent from
// the file, so an explicit zero still overrides the default.
type FileConfig struct {
	Email              *string  `yaml:"email"`
	APIKey             *string  `yaml:"api_key"`
	PerPage            *int     `yaml:"per_page"`
	MaxRetries         *int     `yaml:"max_retries"`
	RetryBackoffFactor *float64 `yaml:"retry_backoff_factor"`
	RetryHTTPCodes     []int    `yaml:"retry_http_codes"`
}

// apply copies the settings present in the file onto c.
func (f *FileConfig) apply(c *Config) {
	setIf(&c.Email, f.Email)
	setIf(&c.APIKey, f.APIKey)
	setIf(&c.PerPage, f.PerPage)
	setIf(&c.MaxRetries, f.MaxRetries)
	setIf(&c.RetryBackoffFactor, f.RetryBackoffFactor)
	if f.RetryHTTPCodes != nil {
		c.RetryHTTPCodes = append([]int{}, f.RetryHTTPCodes...)
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// fileCache holds the last file loaded and the path it came from.
var fileCache struct {
	path string
	cfg  *FileConfig
}

// FilePath returns $XDG_CONFIG_HOME/citegraph/config.yml, with
// XDG_CONFIG_HOME defaulting to ~/.config. It is empty when neither is known.
func FilePath() string {
	home := os.Getenv("XDG_CONFIG_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		home = filepath.Join(userHome, ".config")
	}
	return filepath.Join(home, AppDir, FileName)
}

// LoadFile reads the config file. Settings absent from the file stay nil, and
// a missing file yields an empty FileConfig. Unknown keys are rejected so typos do
// not go unnoticed.
func LoadFile() (*FileConfig, error) {
	path := FilePath()
	if path == "" {
		return &FileConfig{}, nil
	}
	if fileCache.cfg != nil && fileCache.path == path {
		return fileCache.cfg, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	var cfg FileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	fileCache.path, fileCache.cfg = path, &cfg
	return &cfg, nil
}

// ResetFileCache forgets the loaded config file.
func ResetFileCache() {
	fileCache.path, fileCache.cfg = "", nil
}
