package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/ytget/ytdl-mini/internal/platform"
	"gopkg.in/yaml.v3"
)

const (
	envVarPrefix   = "YTDL"
	configFileName = "config.yaml"
)

// Default values
const (
	DefaultResolution             = "1920x1080"
	DefaultMaxConcurrentDownloads = 3
	MinConcurrentDownloads        = 1
	MaxConcurrentDownloads        = 10
)

// ResolutionOptions are the resolutions offered by the settings dialog
var ResolutionOptions = []string{
	"3840x2160",
	"2560x1440",
	"1920x1080",
	"1280x720",
	"854x480",
	"640x360",
}

// ErrInvalidSettings is returned by Validate
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the persisted application configuration
type Settings struct {
	DefaultResolution      string `envconfig:"DEFAULT_RESOLUTION"       yaml:"default_resolution"       json:"default_resolution"`
	DownloadPath           string `envconfig:"DOWNLOAD_PATH"            yaml:"download_path"            json:"download_path"`
	MaxConcurrentDownloads int    `envconfig:"MAX_CONCURRENT_DOWNLOADS" yaml:"max_concurrent_downloads" json:"max_concurrent_downloads"`
}

// Default returns the settings used when nothing has been configured
func Default() Settings {
	return Settings{
		DefaultResolution:      DefaultResolution,
		DownloadPath:           platform.DefaultDownloadDir(),
		MaxConcurrentDownloads: DefaultMaxConcurrentDownloads,
	}
}

// DefaultPath returns the location of the settings file
func DefaultPath() (string, error) {
	dir, err := platform.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads settings from path. A missing file yields the defaults. An
// unparsable file yields the defaults together with the parse error so the
// caller can log it and carry on.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Default(), fmt.Errorf("unmarshaling settings file %s: %w", path, err)
	}

	return s.Normalize(), nil
}

// ApplyEnv overrides fields from YTDL_DEFAULT_RESOLUTION, YTDL_DOWNLOAD_PATH and
// YTDL_MAX_CONCURRENT_DOWNLOADS when they are set
func ApplyEnv(s *Settings) error {
	if err := envconfig.Process(envVarPrefix, s); err != nil {
		return fmt.Errorf("parsing environment variables: %w", err)
	}
	*s = s.Normalize()
	return nil
}

// Save writes the settings to path, creating its directory
func Save(path string, s Settings) error {
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+configFileName+".*")
	if err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing settings file: %w", err)
	}
	return nil
}

// Normalize fills empty fields with defaults and clamps the concurrency limit
func (s Settings) Normalize() Settings {
	s.DefaultResolution = strings.TrimSpace(s.DefaultResolution)
	if _, ok := ParseResolution(s.DefaultResolution); !ok {
		s.DefaultResolution = DefaultResolution
	}

	s.DownloadPath = strings.TrimSpace(s.DownloadPath)
	if s.DownloadPath == "" {
		s.DownloadPath = platform.DefaultDownloadDir()
	}

	s.MaxConcurrentDownloads = ClampConcurrent(s.MaxConcurrentDownloads)
	return s
}

// Validate reports the first invalid field
func (s Settings) Validate() error {
	if _, ok := ParseResolution(s.DefaultResolution); !ok {
		return fmt.Errorf("%w: resolution %q must look like 1920x1080", ErrInvalidSettings, s.DefaultResolution)
	}
	if strings.TrimSpace(s.DownloadPath) == "" {
		return fmt.Errorf("%w: download path is empty", ErrInvalidSettings)
	}
	if s.MaxConcurrentDownloads < MinConcurrentDownloads || s.MaxConcurrentDownloads > MaxConcurrentDownloads {
		return fmt.Errorf("%w: max concurrent downloads must be between %d and %d",
			ErrInvalidSettings, MinConcurrentDownloads, MaxConcurrentDownloads)
	}
	return nil
}

// Height returns the vertical component of the default resolution
func (s Settings) Height() int {
	if h, ok := ParseResolution(s.DefaultResolution); ok {
		return h
	}
	h, _ := ParseResolution(DefaultResolution)
	return h
}

// ParseResolution parses "WIDTHxHEIGHT" and returns the height
func ParseResolution(resolution string) (int, bool) {
	w, h, ok := strings.Cut(resolution, "x")
	if !ok {
		return 0, false
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, false
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, false
	}
	return height, true
}

// ClampConcurrent bounds a concurrency limit to the supported range
func ClampConcurrent(n int) int {
	if n < MinConcurrentDownloads {
		return MinConcurrentDownloads
	}
	if n > MaxConcurrentDownloads {
		return MaxConcurrentDownloads
	}
	return n
}
