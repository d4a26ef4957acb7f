package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.DefaultResolution != "1920x1080" {
		t.Errorf("Expected default resolution 1920x1080, got %s", s.DefaultResolution)
	}
	if s.MaxConcurrentDownloads != 3 {
		t.Errorf("Expected default max concurrent 3, got %d", s.MaxConcurrentDownloads)
	}
	if filepath.Base(s.DownloadPath) != "ytdl-mini" {
		t.Errorf("Expected download path to end with ytdl-mini, got %s", s.DownloadPath)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Defaults must be valid: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if s != Default() {
		t.Errorf("Expected defaults, got %+v", s)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected func(Settings) Settings
		wantErr  bool
	}{
		{
			name: "full",
			content: "default_resolution: 1280x720\n" +
				"download_path: /media/videos\n" +
				"max_concurrent_downloads: 5\n",
			expected: func(s Settings) Settings {
				return Settings{DefaultResolution: "1280x720", DownloadPath: "/media/videos", MaxConcurrentDownloads: 5}
			},
		},
		{
			name:    "partial keeps defaults",
			content: "max_concurrent_downloads: 2\n",
			expected: func(s Settings) Settings {
				s.MaxConcurrentDownloads = 2
				return s
			},
		},
		{
			name:    "clamped",
			content: "max_concurrent_downloads: 50\ndefault_resolution: huge\n",
			expected: func(s Settings) Settings {
				s.MaxConcurrentDownloads = 10
				return s
			},
		},
		{
			name:     "empty file",
			content:  "",
			expected: func(s Settings) Settings { return s },
		},
		{
			name:     "unparsable",
			content:  "max_concurrent_downloads: [\n",
			expected: func(s Settings) Settings { return s },
			wantErr:  true,
		},
		{
			name:     "unknown field",
			content:  "theme: dark\n",
			expected: func(s Settings) Settings { return s },
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			s, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if expected := tt.expected(Default()); s != expected {
				t.Errorf("Load() = %+v, expected %+v", s, expected)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s := Settings{DefaultResolution: "854x480", DownloadPath: "/srv/dl", MaxConcurrentDownloads: 7}

	if err := Save(path, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "max_concurrent_downloads: 7") {
		t.Errorf("Unexpected file content:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != s {
		t.Errorf("Expected %+v, got %+v", s, loaded)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the settings file, got %d entries", len(entries))
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("YTDL_DEFAULT_RESOLUTION", "1280x720")
	t.Setenv("YTDL_MAX_CONCURRENT_DOWNLOADS", "4")

	s := Settings{DefaultResolution: "1920x1080", DownloadPath: "/from/file", MaxConcurrentDownloads: 2}
	if err := ApplyEnv(&s); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	expected := Settings{DefaultResolution: "1280x720", DownloadPath: "/from/file", MaxConcurrentDownloads: 4}
	if s != expected {
		t.Errorf("Expected %+v, got %+v", expected, s)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("YTDL_MAX_CONCURRENT_DOWNLOADS", "many")

	s := Default()
	if err := ApplyEnv(&s); err == nil {
		t.Error("Expected error for non-numeric value")
	}
}

func TestValidate(t *testing.T) {
	valid := Settings{DefaultResolution: "1920x1080", DownloadPath: "/dl", MaxConcurrentDownloads: 3}

	tests := []struct {
		name   string
		modify func(*Settings)
		ok     bool
	}{
		{"valid", func(*Settings) {}, true},
		{"bad resolution", func(s *Settings) { s.DefaultResolution = "1080p" }, false},
		{"zero height", func(s *Settings) { s.DefaultResolution = "1920x0" }, false},
		{"empty path", func(s *Settings) { s.DownloadPath = "  " }, false},
		{"zero concurrent", func(s *Settings) { s.MaxConcurrentDownloads = 0 }, false},
		{"too many concurrent", func(s *Settings) { s.MaxConcurrentDownloads = 11 }, false},
		{"upper bound", func(s *Settings) { s.MaxConcurrentDownloads = 10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.modify(&s)
			err := s.Validate()
			if tt.ok && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestHeight(t *testing.T) {
	tests := []struct {
		resolution string
		expected   int
	}{
		{"1920x1080", 1080},
		{"1280x720", 720},
		{"garbage", 1080},
	}

	for _, tt := range tests {
		s := Settings{DefaultResolution: tt.resolution}
		if got := s.Height(); got != tt.expected {
			t.Errorf("Height() for %q = %d, expected %d", tt.resolution, got, tt.expected)
		}
	}
}

func TestClampConcurrent(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{5, 5},
		{10, 10},
		{11, 10},
	}

	for _, tt := range tests {
		if got := ClampConcurrent(tt.in); got != tt.expected {
			t.Errorf("ClampConcurrent(%d) = %d, expected %d", tt.in, got, tt.expected)
		}
	}
}
