package ytdlp

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseHeight(t *testing.T) {
	tests := []struct {
		resolution string
		expected   int
	}{
		{"1920x1080", 1080},
		{"1280x720", 720},
		{"3840X2160", 2160},
		{" 640 x 360 ", 360},
		{"1080", DefaultHeight},
		{"", DefaultHeight},
		{"1920xabc", DefaultHeight},
		{"1920x0", DefaultHeight},
		{"1920x-5", DefaultHeight},
	}

	for _, tt := range tests {
		t.Run(tt.resolution, func(t *testing.T) {
			if got := ParseHeight(tt.resolution); got != tt.expected {
				t.Errorf("ParseHeight(%q) = %d, expected %d", tt.resolution, got, tt.expected)
			}
		})
	}
}

func TestFormatSelector(t *testing.T) {
	expected := "bestvideo[height<=720]+bestaudio/best[height<=720]"
	if got := FormatSelector(720); got != expected {
		t.Errorf("FormatSelector(720) = %q, expected %q", got, expected)
	}
}

func TestMetadataArgs(t *testing.T) {
	expected := []string{"--dump-json", "--no-download", "--no-playlist", "https://youtu.be/abc123"}
	if got := MetadataArgs("https://youtu.be/abc123"); !reflect.DeepEqual(got, expected) {
		t.Errorf("MetadataArgs() = %v, expected %v", got, expected)
	}
}

func TestFormatsArgs(t *testing.T) {
	expected := []string{"--list-formats", "--no-playlist", "https://youtu.be/abc123"}
	if got := FormatsArgs("https://youtu.be/abc123"); !reflect.DeepEqual(got, expected) {
		t.Errorf("FormatsArgs() = %v, expected %v", got, expected)
	}
}

func TestDownloadArgs(t *testing.T) {
	dir := filepath.Join("home", "me", "Downloads")
	got := DownloadArgs("https://youtu.be/abc123", dir, 1080)

	expected := []string{
		"--format", "bestvideo[height<=1080]+bestaudio/best[height<=1080]",
		"--merge-output-format", "mp4",
		"--output", filepath.Join(dir, "%(title)s.%(ext)s"),
		"--no-playlist",
		"--newline",
		"--progress",
		"--print", "after_move:[ytdl-mini] file:%(filepath)s",
		"https://youtu.be/abc123",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("DownloadArgs() =\n%v\nexpected\n%v", got, expected)
	}
}
