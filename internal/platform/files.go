package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

// AppName names the per-user directories the app creates
const AppName = "ytdl-mini"

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// Containers yt-dlp may leave behind for the same title
var (
	MediaExtensions = []string{".mp4", ".webm", ".mkv", ".m4a", ".3gp"}
)

// File extensions to skip
var (
	SkippedExtensions = []string{".part", ".ytdl"}
)

// formatSuffix matches the per-format intermediate suffix, e.g. "Title.f137"
var formatSuffix = regexp.MustCompile(`\.f[0-9]+(-[0-9]+)?$`)

// ErrFileNotFound is returned when no file matches a reported download path
var ErrFileNotFound = errors.New("file not found")

// OpenFileInManager opens the file in the system file manager and highlights it
func OpenFileInManager(filePath string) error {
	foundPath, err := FindFileWithFallback(filePath)
	if err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}

	absPath, err := filepath.Abs(foundPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam, absPath).Run()
	case OSLinux:
		return openFileInManagerLinux(absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openFileInManagerLinux opens directory containing file on Linux.
// File selection is not standardized on Linux, so the parent directory is opened.
func openFileInManagerLinux(filePath string) error {
	dir := filepath.Dir(filePath)

	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}

	return fmt.Errorf("no suitable file manager found")
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("directory path is empty")
	}
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// DefaultDownloadDir returns ~/Downloads/ytdl-mini, or a relative
// "downloads" directory when the home directory cannot be determined
func DefaultDownloadDir() string {
	dir, err := GetHomeDownloadsDir()
	if err != nil {
		return "downloads"
	}
	return filepath.Join(dir, AppName)
}

// ConfigDir returns the per-user configuration directory of the app
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// FindFileWithFallback resolves a path reported by yt-dlp to a file on disk.
// Intermediate names such as "Title.f137.webm" resolve to the merged "Title.mp4",
// and a container the merger replaced resolves to any sibling media file with the
// same base name.
func FindFileWithFallback(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path is empty")
	}

	if strings.HasPrefix(filePath, "http") {
		return "", fmt.Errorf("file path appears to be a URL: %s", filePath)
	}

	if !strings.ContainsAny(filePath, `/\`) {
		return "", fmt.Errorf("file path does not contain path separators: %s", filePath)
	}

	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}

	dir := filepath.Dir(filePath)
	name := filepath.Base(filePath)
	baseName := formatSuffix.ReplaceAllString(strings.TrimSuffix(name, filepath.Ext(name)), "")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || isSkippedFile(entry.Name()) {
			continue
		}

		entryExt := filepath.Ext(entry.Name())
		if !isMediaExtension(entryExt) {
			continue
		}
		if strings.TrimSuffix(entry.Name(), entryExt) == baseName {
			candidates = append(candidates, filepath.Join(dir, entry.Name()))
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}

	// prefer the merge output container
	sort.SliceStable(candidates, func(i, j int) bool {
		return rankExtension(filepath.Ext(candidates[i])) < rankExtension(filepath.Ext(candidates[j]))
	})
	return candidates[0], nil
}

func isSkippedFile(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func isMediaExtension(ext string) bool {
	return rankExtension(ext) < len(MediaExtensions)
}

func rankExtension(ext string) int {
	ext = strings.ToLower(ext)
	for i, known := range MediaExtensions {
		if ext == known {
			return i
		}
	}
	return len(MediaExtensions)
}
