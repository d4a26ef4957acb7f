package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ytget/ytdl-mini/internal/model"
	"github.com/ytget/ytdl-mini/internal/platform"
)

// DefaultInstallCommands are tried in order when yt-dlp is not on PATH
var DefaultInstallCommands = [][]string{
	{"python3", "-m", "pip", "install", "--user", "yt-dlp"},
	{"pip", "install", "yt-dlp"},
}

// ProgressFunc receives the completed fraction of a download in [0, 1]
type ProgressFunc func(progress float64)

// Tool is a handle on the yt-dlp executable.
// The resolved path is written once; afterwards a Tool is safe for concurrent use.
type Tool struct {
	runner   Runner
	lookPath func(file string) (string, error)
	install  [][]string
	logger   *slog.Logger

	initMu sync.Mutex
	path   atomic.Pointer[string]
}

// Option configures a Tool
type Option func(*Tool)

// WithRunner replaces the process runner
func WithRunner(r Runner) Option {
	return func(t *Tool) { t.runner = r }
}

// WithLookPath replaces the PATH lookup used by Initialize
func WithLookPath(fn func(file string) (string, error)) Option {
	return func(t *Tool) { t.lookPath = fn }
}

// WithInstallCommands replaces the install commands; nil disables installing
func WithInstallCommands(cmds [][]string) Option {
	return func(t *Tool) { t.install = cmds }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(t *Tool) { t.logger = l }
}

// WithPath uses an explicit executable and skips discovery
func WithPath(path string) Option {
	return func(t *Tool) {
		if path != "" {
			t.path.Store(&path)
		}
	}
}

// New creates a Tool. Call Initialize before invoking it unless WithPath was given.
func New(opts ...Option) *Tool {
	t := &Tool{
		runner:   ExecRunner{},
		lookPath: exec.LookPath,
		install:  DefaultInstallCommands,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "ytdlp")
	return t
}

// Initialize locates yt-dlp on PATH, installing it when missing.
// Once a path has been resolved further calls return immediately.
func (t *Tool) Initialize(ctx context.Context) error {
	if t.IsAvailable() {
		return nil
	}

	t.initMu.Lock()
	defer t.initMu.Unlock()

	if t.IsAvailable() {
		return nil
	}

	if path, err := t.lookPath(ExecutableName); err == nil {
		t.path.Store(&path)
		return nil
	}

	t.logger.Info("yt-dlp not found on PATH, installing")
	if err := t.installTool(ctx); err != nil {
		return &Error{Op: OpInitialize, Kind: ErrToolUnavailable, Detail: err.Error(), Err: err}
	}

	path, err := t.lookPath(ExecutableName)
	if err != nil {
		return &Error{Op: OpInitialize, Kind: ErrToolUnavailable, Detail: "yt-dlp still not found after install", Err: err}
	}
	t.path.Store(&path)
	t.logger.Info("yt-dlp installed", "path", path)
	return nil
}

func (t *Tool) installTool(ctx context.Context) error {
	if len(t.install) == 0 {
		return errors.New("no install command configured")
	}

	var errs []error
	for _, cmd := range t.install {
		if len(cmd) == 0 {
			continue
		}
		res, err := t.runner.Run(ctx, cmd[0], cmd[1:], nil)
		if err == nil && res.ExitCode == 0 {
			return nil
		}
		if err == nil {
			err = fmt.Errorf("exit status %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		t.logger.Warn("install command failed", "cmd", strings.Join(cmd, " "), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", cmd[0], err))
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("failed to install yt-dlp: %w", errors.Join(errs...))
}

// IsAvailable reports whether an executable path has been resolved
func (t *Tool) IsAvailable() bool {
	return t.path.Load() != nil
}

// Path returns the resolved executable path, or "" before initialization
func (t *Tool) Path() string {
	if p := t.path.Load(); p != nil {
		return *p
	}
	return ""
}

// Version returns the output of yt-dlp --version
func (t *Tool) Version(ctx context.Context) (string, error) {
	path := t.Path()
	if path == "" {
		return "", unavailable(OpVersion)
	}

	var version string
	res, err := t.runner.Run(ctx, path, []string{FlagVersion}, func(line string) {
		if version == "" {
			version = strings.TrimSpace(line)
		}
	})
	if err != nil || res.ExitCode != 0 {
		return "", failed(OpVersion, ErrToolUnavailable, res, err)
	}
	return version, nil
}

// GetMetadata reads the metadata of url without downloading it
func (t *Tool) GetMetadata(ctx context.Context, url string) (*model.VideoMetadata, error) {
	path := t.Path()
	if path == "" {
		return nil, unavailable(OpMetadata)
	}

	var out strings.Builder
	res, err := t.runner.Run(ctx, path, MetadataArgs(url), func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	})
	if err != nil || res.ExitCode != 0 {
		return nil, failed(OpMetadata, ErrMetadataFetchFailed, res, err)
	}

	meta, err := ParseMetadata([]byte(out.String()))
	if err != nil {
		return nil, &Error{Op: OpMetadata, Kind: ErrMetadataFetchFailed, Detail: err.Error(), Err: err}
	}
	return meta, nil
}

// GetFormats lists the media formats available for url
func (t *Tool) GetFormats(ctx context.Context, url string) ([]string, error) {
	path := t.Path()
	if path == "" {
		return nil, unavailable(OpFormats)
	}

	var out strings.Builder
	res, err := t.runner.Run(ctx, path, FormatsArgs(url), func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	})
	if err != nil || res.ExitCode != 0 {
		return nil, failed(OpFormats, ErrFormatsFailed, res, err)
	}
	return FilterFormats(out.String()), nil
}

// Download fetches url into outputDir, capping the video height by resolution
// ("WIDTHxHEIGHT"). progress may be nil.
func (t *Tool) Download(ctx context.Context, url, outputDir, resolution string, progress ProgressFunc) (*DownloadResult, error) {
	path := t.Path()
	if path == "" {
		return nil, unavailable(OpDownload)
	}

	if err := platform.CreateDirectoryIfNotExists(outputDir); err != nil {
		err = fmt.Errorf("failed to create output directory: %w", err)
		return nil, &Error{Op: OpDownload, Kind: ErrDownloadFailed, Detail: err.Error(), Err: err}
	}

	var tracker outputTracker
	args := DownloadArgs(url, outputDir, ParseHeight(resolution))
	res, err := t.runner.Run(ctx, path, args, func(line string) {
		if p, ok := tracker.observe(line); ok && progress != nil {
			progress(p)
		}
	})
	if err != nil || res.ExitCode != 0 {
		return nil, failed(OpDownload, ErrDownloadFailed, res, err)
	}

	result := tracker.result()
	t.logger.Debug("download finished", "url", url, "file", result.FilePath, "known", result.Known())
	return result, nil
}
