package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestTool_UnresolvedPathSpawnsNothing(t *testing.T) {
	runner := &fakeRunner{}
	tool := New(WithRunner(runner))
	ctx := context.Background()

	if tool.IsAvailable() {
		t.Fatal("Expected tool to be unavailable before Initialize")
	}

	if _, err := tool.Download(ctx, "https://youtu.be/abc123", t.TempDir(), "1920x1080", nil); !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("Download: expected ErrToolUnavailable, got %v", err)
	}
	if _, err := tool.GetMetadata(ctx, "https://youtu.be/abc123"); !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("GetMetadata: expected ErrToolUnavailable, got %v", err)
	}
	if _, err := tool.GetFormats(ctx, "https://youtu.be/abc123"); !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("GetFormats: expected ErrToolUnavailable, got %v", err)
	}
	if _, err := tool.Version(ctx); !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("Version: expected ErrToolUnavailable, got %v", err)
	}

	if n := runner.callCount(); n != 0 {
		t.Errorf("Expected no processes to be spawned, got %d", n)
	}
}

func TestTool_InitializeFromPath(t *testing.T) {
	var lookups int32
	runner := &fakeRunner{}
	tool := New(
		WithRunner(runner),
		WithLookPath(func(file string) (string, error) {
			atomic.AddInt32(&lookups, 1)
			if file != ExecutableName {
				t.Errorf("Unexpected lookup of %q", file)
			}
			return "/opt/bin/yt-dlp", nil
		}),
	)

	if err := tool.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := tool.Initialize(context.Background()); err != nil {
		t.Fatalf("Second Initialize failed: %v", err)
	}

	if tool.Path() != "/opt/bin/yt-dlp" {
		t.Errorf("Expected resolved path, got %q", tool.Path())
	}
	if lookups != 1 {
		t.Errorf("Expected a single lookup, got %d", lookups)
	}
	if runner.callCount() != 0 {
		t.Errorf("Expected no install commands, got %d", runner.callCount())
	}
}

func TestTool_InitializeConcurrent(t *testing.T) {
	var lookups int32
	tool := New(
		WithRunner(&fakeRunner{}),
		WithLookPath(func(string) (string, error) {
			atomic.AddInt32(&lookups, 1)
			return "/opt/bin/yt-dlp", nil
		}),
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tool.Initialize(context.Background()); err != nil {
				t.Errorf("Initialize failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if lookups != 1 {
		t.Errorf("Expected a single lookup, got %d", lookups)
	}
}

func TestTool_InitializeInstalls(t *testing.T) {
	var installed atomic.Bool
	runner := &fakeRunner{
		handle: func(name string, args []string, _ LineFunc) (Result, error) {
			if name == "python3" {
				return Result{ExitCode: 1, Stderr: "No module named pip"}, nil
			}
			installed.Store(true)
			return Result{}, nil
		},
	}
	tool := New(
		WithRunner(runner),
		WithLookPath(func(string) (string, error) {
			if installed.Load() {
				return "/home/me/.local/bin/yt-dlp", nil
			}
			return "", errors.New("not found")
		}),
	)

	if err := tool.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if tool.Path() != "/home/me/.local/bin/yt-dlp" {
		t.Errorf("Unexpected path %q", tool.Path())
	}

	expected := []fakeCall{
		{name: "python3", args: []string{"-m", "pip", "install", "--user", "yt-dlp"}},
		{name: "pip", args: []string{"install", "yt-dlp"}},
	}
	if !reflect.DeepEqual(runner.calls, expected) {
		t.Errorf("Unexpected install calls %+v", runner.calls)
	}
}

func TestTool_InitializeFails(t *testing.T) {
	tests := []struct {
		name    string
		install [][]string
		handle  func(string, []string, LineFunc) (Result, error)
	}{
		{
			name:    "install commands fail",
			install: DefaultInstallCommands,
			handle:  emit("", Result{ExitCode: 1, Stderr: "error"}),
		},
		{
			name:    "install succeeds but binary still missing",
			install: DefaultInstallCommands,
			handle:  emit("", Result{}),
		},
		{
			name:    "no install commands",
			install: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := New(
				WithRunner(&fakeRunner{handle: tt.handle}),
				WithInstallCommands(tt.install),
				WithLookPath(func(string) (string, error) { return "", errors.New("not found") }),
			)

			err := tool.Initialize(context.Background())
			if !errors.Is(err, ErrToolUnavailable) {
				t.Errorf("Expected ErrToolUnavailable, got %v", err)
			}
			if tool.IsAvailable() {
				t.Error("Tool must stay unavailable")
			}
		})
	}
}

func TestTool_Version(t *testing.T) {
	runner := &fakeRunner{handle: emit("2025.09.26\n", Result{})}
	tool := newTestTool(runner)

	version, err := tool.Version(context.Background())
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != "2025.09.26" {
		t.Errorf("Unexpected version %q", version)
	}
}

func TestTool_GetMetadata(t *testing.T) {
	runner := &fakeRunner{handle: emit(`{"title":"My Clip","duration":10}`, Result{})}
	tool := newTestTool(runner)

	meta, err := tool.GetMetadata(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if meta.Title != "My Clip" {
		t.Errorf("Unexpected title %q", meta.Title)
	}

	call := runner.calls[0]
	if call.name != "/usr/local/bin/yt-dlp" || !reflect.DeepEqual(call.args, MetadataArgs("https://youtu.be/abc123")) {
		t.Errorf("Unexpected call %+v", call)
	}
}

func TestTool_GetMetadataFailures(t *testing.T) {
	ioErr := errors.New("broken pipe")
	tests := []struct {
		name   string
		handle func(string, []string, LineFunc) (Result, error)
		reason string
	}{
		{
			name:   "non-zero exit",
			handle: emit("", Result{ExitCode: 1, Stderr: "ERROR: [youtube] abc123: Video unavailable\n"}),
			reason: "ERROR: [youtube] abc123: Video unavailable",
		},
		{
			name:   "invalid json",
			handle: emit("WARNING: nothing useful", Result{}),
		},
		{
			name: "io failure",
			handle: func(string, []string, LineFunc) (Result, error) {
				return Result{}, ioErr
			},
			reason: "broken pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := newTestTool(&fakeRunner{handle: tt.handle})

			_, err := tool.GetMetadata(context.Background(), "https://youtu.be/abc123")
			if !errors.Is(err, ErrMetadataFetchFailed) {
				t.Fatalf("Expected ErrMetadataFetchFailed, got %v", err)
			}
			if tt.reason != "" && Reason(err) != tt.reason {
				t.Errorf("Reason() = %q, expected %q", Reason(err), tt.reason)
			}
		})
	}
}

func TestTool_GetFormats(t *testing.T) {
	listing := "ID  EXT   RESOLUTION\n18  mp4   640x360\n140 m4a   audio only\nsb0 mhtml 48x27\n"
	tool := newTestTool(&fakeRunner{handle: emit(listing, Result{})})

	formats, err := tool.GetFormats(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("GetFormats failed: %v", err)
	}
	expected := []string{"18  mp4   640x360", "140 m4a   audio only"}
	if !reflect.DeepEqual(formats, expected) {
		t.Errorf("GetFormats() = %q, expected %q", formats, expected)
	}

	tool = newTestTool(&fakeRunner{handle: emit("", Result{ExitCode: 2, Stderr: "bad url"})})
	if _, err := tool.GetFormats(context.Background(), "https://youtu.be/abc123"); !errors.Is(err, ErrFormatsFailed) {
		t.Errorf("Expected ErrFormatsFailed, got %v", err)
	}
}

func TestTool_Download(t *testing.T) {
	tests := []struct {
		name     string
		stdout   string
		path     string
		source   FileSource
		progress []float64
	}{
		{
			name: "print marker",
			stdout: "[download] Destination: /dl/My Clip.f137.mp4\n" +
				"[download]  25.0% of 4MiB\n" +
				"[download] 100% of 4MiB\n" +
				"[Merger] Merging formats into \"/dl/My Clip.mp4\"\n" +
				"[ytdl-mini] file:/dl/My Clip.mp4\n",
			path:     "/dl/My Clip.mp4",
			source:   SourcePrint,
			progress: []float64{0.25, 1},
		},
		{
			name:     "destination only",
			stdout:   "[download] Destination: /dl/Other.mp4\n[download]  50.0% of 1MiB\n",
			path:     "/dl/Other.mp4",
			source:   SourceLog,
			progress: []float64{0.5},
		},
		{
			name:   "already downloaded",
			stdout: "[download] /dl/Old.mp4 has already been downloaded\n",
			path:   "/dl/Old.mp4",
			source: SourceLog,
		},
		{
			name:   "sentinel",
			stdout: "[youtube] abc123: Downloading webpage\n",
			path:   CompletedSentinel,
			source: SourceUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{handle: emit(tt.stdout, Result{})}
			tool := newTestTool(runner)
			outDir := filepath.Join(t.TempDir(), "nested", "out")

			var progress []float64
			res, err := tool.Download(context.Background(), "https://youtu.be/abc123", outDir, "1280x720",
				func(p float64) { progress = append(progress, p) })
			if err != nil {
				t.Fatalf("Download failed: %v", err)
			}

			if res.FilePath != tt.path || res.Source != tt.source {
				t.Errorf("Download() = %+v, expected path %q source %v", res, tt.path, tt.source)
			}
			if !reflect.DeepEqual(progress, tt.progress) {
				t.Errorf("progress %v, expected %v", progress, tt.progress)
			}
			if _, err := os.Stat(outDir); err != nil {
				t.Errorf("Expected output directory to be created: %v", err)
			}
			if got := runner.calls[0].args; !reflect.DeepEqual(got, DownloadArgs("https://youtu.be/abc123", outDir, 720)) {
				t.Errorf("Unexpected args %v", got)
			}
		})
	}
}

func TestTool_DownloadFailures(t *testing.T) {
	ioErr := errors.New("read |0: file already closed")

	t.Run("non-zero exit keeps stderr trimmed", func(t *testing.T) {
		stderr := "ERROR: [youtube] abc123: Private video\n"
		tool := newTestTool(&fakeRunner{handle: emit("[download]  10.0%", Result{ExitCode: 1, Stderr: stderr})})

		_, err := tool.Download(context.Background(), "https://youtu.be/abc123", t.TempDir(), "1920x1080", nil)
		if !errors.Is(err, ErrDownloadFailed) {
			t.Fatalf("Expected ErrDownloadFailed, got %v", err)
		}
		if want := strings.TrimSpace(stderr); Reason(err) != want {
			t.Errorf("Reason() = %q, expected %q", Reason(err), want)
		}
	})

	t.Run("empty stderr", func(t *testing.T) {
		tool := newTestTool(&fakeRunner{handle: emit("", Result{ExitCode: 137})})

		_, err := tool.Download(context.Background(), "https://youtu.be/abc123", t.TempDir(), "1920x1080", nil)
		if Reason(err) != "yt-dlp exited with status 137" {
			t.Errorf("Unexpected reason %q", Reason(err))
		}
	})

	t.Run("process io failure", func(t *testing.T) {
		tool := newTestTool(&fakeRunner{handle: func(string, []string, LineFunc) (Result, error) {
			return Result{}, ioErr
		}})

		_, err := tool.Download(context.Background(), "https://youtu.be/abc123", t.TempDir(), "1920x1080", nil)
		if !errors.Is(err, ErrDownloadFailed) || !errors.Is(err, ioErr) {
			t.Errorf("Expected ErrDownloadFailed wrapping the io error, got %v", err)
		}
	})

	t.Run("output directory cannot be created", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		runner := &fakeRunner{}
		tool := newTestTool(runner)

		_, err := tool.Download(context.Background(), "https://youtu.be/abc123", filepath.Join(file, "sub"), "1920x1080", nil)
		if !errors.Is(err, ErrDownloadFailed) {
			t.Errorf("Expected ErrDownloadFailed, got %v", err)
		}
		if runner.callCount() != 0 {
			t.Error("Process must not start without an output directory")
		}
	})
}

func TestError_Message(t *testing.T) {
	err := &Error{Op: OpDownload, Kind: ErrDownloadFailed, Detail: "ERROR: boom\n"}
	if err.Error() != "ytdlp download: download failed: ERROR: boom" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	err = &Error{Op: OpDownload, Kind: ErrToolUnavailable}
	if err.Error() != "ytdlp download: yt-dlp not available" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if Reason(err) != "yt-dlp not available" {
		t.Errorf("Unexpected reason %q", Reason(err))
	}
	if Reason(nil) != "" {
		t.Error("Reason(nil) must be empty")
	}
}

func TestReason(t *testing.T) {
	cause := errors.New("exec: killed")
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), "boom"},
		{"detail trailing newline", &Error{Op: OpDownload, Kind: ErrDownloadFailed, Detail: "ERROR: unavailable\n"}, "ERROR: unavailable"},
		{"detail surrounding space", &Error{Op: OpMetadata, Kind: ErrMetadataFetchFailed, Detail: "\n  ERROR: private\r\n"}, "ERROR: private"},
		{"multi-line detail keeps inner newline", &Error{Op: OpDownload, Kind: ErrDownloadFailed, Detail: "WARNING: x\nERROR: y\n"}, "WARNING: x\nERROR: y"},
		{"blank detail falls back to cause", &Error{Op: OpDownload, Kind: ErrDownloadFailed, Detail: " \n", Err: cause}, "exec: killed"},
		{"wrapped", fmt.Errorf("queue: %w", &Error{Op: OpDownload, Kind: ErrDownloadFailed, Detail: "ERROR: gone\n"}), "ERROR: gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.expected {
				t.Errorf("Reason() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
