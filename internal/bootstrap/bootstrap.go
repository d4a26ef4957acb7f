// Package bootstrap assembles the settings, the yt-dlp adapter, the download
// service and the application state shared by the desktop and CLI entry points.
package bootstrap

import (
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/ytget/ytdl-mini/internal/appstate"
	"github.com/ytget/ytdl-mini/internal/config"
	"github.com/ytget/ytdl-mini/internal/download"
	"github.com/ytget/ytdl-mini/internal/platform"
	"github.com/ytget/ytdl-mini/internal/ytdlp"
)

// Options controls New
type Options struct {
	// ConfigPath overrides the settings file location
	ConfigPath string

	// Override is applied to the loaded settings before they reach the service
	Override func(*config.Settings)

	Logger *slog.Logger

	// ToolOptions are passed to ytdlp.New
	ToolOptions []ytdlp.Option
}

// App holds the wired components
type App struct {
	Logger       *slog.Logger
	SettingsPath string
	Tool         *ytdlp.Tool
	Downloads    *download.Service
	State        *appstate.State
}

// LoadDotEnv loads a .env file from the working directory when present
func LoadDotEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "err", err)
	}
}

// LoadSettings reads the settings file and applies environment overrides.
// Problems are logged and the defaults are used in their place.
func LoadSettings(path string, logger *slog.Logger) (config.Settings, string) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logger.Warn("no config directory, settings will not be saved", "err", err)
		}
		path = p
	}

	settings := config.Default()
	if path != "" {
		s, err := config.Load(path)
		if err != nil {
			logger.Warn("settings file ignored", "path", path, "err", err)
		}
		settings = s
	}

	if err := config.ApplyEnv(&settings); err != nil {
		logger.Warn("environment overrides ignored", "err", err)
	}
	return settings, path
}

// New wires the components. The tool is not initialized; callers decide
// whether to do that up front or in the background.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	settings, path := LoadSettings(opts.ConfigPath, logger)
	if opts.Override != nil {
		opts.Override(&settings)
		settings = settings.Normalize()
	}

	tool := ytdlp.New(append([]ytdlp.Option{ytdlp.WithLogger(logger)}, opts.ToolOptions...)...)
	svc := download.NewService(tool, settings.DownloadPath, settings.MaxConcurrentDownloads,
		download.WithResolution(settings.DefaultResolution),
		download.WithLogger(logger))

	state := appstate.New(svc, settings,
		appstate.WithSettingsPath(path),
		appstate.WithPlaylistLister(platform.NewPlaylistLister()),
		appstate.WithLogger(logger))

	return &App{
		Logger:       logger,
		SettingsPath: path,
		Tool:         tool,
		Downloads:    svc,
		State:        state,
	}
}
