// Package appstate is the single front door the presentation layers use. It
// serializes access to the download service, the settings and the transient
// text of the URL input, and carries no business rules of its own.
package appstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ytget/ytdl-mini/internal/config"
	"github.com/ytget/ytdl-mini/internal/download"
	"github.com/ytget/ytdl-mini/internal/model"
	"github.com/ytget/ytdl-mini/internal/platform"
)

var (
	// ErrNoSettingsPath is returned by SaveSettings when no file was configured
	ErrNoSettingsPath = errors.New("no settings file configured")

	// ErrPlaylistUnsupported is returned by AddPlaylist without a lister
	ErrPlaylistUnsupported = errors.New("playlist expansion not configured")
)

// PlaylistLister expands a playlist URL into its videos
type PlaylistLister interface {
	List(ctx context.Context, url string) ([]model.PlaylistEntry, error)
}

// State guards the settings and the current input. The download service handle
// is fixed at construction, and calls into it are made without holding mu so
// update callbacks may re-enter State.
type State struct {
	downloads download.Downloader
	lister    PlaylistLister
	logger    *slog.Logger

	applyMu      sync.Mutex // serializes settings changes reaching the service
	mu           sync.RWMutex
	settings     config.Settings
	settingsPath string
	currentURL   string
}

// Option configures a State
type Option func(*State)

// WithSettingsPath sets the file SaveSettings writes to
func WithSettingsPath(path string) Option {
	return func(s *State) { s.settingsPath = path }
}

// WithPlaylistLister enables AddPlaylist
func WithPlaylistLister(l PlaylistLister) Option {
	return func(s *State) { s.lister = l }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *State) { s.logger = l }
}

// New creates the application state and applies settings to the download service
func New(downloads download.Downloader, settings config.Settings, opts ...Option) *State {
	s := &State{
		downloads: downloads,
		settings:  settings.Normalize(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "appstate")
	s.apply(s.settings)
	return s
}

// AddDownload queues url and returns the new item's ID
func (s *State) AddDownload(url string) (string, error) {
	return s.downloads.Submit(url)
}

// AddPlaylist queues every video of the playlist at url and returns their IDs.
// Entries the download service rejects are logged and skipped.
func (s *State) AddPlaylist(ctx context.Context, url string) ([]string, error) {
	if s.lister == nil {
		return nil, ErrPlaylistUnsupported
	}

	entries, err := s.lister.List(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("listing playlist: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		id, err := s.downloads.Submit(e.URL)
		if err != nil {
			s.logger.Warn("skipping playlist entry", "video", e.VideoID, "err", err)
			continue
		}
		ids = append(ids, id)
	}
	s.logger.Info("playlist queued", "url", url, "entries", len(entries), "queued", len(ids))
	return ids, nil
}

// ListDownloads returns all items, newest first
func (s *State) ListDownloads() []model.DownloadItem {
	return s.downloads.ListAll()
}

// GetDownload returns a single item
func (s *State) GetDownload(id string) (model.DownloadItem, bool) {
	return s.downloads.Get(id)
}

// RemoveDownload removes an item regardless of its status
func (s *State) RemoveDownload(id string) (model.DownloadItem, bool) {
	return s.downloads.Remove(id)
}

// ClearCompleted removes all successful items
func (s *State) ClearCompleted() int {
	return s.downloads.ClearCompleted()
}

// SetMaxConcurrent changes the scheduler's concurrency limit and records the
// limit the scheduler settled on in the settings
func (s *State) SetMaxConcurrent(n int) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.downloads.SetMaxConcurrent(n)
	n = s.downloads.MaxConcurrent()

	s.mu.Lock()
	s.settings.MaxConcurrentDownloads = n
	s.mu.Unlock()
}

// ActiveCount returns the number of downloads in flight
func (s *State) ActiveCount() int {
	return s.downloads.ActiveCount()
}

// GetSettings returns a copy of the current settings
func (s *State) GetSettings() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings validates settings, makes sure the download directory exists
// and applies them to the download service. Nothing is written to disk.
func (s *State) UpdateSettings(settings config.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := platform.CreateDirectoryIfNotExists(settings.DownloadPath); err != nil {
		return fmt.Errorf("%w: cannot create or access download directory: %v", config.ErrInvalidSettings, err)
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	s.apply(settings)
	s.logger.Info("settings updated",
		"resolution", settings.DefaultResolution,
		"path", settings.DownloadPath,
		"max_concurrent", settings.MaxConcurrentDownloads)
	return nil
}

// SaveSettings writes the current settings to the settings file
func (s *State) SaveSettings() error {
	s.mu.RLock()
	path, settings := s.settingsPath, s.settings
	s.mu.RUnlock()

	if path == "" {
		return ErrNoSettingsPath
	}
	if err := config.Save(path, settings); err != nil {
		return err
	}
	s.logger.Debug("settings saved", "path", path)
	return nil
}

// CurrentURL returns the text of the URL input
func (s *State) CurrentURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentURL
}

// SetCurrentURL records the text of the URL input
func (s *State) SetCurrentURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentURL = url
}

// OnUpdate registers the callback invoked on every item change
func (s *State) OnUpdate(fn func(model.DownloadItem)) {
	s.downloads.SetUpdateCallback(fn)
}

// Wait blocks until no download is in flight
func (s *State) Wait() {
	s.downloads.Wait()
}

// Close stops all downloads
func (s *State) Close() {
	s.downloads.Close()
}

func (s *State) apply(settings config.Settings) {
	s.downloads.SetDownloadDirectory(settings.DownloadPath)
	s.downloads.SetResolution(settings.DefaultResolution)
	s.downloads.SetMaxConcurrent(settings.MaxConcurrentDownloads)
}
