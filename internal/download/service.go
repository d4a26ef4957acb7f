package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/ytdl-mini/internal/model"
	"github.com/ytget/ytdl-mini/internal/validator"
	"github.com/ytget/ytdl-mini/internal/ytdlp"
)

// Defaults
const (
	DefaultResolution    = "1920x1080"
	DefaultMaxConcurrent = 3
)

// CancelledReason is recorded on items still downloading when the service closes
const CancelledReason = "download cancelled"

var (
	// ErrInvalidURL is returned by Submit for URLs the validator rejects
	ErrInvalidURL = errors.New("invalid URL")

	// ErrClosed is returned by Submit after Close
	ErrClosed = errors.New("download service closed")
)

type entry struct {
	item   model.DownloadItem
	seq    uint64
	cancel context.CancelFunc // set while downloading
}

// Service handles download operations
type Service struct {
	mu            sync.Mutex
	entries       map[string]*entry
	nextSeq       uint64
	maxConcurrent int
	downloadDir   string
	resolution    string
	closed        bool
	onUpdate      func(model.DownloadItem) // callback for UI updates

	fetcher Fetcher
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Service
type Option func(*Service)

// WithResolution sets the initial "WIDTHxHEIGHT" resolution cap
func WithResolution(resolution string) Option {
	return func(s *Service) {
		if resolution != "" {
			s.resolution = resolution
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new download service
func NewService(fetcher Fetcher, downloadDir string, maxConcurrent int, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		entries:       make(map[string]*entry),
		maxConcurrent: max(maxConcurrent, 1),
		downloadDir:   downloadDir,
		resolution:    DefaultResolution,
		fetcher:       fetcher,
		logger:        slog.Default(),
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "download")
	return s
}

// SetUpdateCallback sets the callback function for item updates.
// The callback runs outside the service lock and may call back into the service.
func (s *Service) SetUpdateCallback(callback func(model.DownloadItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// Submit queues url and returns the new item's ID
func (s *Service) Submit(url string) (string, error) {
	if !validator.Validate(url) {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}

	s.nextSeq++
	e := &entry{
		item: model.NewDownloadItem(generateItemID(), url),
		seq:  s.nextSeq,
	}
	s.entries[e.item.ID] = e
	queued := e.item
	started := s.admitLocked()
	cb := s.onUpdate
	s.mu.Unlock()

	s.logger.Info("download queued", "item", queued.ID, "url", url)
	notify(cb, append([]model.DownloadItem{queued}, started...)...)
	return queued.ID, nil
}

// Get returns a snapshot of the item with the given ID
func (s *Service) Get(id string) (model.DownloadItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return model.DownloadItem{}, false
	}
	return e.item, true
}

// ListAll returns snapshots of all items, newest first
func (s *Service) ListAll() []model.DownloadItem {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.item.CreatedAt.Equal(b.item.CreatedAt) {
			return a.item.CreatedAt.After(b.item.CreatedAt)
		}
		return a.seq > b.seq
	})
	items := make([]model.DownloadItem, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	s.mu.Unlock()
	return items
}

// UpdateProgress stores a clamped progress value; unknown IDs are ignored
func (s *Service) UpdateProgress(id string, progress float64) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.item.Progress = model.ClampProgress(progress)
	item := e.item
	cb := s.onUpdate
	s.mu.Unlock()

	notify(cb, item)
}

// Remove deletes an item regardless of its status. A running download is
// cancelled and its slot is handed to the next pending item right away.
func (s *Service) Remove(id string) (model.DownloadItem, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return model.DownloadItem{}, false
	}
	delete(s.entries, id)
	if e.cancel != nil {
		e.cancel()
	}
	started := s.admitLocked()
	cb := s.onUpdate
	s.mu.Unlock()

	s.logger.Info("download removed", "item", id, "status", e.item.Status)
	notify(cb, started...)
	return e.item, true
}

// ClearCompleted removes every successful item and returns how many were removed
func (s *Service) ClearCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if e.item.Status == model.StatusSuccess {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// SetMaxConcurrent sets the maximum number of parallel downloads (at least 1).
// Running downloads are never interrupted; new slots are filled at once.
func (s *Service) SetMaxConcurrent(n int) {
	s.mu.Lock()
	s.maxConcurrent = max(n, 1)
	started := s.admitLocked()
	cb := s.onUpdate
	s.mu.Unlock()

	notify(cb, started...)
}

// MaxConcurrent returns the concurrency limit
func (s *Service) MaxConcurrent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxConcurrent
}

// ActiveCount returns the number of items currently downloading
func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeCountLocked()
}

// SetDownloadDirectory sets the download directory
func (s *Service) SetDownloadDirectory(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadDir = dir
}

// DownloadDirectory returns the directory new downloads are written to
func (s *Service) DownloadDirectory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloadDir
}

// SetResolution sets the "WIDTHxHEIGHT" cap for new downloads
func (s *Service) SetResolution(resolution string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolution = resolution
}

// Resolution returns the resolution cap for new downloads
func (s *Service) Resolution() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution
}

// Wait blocks until no download is in flight
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels all running downloads and marks them failed. Pending items stay
// pending. Close waits for the download goroutines to return.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.wg.Wait()
		return
	}
	s.closed = true
	s.cancel()

	var cancelled []model.DownloadItem
	now := time.Now()
	for _, e := range s.entries {
		if e.item.Status != model.StatusDownloading {
			continue
		}
		e.item.Status = model.StatusFailed
		e.item.Error = CancelledReason
		e.item.FinishedAt = now
		e.cancel = nil
		cancelled = append(cancelled, e.item)
	}
	cb := s.onUpdate
	s.mu.Unlock()

	notify(cb, cancelled...)
	s.wg.Wait()
}

// activeCountLocked derives the number of slots in use from item statuses
func (s *Service) activeCountLocked() int {
	n := 0
	for _, e := range s.entries {
		if e.item.Status.IsActive() {
			n++
		}
	}
	return n
}

// oldestPendingLocked returns the pending entry created first
func (s *Service) oldestPendingLocked() *entry {
	var oldest *entry
	for _, e := range s.entries {
		if e.item.Status != model.StatusPending {
			continue
		}
		if oldest == nil ||
			e.item.CreatedAt.Before(oldest.item.CreatedAt) ||
			(e.item.CreatedAt.Equal(oldest.item.CreatedAt) && e.seq < oldest.seq) {
			oldest = e
		}
	}
	return oldest
}

// admitLocked promotes pending items in FIFO order while slots are free and
// returns snapshots of the promoted items
func (s *Service) admitLocked() []model.DownloadItem {
	if s.closed {
		return nil
	}

	var started []model.DownloadItem
	for s.activeCountLocked() < s.maxConcurrent {
		next := s.oldestPendingLocked()
		if next == nil {
			break
		}
		s.startLocked(next)
		started = append(started, next.item)
	}
	return started
}

func (s *Service) startLocked(e *entry) {
	ctx, cancel := context.WithCancel(s.ctx)
	e.cancel = cancel
	e.item.Status = model.StatusDownloading
	e.item.StartedAt = time.Now()

	s.wg.Add(1)
	go s.runItem(ctx, cancel, e.item.ID, e.item.URL, s.downloadDir, s.resolution)
}

// runItem performs one download without holding the lock
func (s *Service) runItem(ctx context.Context, cancel context.CancelFunc, id, url, dir, resolution string) {
	defer s.wg.Done()
	defer cancel()

	logger := s.logger.With("item", id)
	logger.Info("download started", "url", url, "dir", dir, "resolution", resolution)

	meta, err := s.fetcher.GetMetadata(ctx, url)
	if err != nil {
		logger.Warn("metadata unavailable", "err", err)
	} else if meta != nil {
		s.setTitle(id, meta.Title)
	}

	res, err := s.fetcher.Download(ctx, url, dir, resolution, func(p float64) {
		s.UpdateProgress(id, p)
	})
	s.finish(logger, id, res, err)
}

func (s *Service) setTitle(id, title string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.item.Title = title
	item := e.item
	cb := s.onUpdate
	s.mu.Unlock()

	notify(cb, item)
}

// finish records the outcome of a download and admits the next pending item
func (s *Service) finish(logger *slog.Logger, id string, res *ytdlp.DownloadResult, err error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.item.Status != model.StatusDownloading {
		// removed or cancelled while running
		s.mu.Unlock()
		logger.Debug("discarding orphaned completion", "err", err)
		return
	}

	e.cancel = nil
	e.item.FinishedAt = time.Now()
	if err != nil {
		e.item.Status = model.StatusFailed
		e.item.Error = ytdlp.Reason(err)
	} else {
		if res == nil {
			res = &ytdlp.DownloadResult{FilePath: ytdlp.CompletedSentinel, Source: ytdlp.SourceUnknown}
		}
		e.item.Status = model.StatusSuccess
		e.item.Progress = 1
		e.item.FilePath = res.FilePath
		e.item.FileKnown = res.Known()
	}
	item := e.item
	started := s.admitLocked()
	cb := s.onUpdate
	s.mu.Unlock()

	if err != nil {
		logger.Error("download failed", "err", err)
	} else {
		logger.Info("download finished", "file", item.FilePath, "known", item.FileKnown)
	}
	notify(cb, append([]model.DownloadItem{item}, started...)...)
}

// notify calls the update callback if set
func notify(cb func(model.DownloadItem), items ...model.DownloadItem) {
	if cb == nil {
		return
	}
	for _, item := range items {
		cb(item)
	}
}

// generateItemID generates a unique item ID using UUID v7 for time ordering
func generateItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
