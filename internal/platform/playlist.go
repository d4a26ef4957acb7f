package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/ytget/ytdl-mini/internal/model"
	"github.com/ytget/ytdl-mini/internal/validator"
	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultPlaylistTimeout = 60 * time.Second
)

// PlaylistFetchFunc returns the entries of the playlist with the given ID
type PlaylistFetchFunc func(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error)

// PlaylistLister expands playlist URLs into individual video entries
type PlaylistLister struct {
	timeout time.Duration
	fetch   PlaylistFetchFunc
}

// NewPlaylistLister creates a lister backed by the ytdlp library
func NewPlaylistLister() *PlaylistLister {
	return &PlaylistLister{
		timeout: DefaultPlaylistTimeout,
		fetch:   fetchWithLibrary,
	}
}

// NewPlaylistListerWithFetch creates a lister with a custom fetch function
func NewPlaylistListerWithFetch(fetch PlaylistFetchFunc) *PlaylistLister {
	return &PlaylistLister{
		timeout: DefaultPlaylistTimeout,
		fetch:   fetch,
	}
}

// SetTimeout sets the timeout for listing operations
func (p *PlaylistLister) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}

// List returns the videos of the playlist referenced by rawURL
func (p *PlaylistLister) List(ctx context.Context, rawURL string) ([]model.PlaylistEntry, error) {
	playlistID, ok := validator.ExtractPlaylistID(rawURL)
	if !ok {
		return nil, fmt.Errorf("invalid playlist URL: %s", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	entries, err := p.fetch(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	out := make([]model.PlaylistEntry, 0, len(entries))
	for _, e := range entries {
		if e.VideoID == "" {
			continue
		}
		if e.URL == "" {
			e.URL = model.WatchURL(e.VideoID)
		}
		out = append(out, e)
	}
	return out, nil
}

func fetchWithLibrary(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, model.NewPlaylistEntry(it.VideoID, it.Title))
	}
	return entries, nil
}
