package download

import (
	"context"

	"github.com/ytget/ytdl-mini/internal/model"
	"github.com/ytget/ytdl-mini/internal/ytdlp"
)

// Fetcher performs the per-item work. *ytdlp.Tool implements it.
type Fetcher interface {
	GetMetadata(ctx context.Context, url string) (*model.VideoMetadata, error)
	Download(ctx context.Context, url, outputDir, resolution string, progress ytdlp.ProgressFunc) (*ytdlp.DownloadResult, error)
}

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(model.DownloadItem))
	Submit(url string) (string, error)
	Get(id string) (model.DownloadItem, bool)
	ListAll() []model.DownloadItem
	UpdateProgress(id string, progress float64)
	Remove(id string) (model.DownloadItem, bool)
	ClearCompleted() int

	// SetMaxConcurrent sets the maximum number of parallel downloads
	SetMaxConcurrent(n int)
	MaxConcurrent() int
	ActiveCount() int

	// SetDownloadDirectory and SetResolution apply to items started afterwards
	SetDownloadDirectory(dir string)
	SetResolution(resolution string)

	Wait()
	Close()
}

var (
	_ Fetcher    = (*ytdlp.Tool)(nil)
	_ Downloader = (*Service)(nil)
)
