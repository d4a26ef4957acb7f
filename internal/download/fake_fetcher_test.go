package download

import (
	"context"
	"errors"
	"sync"

	"github.com/ytget/ytdl-mini/internal/model"
	"github.com/ytget/ytdl-mini/internal/ytdlp"
)

type outcome struct {
	res *ytdlp.DownloadResult
	err error
}

// fakeFetcher blocks every download until the test releases its URL
type fakeFetcher struct {
	mu        sync.Mutex
	started   []string
	gates     map[string]chan outcome
	active    int
	maxActive int
	metaErr   error
	progress  []float64
	dirs      []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{gates: make(map[string]chan outcome)}
}

func (f *fakeFetcher) gate(url string) chan outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[url]
	if !ok {
		ch = make(chan outcome, 1)
		f.gates[url] = ch
	}
	return ch
}

func (f *fakeFetcher) GetMetadata(ctx context.Context, url string) (*model.VideoMetadata, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return &model.VideoMetadata{Title: "title of " + url}, nil
}

func (f *fakeFetcher) Download(ctx context.Context, url, outputDir, resolution string, progress ytdlp.ProgressFunc) (*ytdlp.DownloadResult, error) {
	gate := f.gate(url)

	f.mu.Lock()
	f.started = append(f.started, url)
	f.dirs = append(f.dirs, outputDir)
	f.active++
	f.maxActive = max(f.maxActive, f.active)
	reports := f.progress
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	for _, p := range reports {
		progress(p)
	}

	select {
	case o := <-gate:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeFetcher) succeed(url, path string) {
	f.gate(url) <- outcome{res: &ytdlp.DownloadResult{FilePath: path, Source: ytdlp.SourcePrint}}
}

func (f *fakeFetcher) fail(url, stderr string) {
	f.gate(url) <- outcome{err: &ytdlp.Error{Op: ytdlp.OpDownload, Kind: ytdlp.ErrDownloadFailed, Detail: stderr}}
}

func (f *fakeFetcher) startedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...)
}

func (f *fakeFetcher) peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

var errMetadata = errors.New("metadata lookup failed")
