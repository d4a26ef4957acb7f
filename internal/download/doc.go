package download

// Package download implements the download queue built on top of the yt-dlp
// adapter. It owns the item collection, admits pending items in FIFO order while
// keeping at most maxConcurrent downloads in flight, propagates progress to the
// presentation layer and reconciles completions.
