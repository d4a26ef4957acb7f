package platform

// Package platform contains OS integration used by both entry points:
// filesystem helpers, the downloads and config directories, reveal-in-file-manager
// and playlist listing through github.com/ytget/ytdlp/v2.
