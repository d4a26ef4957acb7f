package ytdlp

// Package ytdlp drives the external yt-dlp executable: it resolves (and if needed
// installs) the binary, reads metadata, lists formats and runs downloads while
// streaming progress. Every failure is reported as an *Error carrying one of the
// sentinel kinds so callers can branch with errors.Is.
