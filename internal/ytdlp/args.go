package ytdlp

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// yt-dlp command line constants
const (
	ExecutableName = "yt-dlp"

	FlagVersion       = "--version"
	FlagDumpJSON      = "--dump-json"
	FlagNoDownload    = "--no-download"
	FlagNoPlaylist    = "--no-playlist"
	FlagListFormats   = "--list-formats"
	FlagFormat        = "--format"
	FlagMergeFormat   = "--merge-output-format"
	FlagOutput        = "--output"
	FlagNewline       = "--newline"
	FlagProgress      = "--progress"
	FlagPrint         = "--print"
	MergeContainer    = "mp4"
	OutputTemplate    = "%(title)s.%(ext)s"
	PrintMarker       = "[ytdl-mini] file:"
	PrintFileTemplate = "after_move:" + PrintMarker + "%(filepath)s"
)

// DefaultHeight is used when a resolution string carries no usable height
const DefaultHeight = 1080

// ParseHeight returns the vertical component of a "WIDTHxHEIGHT" resolution
func ParseHeight(resolution string) int {
	_, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(resolution)), "x")
	if !ok {
		return DefaultHeight
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return DefaultHeight
	}
	return height
}

// FormatSelector picks the best video no taller than height, merged with the
// best audio, falling back to the best single file within the same bound
func FormatSelector(height int) string {
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", height, height)
}

// MetadataArgs builds the arguments of a metadata lookup
func MetadataArgs(url string) []string {
	return []string{FlagDumpJSON, FlagNoDownload, FlagNoPlaylist, url}
}

// FormatsArgs builds the arguments of a format listing
func FormatsArgs(url string) []string {
	return []string{FlagListFormats, FlagNoPlaylist, url}
}

// DownloadArgs builds the arguments of a download into outputDir
func DownloadArgs(url, outputDir string, height int) []string {
	return []string{
		FlagFormat, FormatSelector(height),
		FlagMergeFormat, MergeContainer,
		FlagOutput, filepath.Join(outputDir, OutputTemplate),
		FlagNoPlaylist,
		FlagNewline,
		FlagProgress,
		FlagPrint, PrintFileTemplate,
		url,
	}
}
