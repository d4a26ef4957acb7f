package ytdlp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ytget/ytdl-mini/internal/model"
)

// Output markers
const (
	DestinationMarker       = "Destination: "
	AlreadyDownloadedSuffix = " has already been downloaded"
	DownloadLinePrefix      = "[download] "
	MergerPrefix            = `[Merger] Merging formats into "`
)

// CompletedSentinel is stored as the result when no filename could be recovered
const CompletedSentinel = "Download completed"

// KnownContainers are the format listing columns that mark a media format line
var KnownContainers = []string{"mp4", "webm", "m4a", "mkv", "3gp"}

var progressPattern = regexp.MustCompile(`^\[download\]\s+([0-9]+(?:\.[0-9]+)?)%`)

// FileSource tells where a download result's file path came from
type FileSource int

const (
	// SourceUnknown means no filename was found and the sentinel was used
	SourceUnknown FileSource = iota
	// SourceLog means the path was taken from yt-dlp's log lines
	SourceLog
	// SourcePrint means the path came from the structured --print marker
	SourcePrint
)

// DownloadResult describes a finished download
type DownloadResult struct {
	FilePath string
	Source   FileSource
}

// Known reports whether FilePath names a real file rather than the sentinel
func (r DownloadResult) Known() bool {
	return r.Source != SourceUnknown
}

// ParseMetadata decodes the --dump-json output of a single video.
// Fields with an unexpected type are treated as absent.
func ParseMetadata(data []byte) (*model.VideoMetadata, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: empty document")
	}

	meta := &model.VideoMetadata{Title: model.UnknownTitle}
	if title := stringField(raw, "title"); title != nil {
		meta.Title = *title
	}
	if n, ok := raw["duration"].(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			meta.Duration = &f
		}
	}
	if n, ok := raw["view_count"].(json.Number); ok {
		if v, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			meta.ViewCount = &v
		}
	}
	meta.Uploader = stringField(raw, "uploader")
	meta.UploadDate = stringField(raw, "upload_date")
	meta.ThumbnailURL = stringField(raw, "thumbnail")

	return meta, nil
}

func stringField(raw map[string]any, key string) *string {
	s, ok := raw[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// FilterFormats keeps the lines of a --list-formats listing that have a
// whitespace separated field naming a known container, in tool order
func FilterFormats(output string) []string {
	formats := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if isFormatLine(line) {
			formats = append(formats, line)
		}
	}
	return formats
}

func isFormatLine(line string) bool {
	for _, field := range strings.Fields(line) {
		for _, c := range KnownContainers {
			if field == c {
				return true
			}
		}
	}
	return false
}

// ParseProgress extracts the completed fraction from a "[download]  42.0% ..." line
func ParseProgress(line string) (float64, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return model.ClampProgress(pct / 100), true
}

// ExtractFilename returns the file path a log line refers to, if any.
// It recognises the --print marker, "Destination:" lines, "has already been
// downloaded" lines and merger lines.
func ExtractFilename(line string) (string, FileSource, bool) {
	if rest, ok := strings.CutPrefix(line, PrintMarker); ok {
		if p := strings.TrimSpace(rest); p != "" {
			return p, SourcePrint, true
		}
		return "", SourceUnknown, false
	}

	if _, rest, ok := strings.Cut(line, DestinationMarker); ok {
		if p := strings.TrimSpace(rest); p != "" {
			return p, SourceLog, true
		}
		return "", SourceUnknown, false
	}

	if rest, ok := strings.CutPrefix(line, MergerPrefix); ok {
		if p := strings.TrimSuffix(strings.TrimSpace(rest), `"`); p != "" {
			return p, SourceLog, true
		}
		return "", SourceUnknown, false
	}

	if strings.HasSuffix(line, AlreadyDownloadedSuffix) {
		p := strings.TrimSuffix(line, AlreadyDownloadedSuffix)
		p = strings.TrimSpace(strings.TrimPrefix(p, DownloadLinePrefix))
		if p != "" {
			return p, SourceLog, true
		}
	}

	return "", SourceUnknown, false
}

// outputTracker follows a download's stdout: progress is kept monotonic and the
// best known filename is remembered (print marker over log lines, last one wins)
type outputTracker struct {
	progress float64
	printed  string
	logged   string
}

// observe consumes one line and reports a progress value when it advanced
func (t *outputTracker) observe(line string) (float64, bool) {
	if p, ok := ParseProgress(line); ok {
		if p <= t.progress {
			return 0, false
		}
		t.progress = p
		return p, true
	}

	if path, src, ok := ExtractFilename(line); ok {
		if src == SourcePrint {
			t.printed = path
		} else {
			t.logged = path
		}
	}
	return 0, false
}

func (t *outputTracker) result() *DownloadResult {
	switch {
	case t.printed != "":
		return &DownloadResult{FilePath: t.printed, Source: SourcePrint}
	case t.logged != "":
		return &DownloadResult{FilePath: t.logged, Source: SourceLog}
	default:
		return &DownloadResult{FilePath: CompletedSentinel, Source: SourceUnknown}
	}
}
