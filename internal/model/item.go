package model

import (
	"strings"
	"time"
)

// DownloadItem represents a single queued download
type DownloadItem struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"` // empty until metadata resolves
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"` // set only when Status is Failed
	CreatedAt  time.Time `json:"created_at"`
	Progress   float64   `json:"progress"`            // 0.0 to 1.0
	FilePath   string    `json:"file_path,omitempty"` // produced file, or the completion sentinel
	FileKnown  bool      `json:"file_known"`          // FilePath came from tool output
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// NewDownloadItem creates a pending item for an already validated URL
func NewDownloadItem(id, url string) DownloadItem {
	return DownloadItem{
		ID:        id,
		URL:       url,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

// ClampProgress bounds a progress value to [0, 1]
func ClampProgress(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (d DownloadItem) GetDisplayTitle() string {
	if d.Title != "" && !strings.HasPrefix(d.Title, "http") {
		return d.Title
	}

	if d.FileKnown && d.FilePath != "" {
		// support both / and \ separators
		parts := strings.FieldsFunc(d.FilePath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return d.URL
}

// Percent returns progress as an integer percentage
func (d DownloadItem) Percent() int {
	return int(ClampProgress(d.Progress)*100 + 0.5)
}
