package model

// UnknownTitle is used when the tool reports no title for a video
const UnknownTitle = "Unknown Title"

// VideoMetadata is the descriptive information yt-dlp reports for a video.
// Optional fields are nil when the tool did not provide them.
type VideoMetadata struct {
	Title        string   `json:"title"`
	Duration     *float64 `json:"duration,omitempty"` // seconds
	Uploader     *string  `json:"uploader,omitempty"`
	UploadDate   *string  `json:"upload_date,omitempty"` // YYYYMMDD
	ViewCount    *uint64  `json:"view_count,omitempty"`
	ThumbnailURL *string  `json:"thumbnail,omitempty"`
}
