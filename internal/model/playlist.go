package model

// PlaylistEntry is a single video listed in a playlist
type PlaylistEntry struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// WatchURL builds the canonical watch URL for a video ID
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// NewPlaylistEntry creates an entry whose URL points at the video's watch page
func NewPlaylistEntry(videoID, title string) PlaylistEntry {
	return PlaylistEntry{
		VideoID: videoID,
		Title:   title,
		URL:     WatchURL(videoID),
	}
}
