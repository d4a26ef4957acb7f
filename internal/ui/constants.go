package ui

// Window
const (
	WindowTitle          = "ytdl-mini"
	WindowWidth  float32 = 720
	WindowHeight float32 = 520
)

// Labels
const (
	URLPlaceholder     = "Paste a YouTube video or playlist URL"
	DownloadLabel      = "Download"
	ClearLabel         = "Clear completed"
	SettingsLabel      = "Settings"
	RemoveLabel        = "Remove"
	RevealLabel        = "Reveal"
	EmptyURLMessage    = "Please enter a URL"
	PlaylistQueuedText = "Queued %d videos from playlist"
	PlaylistParsing    = "Reading playlist..."
	ToolPendingText    = "Preparing yt-dlp..."
	ToolFailedFormat   = "yt-dlp is unavailable: %v"
	SummaryFormat      = "%d items · %d downloading"
	ProgressFormat     = "%d%%"
)

// Row sizing
const (
	StatusLabelWidth  float32 = 96
	PercentLabelWidth float32 = 48
)

// Settings dialog
const (
	SettingsDialogWidth  float32 = 480
	SettingsDialogHeight float32 = 320
)
