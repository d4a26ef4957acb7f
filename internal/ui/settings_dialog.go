package ui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytdl-mini/internal/appstate"
	"github.com/ytget/ytdl-mini/internal/config"
)

// SettingsDialog edits the resolution, download directory and concurrency limit
type SettingsDialog struct {
	state  *appstate.State
	window fyne.Window
	dialog *dialog.ConfirmDialog
	logger *slog.Logger

	downloadDirEntry *widget.Entry
	maxParallelEntry *widget.Entry
	resolutionSelect *widget.Select
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(state *appstate.State, window fyne.Window, logger *slog.Logger) *SettingsDialog {
	sd := &SettingsDialog{
		state:  state,
		window: window,
		logger: logger,
	}
	sd.createUI()
	return sd
}

// Show loads the current settings into the form and displays it
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	sd.downloadDirEntry = widget.NewEntry()
	sd.downloadDirEntry.SetPlaceHolder("Download directory path")
	browseDirBtn := widget.NewButton("Browse", sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	sd.maxParallelEntry = widget.NewEntry()
	sd.maxParallelEntry.SetPlaceHolder(fmt.Sprintf("%d-%d", config.MinConcurrentDownloads, config.MaxConcurrentDownloads))

	sd.resolutionSelect = widget.NewSelect(config.ResolutionOptions, nil)

	form := container.NewVBox(
		widget.NewLabel("Download Directory:"),
		downloadDirRow,
		widget.NewLabel("Max Parallel Downloads:"),
		sd.maxParallelEntry,
		widget.NewLabel("Resolution:"),
		sd.resolutionSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(SettingsLabel, "Save", "Cancel", form, sd.onSave, sd.window)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	s := sd.state.GetSettings()
	sd.downloadDirEntry.SetText(s.DownloadPath)
	sd.maxParallelEntry.SetText(strconv.Itoa(s.MaxConcurrentDownloads))
	sd.resolutionSelect.SetSelected(s.DefaultResolution)
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

// formSettings reads the form over the current settings
func (sd *SettingsDialog) formSettings() (config.Settings, error) {
	s := sd.state.GetSettings()

	if dir := strings.TrimSpace(sd.downloadDirEntry.Text); dir != "" {
		s.DownloadPath = dir
	}
	if text := strings.TrimSpace(sd.maxParallelEntry.Text); text != "" {
		n, err := strconv.Atoi(text)
		if err != nil {
			return s, fmt.Errorf("%w: max parallel downloads must be a number", config.ErrInvalidSettings)
		}
		s.MaxConcurrentDownloads = n
	}
	if sd.resolutionSelect.Selected != "" {
		s.DefaultResolution = sd.resolutionSelect.Selected
	}
	return s, nil
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	settings, err := sd.formSettings()
	if err == nil {
		err = sd.state.UpdateSettings(settings)
	}
	if err != nil {
		dialog.ShowError(err, sd.window)
		return
	}

	if err := sd.state.SaveSettings(); err != nil {
		sd.logger.Error("saving settings", "err", err)
		dialog.ShowError(fmt.Errorf("settings applied but not saved: %w", err), sd.window)
		return
	}

	dialog.ShowInformation(SettingsLabel, "Settings saved", sd.window)
}
