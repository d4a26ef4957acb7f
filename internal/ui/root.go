package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytdl-mini/internal/appstate"
	"github.com/ytget/ytdl-mini/internal/model"
	"github.com/ytget/ytdl-mini/internal/platform"
	"github.com/ytget/ytdl-mini/internal/validator"
)

// PlaylistTimeout bounds playlist expansion started from the window
const PlaylistTimeout = 2 * time.Minute

// RootUI is the main window content
type RootUI struct {
	window fyne.Window
	state  *appstate.State
	logger *slog.Logger

	urlEntry    *widget.Entry
	downloadBtn *widget.Button
	clearBtn    *widget.Button
	summary     *widget.Label
	notice      *widget.Label
	list        *widget.List
	settings    *SettingsDialog

	// items and toolPending are only touched on the UI goroutine
	items       []model.DownloadItem
	toolPending bool

	refreshQueued atomic.Bool
}

// NewRootUI builds the window content and subscribes to item updates
func NewRootUI(window fyne.Window, state *appstate.State, logger *slog.Logger) *RootUI {
	if logger == nil {
		logger = slog.Default()
	}
	ui := &RootUI{
		window: window,
		state:  state,
		logger: logger.With("component", "ui"),
	}

	window.SetTitle(WindowTitle)
	ui.setupUI()
	ui.refresh()

	state.OnUpdate(ui.onItemUpdate)
	return ui
}

func (ui *RootUI) setupUI() {
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(URLPlaceholder)
	ui.urlEntry.SetText(ui.state.CurrentURL())
	ui.urlEntry.OnChanged = ui.state.SetCurrentURL
	ui.urlEntry.OnSubmitted = func(string) { ui.onDownloadClick() }

	ui.downloadBtn = widget.NewButton(DownloadLabel, ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance

	ui.settings = NewSettingsDialog(ui.state, ui.window, ui.logger)
	settingsBtn := widget.NewButton(SettingsLabel, ui.settings.Show)
	settingsBtn.Importance = widget.LowImportance

	top := container.NewBorder(nil, nil, settingsBtn, ui.downloadBtn, ui.urlEntry)

	ui.notice = widget.NewLabel("")
	ui.notice.Hide()

	ui.list = widget.NewList(
		func() int { return len(ui.items) },
		func() fyne.CanvasObject { return NewItemRow(ui.onRemove, ui.onReveal) },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(ui.items) {
				return
			}
			obj.(*ItemRow).Update(ui.items[id])
		},
	)

	ui.summary = widget.NewLabel("")
	ui.clearBtn = widget.NewButton(ClearLabel, ui.onClearCompleted)
	bottom := container.NewBorder(nil, nil, nil, ui.clearBtn, ui.summary)

	ui.window.SetContent(container.NewBorder(
		container.NewVBox(top, ui.notice),
		bottom,
		nil,
		nil,
		ui.list,
	))
}

// onDownloadClick queues the URL in the entry. Playlist links are expanded in
// the background.
func (ui *RootUI) onDownloadClick() {
	if ui.toolPending {
		return
	}
	raw := strings.TrimSpace(ui.urlEntry.Text)
	if raw == "" {
		ui.showNotice(EmptyURLMessage)
		return
	}

	if _, ok := validator.ExtractPlaylistID(raw); ok {
		ui.queuePlaylist(raw)
		ui.urlEntry.SetText("")
		return
	}

	id, err := ui.state.AddDownload(raw)
	if err != nil {
		ui.logger.Warn("download rejected", "url", raw, "err", err)
		dialog.ShowError(err, ui.window)
		return
	}
	ui.logger.Info("download queued", "item", id)

	ui.urlEntry.SetText("")
	ui.hideNotice()
	ui.refresh()
}

// SetToolPending blocks new downloads until SetToolReady is called
func (ui *RootUI) SetToolPending() {
	ui.toolPending = true
	ui.downloadBtn.Disable()
	ui.showNotice(ToolPendingText)
}

// SetToolReady reports the outcome of yt-dlp initialization. Downloads stay
// blocked when err is non-nil.
func (ui *RootUI) SetToolReady(err error) {
	if err != nil {
		ui.showNotice(fmt.Sprintf(ToolFailedFormat, err))
		return
	}
	ui.toolPending = false
	ui.downloadBtn.Enable()
	ui.hideNotice()
}

func (ui *RootUI) queuePlaylist(url string) {
	ui.showNotice(PlaylistParsing)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PlaylistTimeout)
		defer cancel()

		ids, err := ui.state.AddPlaylist(ctx, url)
		fyne.Do(func() {
			if err != nil {
				ui.hideNotice()
				dialog.ShowError(err, ui.window)
				return
			}
			ui.showNotice(fmt.Sprintf(PlaylistQueuedText, len(ids)))
			ui.refresh()
		})
	}()
}

func (ui *RootUI) onRemove(id string) {
	if _, ok := ui.state.RemoveDownload(id); ok {
		ui.logger.Info("download removed", "item", id)
	}
	ui.refresh()
}

// onReveal opens the file manager at the item's file, or at the download
// directory when the file name was never reported
func (ui *RootUI) onReveal(item model.DownloadItem) {
	path := item.FilePath
	if !item.FileKnown {
		path = ui.state.GetSettings().DownloadPath
	}

	go func() {
		if err := platform.OpenFileInManager(path); err != nil {
			ui.logger.Warn("reveal failed", "item", item.ID, "path", path, "err", err)
			if errors.Is(err, platform.ErrFileNotFound) {
				fyne.Do(func() { dialog.ShowError(err, ui.window) })
			}
		}
	}()
}

func (ui *RootUI) onClearCompleted() {
	n := ui.state.ClearCompleted()
	ui.logger.Debug("cleared completed downloads", "count", n)
	ui.refresh()
}

// onItemUpdate runs on scheduler goroutines. Bursts of updates collapse into
// a single refresh on the UI goroutine.
func (ui *RootUI) onItemUpdate(model.DownloadItem) {
	if !ui.refreshQueued.CompareAndSwap(false, true) {
		return
	}
	fyne.Do(func() {
		ui.refreshQueued.Store(false)
		ui.refresh()
	})
}

// refresh reloads the items, newest first, and redraws the list
func (ui *RootUI) refresh() {
	ui.items = ui.state.ListDownloads()

	finished := 0
	for _, it := range ui.items {
		if it.Status == model.StatusSuccess {
			finished++
		}
	}
	if finished > 0 {
		ui.clearBtn.Enable()
	} else {
		ui.clearBtn.Disable()
	}

	ui.summary.SetText(fmt.Sprintf(SummaryFormat, len(ui.items), ui.state.ActiveCount()))
	ui.list.Refresh()
}

func (ui *RootUI) showNotice(text string) {
	ui.notice.SetText(text)
	ui.notice.Show()
}

func (ui *RootUI) hideNotice() {
	ui.notice.Hide()
}
