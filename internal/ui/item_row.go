package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytdl-mini/internal/model"
)

// ItemRow renders one download item with its actions
type ItemRow struct {
	widget.BaseWidget

	item model.DownloadItem

	titleLabel   *widget.Label
	statusLabel  *widget.Label
	percentLabel *widget.Label
	detailLabel  *widget.Label
	progressBar  *widget.ProgressBar
	removeBtn    *widget.Button
	revealBtn    *widget.Button

	onRemove func(id string)
	onReveal func(item model.DownloadItem)
}

// NewItemRow creates an empty row; the list fills it through Update
func NewItemRow(onRemove func(id string), onReveal func(item model.DownloadItem)) *ItemRow {
	r := &ItemRow{onRemove: onRemove, onReveal: onReveal}
	r.ExtendBaseWidget(r)

	r.titleLabel = widget.NewLabel("")
	r.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	r.titleLabel.Truncation = fyne.TextTruncateEllipsis

	r.statusLabel = widget.NewLabel("")
	r.statusLabel.Alignment = fyne.TextAlignTrailing
	r.percentLabel = widget.NewLabel("")
	r.percentLabel.Alignment = fyne.TextAlignTrailing

	r.detailLabel = widget.NewLabel("")
	r.detailLabel.Truncation = fyne.TextTruncateEllipsis

	r.progressBar = widget.NewProgressBar()
	r.progressBar.TextFormatter = func() string { return "" }

	r.removeBtn = widget.NewButton(RemoveLabel, func() {
		if r.onRemove != nil {
			r.onRemove(r.item.ID)
		}
	})
	r.revealBtn = widget.NewButton(RevealLabel, func() {
		if r.onReveal != nil {
			r.onReveal(r.item)
		}
	})
	r.revealBtn.Importance = widget.LowImportance
	r.revealBtn.Disable()

	return r
}

// Update shows item in the row
func (r *ItemRow) Update(item model.DownloadItem) {
	r.item = item

	r.titleLabel.SetText(sanitize(item.GetDisplayTitle()))
	r.statusLabel.Importance = statusImportance(item.Status)
	r.statusLabel.SetText(item.Status.String())
	r.percentLabel.SetText(fmt.Sprintf(ProgressFormat, item.Percent()))
	r.progressBar.SetValue(item.Progress)
	r.detailLabel.SetText(detailText(item))

	if item.Status == model.StatusSuccess {
		r.revealBtn.Enable()
	} else {
		r.revealBtn.Disable()
	}
}

// Item returns the item currently shown
func (r *ItemRow) Item() model.DownloadItem {
	return r.item
}

// CreateRenderer creates the widget renderer
func (r *ItemRow) CreateRenderer() fyne.WidgetRenderer {
	status := container.NewGridWrap(fyne.NewSize(StatusLabelWidth, r.statusLabel.MinSize().Height), r.statusLabel)
	percent := container.NewGridWrap(fyne.NewSize(PercentLabelWidth, r.percentLabel.MinSize().Height), r.percentLabel)

	header := container.NewBorder(nil, nil, nil, container.NewHBox(status, percent), r.titleLabel)
	footer := container.NewBorder(nil, nil, nil, container.NewHBox(r.revealBtn, r.removeBtn), r.detailLabel)

	return widget.NewSimpleRenderer(container.NewVBox(header, r.progressBar, footer))
}

// detailText is the second line of a row: the error for failed items, the
// file for finished ones, the URL otherwise
func detailText(item model.DownloadItem) string {
	switch item.Status {
	case model.StatusFailed:
		return sanitize(item.Error)
	case model.StatusSuccess:
		if item.FileKnown {
			return item.FilePath
		}
		return item.URL
	default:
		return item.URL
	}
}

// sanitize flattens control whitespace that breaks single-line labels
func sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
