package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/ytget/ytdl-mini/internal/appstate"
	"github.com/ytget/ytdl-mini/internal/config"
	"github.com/ytget/ytdl-mini/internal/model"
	"github.com/ytget/ytdl-mini/internal/validator"
)

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "download one or more videos or playlists",
		ArgsUsage: "URL...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "download `DIR`"},
			&cli.StringFlag{Name: "resolution", Aliases: []string{"r"}, Usage: "maximum resolution, e.g. 1280x720"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "concurrent downloads"},
			&cli.BoolFlag{Name: "no-progress", Usage: "do not draw a progress bar"},
		},
		Action: runGet,
	}
}

func runGet(c *cli.Context) error {
	urls := c.Args().Slice()
	if len(urls) == 0 {
		return cli.Exit("at least one URL is required", 2)
	}
	if c.IsSet("resolution") {
		if _, ok := config.ParseResolution(c.String("resolution")); !ok {
			return cli.Exit(fmt.Sprintf("invalid resolution %q", c.String("resolution")), 2)
		}
	}

	app, err := wire(c, func(s *config.Settings) {
		if c.IsSet("output") {
			s.DownloadPath = c.String("output")
		}
		if c.IsSet("resolution") {
			s.DefaultResolution = c.String("resolution")
		}
		if c.IsSet("jobs") {
			s.MaxConcurrentDownloads = config.ClampConcurrent(c.Int("jobs"))
		}
	})
	if err != nil {
		return err
	}
	defer app.State.Close()

	bar := newBar(c.App.ErrWriter, len(urls), c.Bool("no-progress"))
	tracker := newFinishTracker(bar)
	app.State.OnUpdate(tracker.observe)

	ids := queueAll(c.Context, app.State, urls, c.App.ErrWriter)
	if len(ids) == 0 {
		return cli.Exit("nothing to download", 1)
	}
	bar.ChangeMax(len(ids))

	done := make(chan struct{})
	go func() {
		app.State.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-c.Context.Done():
		// Close fails the running items; pending ones never start
		app.State.Close()
		<-done
	}
	bar.Finish()
	fmt.Fprintln(c.App.ErrWriter)

	failed := printOutcomes(c.App.Writer, app.State, ids)
	if c.Context.Err() != nil {
		return cli.Exit("interrupted", 130)
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d downloads failed", failed, len(ids)), 1)
	}
	return nil
}

// queueAll submits every URL, expanding playlists, and returns the item IDs.
// Rejected URLs are reported and skipped.
func queueAll(ctx context.Context, state *appstate.State, urls []string, errOut io.Writer) []string {
	var ids []string
	for _, u := range urls {
		if _, ok := validator.ExtractPlaylistID(u); ok {
			got, err := state.AddPlaylist(ctx, u)
			if err != nil {
				fmt.Fprintf(errOut, "skipping %s: %v\n", u, err)
				continue
			}
			ids = append(ids, got...)
			continue
		}

		id, err := state.AddDownload(u)
		if err != nil {
			fmt.Fprintf(errOut, "skipping %s: %v\n", u, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// printOutcomes writes one line per item and returns how many did not succeed
func printOutcomes(w io.Writer, state *appstate.State, ids []string) int {
	failed := 0
	for _, id := range ids {
		item, ok := state.GetDownload(id)
		if !ok {
			continue
		}
		switch item.Status {
		case model.StatusSuccess:
			fmt.Fprintf(w, "ok      %s\t%s\n", item.GetDisplayTitle(), item.FilePath)
		case model.StatusFailed:
			failed++
			fmt.Fprintf(w, "failed  %s\t%s\n", item.GetDisplayTitle(), item.Error)
		default:
			failed++
			fmt.Fprintf(w, "%-7s %s\n", item.Status, item.GetDisplayTitle())
		}
	}
	return failed
}

func newBar(w io.Writer, n int, hidden bool) *progressbar.ProgressBar {
	if hidden {
		w = io.Discard
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
	)
}

// finishTracker advances the bar once for every item reaching a terminal status
type finishTracker struct {
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	seen map[string]bool
}

func newFinishTracker(bar *progressbar.ProgressBar) *finishTracker {
	return &finishTracker{bar: bar, seen: make(map[string]bool)}
}

func (t *finishTracker) observe(item model.DownloadItem) {
	if !item.Status.IsFinished() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seen[item.ID] {
		return
	}
	t.seen[item.ID] = true
	t.bar.Describe(item.GetDisplayTitle())
	t.bar.Add(1)
}

func (t *finishTracker) finished() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
