package main

import (
	"context"
	"flag"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"github.com/ytget/ytdl-mini/internal/bootstrap"
	"github.com/ytget/ytdl-mini/internal/logging"
	"github.com/ytget/ytdl-mini/internal/ui"
	"github.com/ytget/ytdl-mini/internal/ytdlp"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const AppID = "com.ytget.ytdl-mini"

func main() {
	configPath := flag.String("config", "", "settings file (default: user config dir)")
	ytdlpPath := flag.String("ytdlp", "", "path to the yt-dlp executable")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := logging.Setup(logging.Options{Verbose: *verbose})
	logger.Info("starting", "version", version)
	bootstrap.LoadDotEnv(logger)

	wired := bootstrap.New(bootstrap.Options{
		ConfigPath:  *configPath,
		Logger:      logger,
		ToolOptions: []ytdlp.Option{ytdlp.WithPath(*ytdlpPath)},
	})
	defer wired.State.Close()

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s %s", ui.WindowTitle, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	root := ui.NewRootUI(myWindow, wired.State, logger)
	root.SetToolPending()

	// yt-dlp may need to be installed; the window stays usable meanwhile
	// but new downloads wait for it
	go func() {
		err := wired.Tool.Initialize(context.Background())
		fyne.Do(func() {
			root.SetToolReady(err)
			if err != nil {
				dialog.ShowError(err, myWindow)
			}
		})
		if err != nil {
			logger.Error("yt-dlp unavailable", "err", err)
			return
		}
		if v, err := wired.Tool.Version(context.Background()); err == nil {
			logger.Info("yt-dlp ready", "path", wired.Tool.Path(), "version", v)
		}
	}()

	myWindow.ShowAndRun()
}
