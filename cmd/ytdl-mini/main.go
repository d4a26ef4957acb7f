// Command ytdl-mini is the headless front end: it queues downloads from the
// command line, prints metadata and formats, edits the settings file and serves
// the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ytget/ytdl-mini/internal/bootstrap"
	"github.com/ytget/ytdl-mini/internal/config"
	"github.com/ytget/ytdl-mini/internal/logging"
	"github.com/ytget/ytdl-mini/internal/ytdlp"
)

var version = "dev"

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "settings file `PATH` (default: user config dir)",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "enable debug logging",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Value: logging.FormatText,
		Usage: "log output format: text or json",
	}
	ytdlpFlag = &cli.StringFlag{
		Name:    "ytdlp",
		Usage:   "path to the yt-dlp executable",
		EnvVars: []string{"YTDL_YTDLP_PATH"},
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "ytdl-mini",
		Usage:   "queue and download videos with yt-dlp",
		Version: version,
		Flags:   []cli.Flag{configFlag, verboseFlag, logFormatFlag, ytdlpFlag},
		Before: func(c *cli.Context) error {
			logger := logging.Setup(logging.Options{
				Verbose: c.Bool(verboseFlag.Name),
				Format:  c.String(logFormatFlag.Name),
				Output:  c.App.ErrWriter,
			})
			bootstrap.LoadDotEnv(logger)
			return nil
		},
		Commands: []*cli.Command{
			getCommand(),
			infoCommand(),
			formatsCommand(),
			serveCommand(),
			configCommand(),
		},
	}
}

// wire builds the components for a command and makes sure yt-dlp is usable
func wire(c *cli.Context, override func(*config.Settings)) (*bootstrap.App, error) {
	app := bootstrap.New(bootstrap.Options{
		ConfigPath:  c.String(configFlag.Name),
		Override:    override,
		ToolOptions: []ytdlp.Option{ytdlp.WithPath(c.String(ytdlpFlag.Name))},
	})

	if err := app.Tool.Initialize(c.Context); err != nil {
		app.State.Close()
		return nil, err
	}
	return app, nil
}
