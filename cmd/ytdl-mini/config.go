package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ytget/ytdl-mini/internal/bootstrap"
	"github.com/ytget/ytdl-mini/internal/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "show or change the settings file",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print the effective settings",
				Action: runConfigShow,
			},
			{
				Name:  "set",
				Usage: "change settings and save them",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "resolution", Usage: "default resolution, e.g. 1920x1080"},
					&cli.StringFlag{Name: "path", Usage: "download `DIR`"},
					&cli.IntFlag{Name: "max", Usage: "maximum concurrent downloads"},
				},
				Action: runConfigSet,
			},
		},
	}
}

func runConfigShow(c *cli.Context) error {
	settings, path := bootstrap.LoadSettings(c.String(configFlag.Name), slog.Default())

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "# %s\n%s", path, out)
	return nil
}

func runConfigSet(c *cli.Context) error {
	path := c.String(configFlag.Name)
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("locating settings file: %w", err)
		}
		path = p
	}

	// Environment overrides are not applied so they never end up in the file
	settings, err := config.Load(path)
	if err != nil {
		return err
	}

	changed := applyConfigFlags(c, &settings)
	if !changed {
		return cli.Exit("nothing to change: use --resolution, --path or --max", 2)
	}
	if err := settings.Validate(); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if err := config.Save(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "saved %s\n", path)
	return nil
}

func applyConfigFlags(c *cli.Context, s *config.Settings) bool {
	changed := false
	if c.IsSet("resolution") {
		s.DefaultResolution = c.String("resolution")
		changed = true
	}
	if c.IsSet("path") {
		s.DownloadPath = c.String("path")
		changed = true
	}
	if c.IsSet("max") {
		s.MaxConcurrentDownloads = c.Int("max")
		changed = true
	}
	return changed
}
