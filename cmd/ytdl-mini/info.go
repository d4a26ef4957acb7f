package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print video metadata as JSON",
		ArgsUsage: "URL",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one URL is required", 2)
			}
			app, err := wire(c, nil)
			if err != nil {
				return err
			}
			defer app.State.Close()

			meta, err := app.Tool.GetMetadata(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(meta, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding metadata: %w", err)
			}
			fmt.Fprintln(c.App.Writer, string(out))
			return nil
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:      "formats",
		Usage:     "list the formats available for a video",
		ArgsUsage: "URL",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one URL is required", 2)
			}
			app, err := wire(c, nil)
			if err != nil {
				return err
			}
			defer app.State.Close()

			formats, err := app.Tool.GetFormats(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			for _, line := range formats {
				fmt.Fprintln(c.App.Writer, line)
			}
			return nil
		},
	}
}
