package main

import (
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/ytget/ytdl-mini/internal/api"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: api.DefaultAddr, Usage: "listen address", EnvVars: []string{"YTDL_ADDR"}},
			&cli.StringSliceFlag{Name: "cors-origin", Usage: "allowed CORS origin, repeatable", EnvVars: []string{"YTDL_CORS_ORIGINS"}},
		},
		Action: func(c *cli.Context) error {
			app, err := wire(c, nil)
			if err != nil {
				return err
			}
			defer app.State.Close()

			srv := api.NewServer(app.State,
				api.WithLogger(slog.Default()),
				api.WithCORSOrigins(c.StringSlice("cors-origin")))
			return srv.Run(c.Context, c.String("addr"))
		},
	}
}
