package main

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v3"

	"goxviet/internal/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "write the default configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := configPath(cmd)
					if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
						return cli.Exit(fmt.Sprintf("goxviet: %s exists; use --force to overwrite", path), 1)
					}
					if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
						return err
					}
					fmt.Fprintf(stdout(cmd), "wrote %s\n", path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "print the effective configuration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return toml.NewEncoder(stdout(cmd)).Encode(cfg)
				},
			},
			{
				Name:  "path",
				Usage: "print the configuration file path",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintln(stdout(cmd), configPath(cmd))
					return nil
				},
			},
		},
	}
}
