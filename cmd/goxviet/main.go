// Command goxviet runs the Vietnamese input pipeline and manages its
// configuration and text-expansion dictionary.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"goxviet/internal/config"
)

var version = "dev"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "goxviet: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "goxviet",
		Usage:   "Vietnamese input for macOS",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "configuration file (toml, json or yaml)",
				Sources: cli.EnvVars("GOXVIET_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			permissionCommand(),
			shortcutsCommand(),
			configCommand(),
		},
	}
}

func configPath(cmd *cli.Command) string {
	if p := cmd.Root().String("config"); p != "" {
		return p
	}
	return config.ConfigPath()
}

// loadConfig reads and validates the configuration named by --config.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.NewLoader(configPath(cmd)).Load()
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
