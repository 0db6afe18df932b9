package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"goxviet/internal/platform"
)

func permissionCommand() *cli.Command {
	return &cli.Command{
		Name:  "permission",
		Usage: "check the accessibility permission",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "prompt", Usage: "ask the system to show its permission dialog"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return checkPermission(cmd, platform.Native().Permission)
		},
	}
}

func checkPermission(cmd *cli.Command, perm platform.Permission) error {
	trusted := perm.Trusted()
	if !trusted && cmd.Bool("prompt") {
		trusted = perm.Prompt()
	}
	if trusted {
		fmt.Fprintln(stdout(cmd), "accessibility: granted")
		return nil
	}
	fmt.Fprintln(stdout(cmd), "accessibility: not granted")
	return cli.Exit("", 1)
}
