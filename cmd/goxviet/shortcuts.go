package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"goxviet/internal/expansion"
)

func shortcutsCommand() *cli.Command {
	dbFlag := &cli.StringFlag{Name: "db", Usage: "dictionary database (default from config)"}
	return &cli.Command{
		Name:        "shortcuts",
		Usage:       "manage the text-expansion dictionary",
		Description: "Changes reach a running goxviet on its next config reload or input method change.",
		Flags:       []cli.Flag{dbFlag},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "print every entry",
				Action: withStore(listShortcuts),
			},
			{
				Name:      "add",
				Usage:     "add or replace an entry",
				ArgsUsage: "<trigger> <replacement>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "method", Value: "all", Usage: "all, telex or vni"},
					&cli.BoolFlag{Name: "immediate", Usage: "expand without waiting for a word boundary"},
					&cli.BoolFlag{Name: "disabled", Usage: "store the entry switched off"},
				},
				Action: withStore(addShortcut),
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "remove an entry",
				ArgsUsage: "<trigger>",
				Action:    withStore(removeShortcut),
			},
			{
				Name:      "import",
				Usage:     "import a JSON document",
				ArgsUsage: "<file|->",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "replace", Usage: "empty the dictionary first"},
				},
				Action: withStore(importShortcuts),
			},
			{
				Name:      "export",
				Usage:     "write the dictionary as a JSON document",
				ArgsUsage: "[file|-]",
				Action:    withStore(exportShortcuts),
			},
		},
	}
}

func withStore(fn func(cmd *cli.Command, s *expansion.Store) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.String("db")
		if path == "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path = cfg.Expansion.DatabasePath
		}
		s, err := expansion.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, s)
	}
}

func listShortcuts(cmd *cli.Command, s *expansion.Store) error {
	entries, err := s.List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRIGGER\tREPLACEMENT\tMETHOD\tCONDITION\tENABLED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", e.Trigger, e.Replacement, e.Method, e.Condition, e.Enabled)
	}
	return tw.Flush()
}

func addShortcut(cmd *cli.Command, s *expansion.Store) error {
	if cmd.Args().Len() != 2 {
		return cli.Exit("usage: goxviet shortcuts add <trigger> <replacement>", 2)
	}
	m, err := expansion.ParseMethod(cmd.String("method"))
	if err != nil {
		return err
	}
	e := expansion.New(cmd.Args().Get(0), cmd.Args().Get(1))
	e.Method = m
	e.Enabled = !cmd.Bool("disabled")
	if cmd.Bool("immediate") {
		e.Condition = expansion.Immediate
	}
	if err := s.Put(e); err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "added %s\n", e.Normalize().Trigger)
	return nil
}

func removeShortcut(cmd *cli.Command, s *expansion.Store) error {
	if cmd.Args().Len() != 1 {
		return cli.Exit("usage: goxviet shortcuts remove <trigger>", 2)
	}
	return s.Delete(cmd.Args().First())
}

func importShortcuts(cmd *cli.Command, s *expansion.Store) error {
	if cmd.Args().Len() != 1 {
		return cli.Exit("usage: goxviet shortcuts import <file|->", 2)
	}
	var r io.Reader
	if name := cmd.Args().First(); name == "-" {
		r = stdin(cmd)
	} else {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	doc, err := expansion.Decode(r)
	if err != nil {
		return err
	}
	res, err := s.Import(doc, cmd.Bool("replace"))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "added %d, updated %d, skipped %d\n", res.Added, res.Updated, res.Skipped)
	return nil
}

func exportShortcuts(cmd *cli.Command, s *expansion.Store) error {
	doc, err := s.Export()
	if err != nil {
		return err
	}
	name := cmd.Args().First()
	if name == "" || name == "-" {
		return expansion.Encode(stdout(cmd), doc)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := expansion.Encode(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
