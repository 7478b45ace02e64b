package main

import (
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns the flags accepted before any subcommand.
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=key=value",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.BoolFlag{
			Name:  "verbose",
			Usage: "Stream the debug log to stderr",
		},
		&urfavecli.StringFlag{
			Name:    "base-dir",
			Aliases: []string{"b"},
			Usage:   "Directory holding the workspaces",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the color theme",
		},
		&urfavecli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
		&urfavecli.BoolFlag{
			Name:  "icons",
			Usage: "Show file type icons (needs a Nerd Font)",
		},
	}
}

func commitFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "message",
			Aliases: []string{"m"},
			Usage:   "Commit message",
		},
		&urfavecli.StringSliceFlag{
			Name:    "notify",
			Aliases: []string{"n"},
			Usage:   "User id to notify (repeatable)",
		},
		&urfavecli.BoolFlag{
			Name:  "dry-run",
			Usage: "Validate the commit without persisting it",
		},
	}
}
