// Package main is the entry point for the lazycvs command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chmouel/lazycvs/internal/buildinfo"
	"github.com/chmouel/lazycvs/internal/process"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := newCLIApp(process.NewExec())
	err := newRootCommand(app).Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, app.render.errorText(err))
		os.Exit(1)
	}
}
