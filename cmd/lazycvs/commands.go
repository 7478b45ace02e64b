package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chmouel/lazycvs/internal/buildinfo"
	"github.com/chmouel/lazycvs/internal/config"
	"github.com/chmouel/lazycvs/internal/cvs"
	"github.com/chmouel/lazycvs/internal/log"
	"github.com/chmouel/lazycvs/internal/session"
	"github.com/chmouel/lazycvs/internal/theme"
	"github.com/chmouel/lazycvs/internal/utils"
	"github.com/chmouel/lazycvs/internal/watch"
	"github.com/chmouel/lazycvs/internal/workspace"
	urfavecli "github.com/urfave/cli/v3"
)

// cliApp is the state shared by every subcommand of one invocation.
type cliApp struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	runner cvs.Runner

	cfg     *config.AppConfig
	svc     *cvs.Service
	session *session.Session
	render  *renderer
}

func newCLIApp(runner cvs.Runner) *cliApp {
	return &cliApp{
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
		runner: runner,
		render: newRenderer(theme.DefaultName, false, false),
	}
}

func newRootCommand(app *cliApp) *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "lazycvs",
		Usage:     "Inspect and act on the local changes of CVS workspaces",
		Version:   buildinfo.Get().Version,
		Writer:    app.stdout,
		ErrWriter: app.stderr,
		Flags:     globalFlags(),
		Before:    app.setup,
		After: func(context.Context, *urfavecli.Command) error {
			return log.Close()
		},
		Action: app.statusAction,
		Commands: []*urfavecli.Command{
			{
				Name:   "zons",
				Usage:  "List the workspaces under the base directory",
				Action: app.zonsAction,
			},
			{
				Name:      "switch",
				Usage:     "Make a workspace current",
				ArgsUsage: "<zon>",
				Action:    app.switchAction,
			},
			{
				Name:    "status",
				Aliases: []string{"st"},
				Usage:   "List local changes of the current workspace",
				Action:  app.statusAction,
			},
			{
				Name:      "diff",
				Usage:     "Show a file against its committed revision",
				ArgsUsage: "<file>",
				Action:    app.diffAction,
			},
			{
				Name:      "add",
				Usage:     "Schedule untracked files for addition",
				ArgsUsage: "<file>...",
				Action:    app.addAction,
			},
			{
				Name:      "remove",
				Usage:     "Schedule locally deleted files for removal",
				ArgsUsage: "<file>...",
				Action:    app.removeAction,
			},
			{
				Name:      "discard",
				Usage:     "Drop local changes (cannot be undone)",
				ArgsUsage: "<file>...",
				Action:    app.discardAction,
			},
			{
				Name:      "commit",
				Aliases:   []string{"ci"},
				Usage:     "Commit files, or every change when none is given",
				ArgsUsage: "[file]...",
				Flags:     commitFlags(),
				Action:    app.commitAction,
			},
			{
				Name:      "stash",
				Usage:     "Move local edits of modified files into a patch",
				ArgsUsage: "<file>...",
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{Name: "name", Usage: "Stash name (generated when empty)"},
				},
				Action: app.stashAction,
			},
			{
				Name:   "stashes",
				Usage:  "List saved stashes",
				Action: app.stashesAction,
			},
			{
				Name:      "apply",
				Usage:     "Apply a stash and delete it",
				ArgsUsage: "<name>",
				Action:    app.applyAction,
			},
			{
				Name:      "lint",
				Usage:     "Run the linter over changed files",
				ArgsUsage: "[file]...",
				Action:    app.lintAction,
			},
			{
				Name:      "save",
				Usage:     "Replace a file's content with standard input",
				ArgsUsage: "<file>",
				Action:    app.saveAction,
			},
			{
				Name:   "watch",
				Usage:  "Print status whenever the workspace changes",
				Action: app.watchAction,
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(_ context.Context, _ *urfavecli.Command) error {
					_, err := fmt.Fprintln(app.stdout, buildinfo.Get().String())
					return err
				},
			},
		},
	}
}

// setup loads configuration and builds the session before any action runs.
func (a *cliApp) setup(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
	if debugLog := cmd.String("debug-log"); debugLog != "" {
		if err := setDebugLog(debugLog); err != nil {
			fmt.Fprintf(a.stderr, "Error opening debug log file %q: %v\n", debugLog, err)
		}
	}

	cfg, err := config.LoadConfig(cmd.String("config-file"))
	if err != nil {
		fmt.Fprintf(a.stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if overrides := cmd.StringSlice("config"); len(overrides) > 0 {
		if err := cfg.ApplyCLIOverrides(overrides); err != nil {
			return ctx, fmt.Errorf("error applying config overrides: %w", err)
		}
	}
	if baseDir := cmd.String("base-dir"); baseDir != "" {
		expanded, err := utils.ExpandPath(baseDir)
		if err != nil {
			return ctx, fmt.Errorf("error expanding base-dir: %w", err)
		}
		cfg.BaseDir = expanded
	}
	if name := cmd.String("theme"); name != "" {
		normalized := theme.Normalize(name)
		if normalized == "" {
			return ctx, fmt.Errorf("unknown theme %q", name)
		}
		cfg.Theme = normalized
	}
	if cmd.Bool("icons") {
		cfg.ShowIcons = true
	}

	switch {
	case cmd.Bool("verbose"):
		log.SetOutput(a.stderr)
	case cmd.String("debug-log") == "":
		if err := setDebugLog(cfg.DebugLog); err != nil {
			fmt.Fprintf(a.stderr, "Error opening debug log file from config %q: %v\n", cfg.DebugLog, err)
		}
	}

	a.cfg = cfg
	a.svc = cvs.NewService(a.runner, cfg)
	a.session = session.New(cfg, a.svc, workspace.NewStore(cfg.StateDir))
	a.render = newRenderer(cfg.Theme, !cmd.Bool("no-color") && isTerminal(a.stdout), cfg.ShowIcons)
	return ctx, nil
}

// setDebugLog points the debug log at path. An empty path discards what
// was buffered so far.
func setDebugLog(path string) error {
	if path == "" {
		return log.SetFile("")
	}
	if expanded, err := utils.ExpandPath(path); err == nil {
		path = expanded
	}
	return log.SetFile(path)
}

func (a *cliApp) print(text string) error {
	_, err := io.WriteString(a.stdout, text)
	return err
}

func requireArgs(cmd *urfavecli.Command, what string) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: missing %s", cmd.Name, what)
	}
	return args, nil
}

// refreshAndSelect lists status and selects files, or everything when files
// is empty.
func (a *cliApp) refreshAndSelect(ctx context.Context, files []string) error {
	if _, err := a.session.Refresh(ctx); err != nil {
		return err
	}
	if len(files) == 0 {
		a.session.SelectAll()
		return nil
	}
	return a.session.Select(files...)
}

func (a *cliApp) zonsAction(_ context.Context, _ *urfavecli.Command) error {
	zones, err := a.session.Zones()
	if err != nil {
		return err
	}
	if len(zones) == 0 {
		return workspace.ErrNoWorkspaces
	}
	current, _ := a.session.Current()
	for _, zon := range zones {
		marker := "  "
		if zon.Path == current.Path {
			marker = a.render.paint(a.render.theme.Accent, "* ", true)
		}
		if err := a.print(marker + zon.Name + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (a *cliApp) switchAction(_ context.Context, cmd *urfavecli.Command) error {
	args, err := requireArgs(cmd, "workspace name")
	if err != nil {
		return err
	}
	zon, err := a.session.Switch(args[0])
	if err != nil {
		return err
	}
	return a.print(a.render.success("switched to "+zon.Name) + "\n")
}

func (a *cliApp) statusAction(ctx context.Context, _ *urfavecli.Command) error {
	if _, err := a.session.Refresh(ctx); err != nil {
		return err
	}
	zon, err := a.session.Current()
	if err != nil {
		return err
	}
	return a.print(a.render.status(zon, a.session.Snapshot()))
}

func (a *cliApp) diffAction(ctx context.Context, cmd *urfavecli.Command) error {
	args, err := requireArgs(cmd, "file")
	if err != nil {
		return err
	}
	if _, err := a.session.Refresh(ctx); err != nil {
		return err
	}
	payload, err := a.session.View(ctx, args[0])
	if err != nil {
		return err
	}
	return a.print(a.render.diff(args[0], payload))
}

// stageAction runs a mode-checked add or remove and reports each file.
func (a *cliApp) stageAction(ctx context.Context, cmd *urfavecli.Command, op func(context.Context, ...string) error) error {
	args, err := requireArgs(cmd, "file")
	if err != nil {
		return err
	}
	if err := op(ctx, args...); err != nil {
		return err
	}
	for _, arg := range args {
		if err := a.print(a.render.success(cmd.Name+": "+arg) + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (a *cliApp) addAction(ctx context.Context, cmd *urfavecli.Command) error {
	return a.stageAction(ctx, cmd, a.session.AddFiles)
}

func (a *cliApp) removeAction(ctx context.Context, cmd *urfavecli.Command) error {
	return a.stageAction(ctx, cmd, a.session.RemoveFiles)
}

func (a *cliApp) discardAction(ctx context.Context, cmd *urfavecli.Command) error {
	args, err := requireArgs(cmd, "file")
	if err != nil {
		return err
	}
	if err := a.refreshAndSelect(ctx, args); err != nil {
		return err
	}
	if !a.session.CanDiscard() {
		return errors.New("selection contains files with nothing to discard")
	}
	if err := a.session.DiscardSelection(ctx); err != nil {
		return err
	}
	return a.print(a.render.success(fmt.Sprintf("discarded %d file(s)", len(args))) + "\n")
}

func (a *cliApp) commitAction(ctx context.Context, cmd *urfavecli.Command) error {
	if err := a.refreshAndSelect(ctx, cmd.Args().Slice()); err != nil {
		return err
	}
	if len(a.session.Selection()) == 0 {
		return session.ErrEmptySelection
	}
	out, err := a.session.CommitSelection(ctx, cmd.String("message"), cvs.CommitOptions{
		DryRun: cmd.Bool("dry-run"),
		Notify: cmd.StringSlice("notify"),
	})
	if err != nil {
		return err
	}
	heading := "committed"
	if cmd.Bool("dry-run") {
		heading = "dry run passed"
	}
	return a.print(a.render.toolOutput(heading, out))
}

func (a *cliApp) stashAction(ctx context.Context, cmd *urfavecli.Command) error {
	args, err := requireArgs(cmd, "file")
	if err != nil {
		return err
	}
	if err := a.refreshAndSelect(ctx, args); err != nil {
		return err
	}
	stash, err := a.session.StashSelection(ctx, cmd.String("name"))
	if err != nil {
		return err
	}
	return a.print(a.render.success("stashed as "+stash.Name) + "\n")
}

func (a *cliApp) stashesAction(_ context.Context, _ *urfavecli.Command) error {
	list, err := a.session.Stashes()
	if err != nil {
		return err
	}
	return a.print(a.render.stashes(list))
}

func (a *cliApp) applyAction(ctx context.Context, cmd *urfavecli.Command) error {
	args, err := requireArgs(cmd, "stash name")
	if err != nil {
		return err
	}
	out, err := a.session.ApplyStash(ctx, args[0])
	if err != nil {
		return err
	}
	return a.print(a.render.toolOutput("applied "+args[0], out))
}

func (a *cliApp) lintAction(ctx context.Context, cmd *urfavecli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		if _, err := a.session.Refresh(ctx); err != nil {
			return err
		}
		for _, entry := range a.session.Snapshot() {
			if !entry.IsDir && !entry.Mode.IsRemoval() {
				files = append(files, entry.Filename)
			}
		}
	}
	zon, err := a.session.Current()
	if err != nil {
		return err
	}
	checked := a.svc.LintFiles(files)
	if err := a.svc.Lint(ctx, zon.Path, files); err != nil {
		return err
	}
	if len(checked) == 0 {
		return a.print("nothing to lint\n")
	}
	return a.print(a.render.success(fmt.Sprintf("lint passed for %d file(s)", len(checked))) + "\n")
}

func (a *cliApp) saveAction(_ context.Context, cmd *urfavecli.Command) error {
	args, err := requireArgs(cmd, "file")
	if err != nil {
		return err
	}
	content, err := io.ReadAll(a.stdin)
	if err != nil {
		return err
	}
	if err := a.session.Save(args[0], string(content)); err != nil {
		return err
	}
	return a.print(a.render.success("saved "+args[0]) + "\n")
}

func (a *cliApp) watchAction(ctx context.Context, cmd *urfavecli.Command) error {
	if err := a.statusAction(ctx, cmd); err != nil {
		return err
	}
	zon, err := a.session.Current()
	if err != nil {
		return err
	}
	w := watch.New(zon.Path, a.cfg.WatchDebounce, log.Printf)
	return w.Run(ctx, func(ctx context.Context) error {
		changed, err := a.session.Refresh(ctx)
		if err != nil {
			fmt.Fprintln(a.stderr, a.render.errorText(err))
			return err
		}
		if !changed {
			return nil
		}
		return a.print(a.render.status(zon, a.session.Snapshot()))
	})
}
