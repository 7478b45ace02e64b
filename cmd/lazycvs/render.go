package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/lazycvs/internal/cvs"
	"github.com/chmouel/lazycvs/internal/models"
	"github.com/chmouel/lazycvs/internal/process"
	"github.com/chmouel/lazycvs/internal/theme"
	"github.com/muesli/reflow/indent"
	"golang.org/x/term"
)

const toolOutputIndent = 4

// renderer formats everything lazycvs prints.
type renderer struct {
	theme *theme.Theme
	color bool
	icons bool
}

func newRenderer(themeName string, color, icons bool) *renderer {
	return &renderer{theme: theme.GetTheme(themeName), color: color, icons: icons}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

func (r *renderer) paint(color lipgloss.Color, text string, bold bool) string {
	if !r.color {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Bold(bold).Render(text)
}

// entry renders one status line: code, optional icon, path.
func (r *renderer) entry(e models.StatusEntry) string {
	code := r.paint(r.theme.ModeColor(e.Mode), e.Mode.String(), true)
	name := e.Filename
	if e.IsDir {
		name = r.paint(r.theme.DirFg, name+"/", false)
	}
	if r.icons {
		if icon := entryIcon(e); icon != "" {
			return code + " " + icon + " " + name
		}
	}
	return code + " " + name
}

func (r *renderer) status(zon models.Workspace, snapshot models.Snapshot) string {
	var b strings.Builder
	b.WriteString(r.paint(r.theme.Accent, zon.Name, true))
	b.WriteString(r.paint(r.theme.MutedFg, " ("+zon.Path+")", false))
	b.WriteString("\n")
	if len(snapshot) == 0 {
		b.WriteString(r.paint(r.theme.SuccessFg, "nothing to commit", false))
		b.WriteString("\n")
		return b.String()
	}
	for _, e := range snapshot {
		b.WriteString(r.entry(e))
		b.WriteString("\n")
	}
	return b.String()
}

// diff renders payload as a unified diff, or the content alone when there is
// no committed side.
func (r *renderer) diff(name string, payload *models.DiffPayload) string {
	if payload.Revision == "" {
		return payload.Current
	}
	text := udiff.Unified(name+"@"+payload.Revision, name, payload.Original, payload.Current)
	if text == "" {
		return r.paint(r.theme.MutedFg, "no differences", false) + "\n"
	}
	if !r.color {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			lines[i] = r.paint(r.theme.TextFg, body, true) + nl
		case strings.HasPrefix(body, "@@"):
			lines[i] = r.paint(r.theme.Accent, body, false) + nl
		case strings.HasPrefix(body, "+"):
			lines[i] = r.paint(r.theme.SuccessFg, body, false) + nl
		case strings.HasPrefix(body, "-"):
			lines[i] = r.paint(r.theme.ErrorFg, body, false) + nl
		}
	}
	return strings.Join(lines, "")
}

// toolOutput indents verbatim tool output under a heading.
func (r *renderer) toolOutput(heading, output string) string {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return r.paint(r.theme.MutedFg, heading, false) + "\n"
	}
	return r.paint(r.theme.MutedFg, heading, false) + "\n" + indent.String(output, toolOutputIndent) + "\n"
}

func (r *renderer) success(msg string) string {
	return r.paint(r.theme.SuccessFg, msg, false)
}

// errorText explains err. Tool diagnostics are shown verbatim; launch and
// signal failures are labelled as infrastructure problems.
func (r *renderer) errorText(err error) string {
	if err == nil {
		return ""
	}
	label := "Error"
	if process.IsInfrastructure(err) {
		label = "Infrastructure error"
	}
	head := r.paint(r.theme.ErrorFg, label+": ", true) + err.Error()

	var lintErr *cvs.LintError
	if errors.As(err, &lintErr) && strings.TrimSpace(lintErr.Stdout) != "" {
		return head + "\n" + indent.String(strings.TrimRight(lintErr.Stdout, "\n"), toolOutputIndent)
	}
	var commitErr *cvs.CommitError
	if errors.As(err, &commitErr) {
		return head
	}
	if stdout, _, ok := process.ToolOutput(err); ok && strings.TrimSpace(stdout) != "" {
		return head + "\n" + indent.String(strings.TrimRight(stdout, "\n"), toolOutputIndent)
	}
	return head
}

func (r *renderer) stashes(list []models.StashEntry) string {
	if len(list) == 0 {
		return r.paint(r.theme.MutedFg, "no stashes", false) + "\n"
	}
	var b strings.Builder
	for _, s := range list {
		fmt.Fprintf(&b, "%s %s\n", r.paint(r.theme.Accent, s.Name, true), r.paint(r.theme.MutedFg, s.Path, false))
	}
	return b.String()
}
