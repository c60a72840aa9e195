package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/engine"
	"github.com/crolly/mug/internal/materialize"
)

// printResult writes the files touched by an operation, followed by
// warnings and deleted user edits.
func printResult(w io.Writer, headline string, res *engine.Result) {
	th := deps.Theme
	if res.DryRun {
		printPreview(w, res)
		return
	}
	fmt.Fprintln(w, th.Success(headline))

	for _, a := range res.Actions {
		if a.Kind == materialize.ActionUnchanged {
			continue
		}
		fmt.Fprintln(w, th.Bullet(actionMarker(a.Kind), fmt.Sprintf("%-8s %s", a.Kind, a.Path)))
	}
	for _, c := range res.Changelog {
		deps.Logger.Debug("model changed", "type", c.Type, "path", strings.Join(c.Path, "."))
	}
	for _, warn := range res.Warnings {
		fmt.Fprintln(w, th.Warning(warn))
	}
	if len(res.UnbackedEdits) > 0 {
		fmt.Fprintln(w, th.Warning("deleted files that contained your edits:"))
		for _, p := range res.UnbackedEdits {
			fmt.Fprintln(w, th.Bullet("-", p))
		}
	}
}

// printPreview writes the model changes and descriptor diff of a dry run.
func printPreview(w io.Writer, res *engine.Result) {
	th := deps.Theme
	fmt.Fprintln(w, th.Title("Dry run, nothing written"))
	for _, c := range res.Changelog {
		fmt.Fprintln(w, th.Bullet("~", fmt.Sprintf("%s %s", c.Type, strings.Join(c.Path, "."))))
	}
	if res.DescriptorDiff == "" {
		fmt.Fprintln(w, th.Muted(defs.DescriptorFile+" unchanged"))
		return
	}
	fmt.Fprint(w, res.DescriptorDiff)
}

func actionMarker(k materialize.ActionKind) string {
	switch k {
	case materialize.ActionCreated:
		return "+"
	case materialize.ActionDeleted:
		return "-"
	case materialize.ActionMoved:
		return ">"
	case materialize.ActionSkipped:
		return "!"
	default:
		return "~"
	}
}
