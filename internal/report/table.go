package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/runner"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/safeconv"
)

// File status labels.
const (
	statusRewritten    = "rewritten"
	statusWouldRewrite = "would rewrite"
	statusUnchanged    = "unchanged"
	statusError        = "error"
)

// WriteTable renders one row per file followed by a totals footer and the
// list of failures.
func WriteTable(w io.Writer, rep *runner.Report, opts Options) error {
	pal := newPalette(opts.Color)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"File", "Language", "Status", "Rewrites", "Size"})

	for i := range rep.Files {
		res := &rep.Files[i]

		tbl.AppendRow(table.Row{
			sanitize(res.Path),
			res.Language,
			pal.status(fileStatus(res, rep.DryRun)),
			len(res.Changes),
			humanize.Bytes(safeconv.MustIntToUint64(res.BytesIn)),
		})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d files", len(rep.Files)),
		"",
		fmt.Sprintf("%d changed, %d errors", rep.ChangedFiles(), rep.Errors()),
		rep.TotalChanges(),
		humanize.Bytes(safeconv.MustInt64ToUint64(rep.BytesIn())),
	})

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	if _, err := fmt.Fprintf(w, "done in %s\n", rep.Duration.Round(time.Millisecond)); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	for i := range rep.Files {
		res := &rep.Files[i]
		if res.Err == nil {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s %s: %s\n", pal.err.Sprint("error"), sanitize(res.Path), sanitize(res.Err.Error())); err != nil {
			return fmt.Errorf("write table: %w", err)
		}
	}

	return nil
}

func fileStatus(res *runner.FileResult, dryRun bool) string {
	switch {
	case res.Err != nil:
		return statusError
	case !res.Changed():
		return statusUnchanged
	case dryRun:
		return statusWouldRewrite
	default:
		return statusRewritten
	}
}

type palette struct {
	ok, warn, err, meta, added, removed *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		ok:      color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
		meta:    color.New(color.FgCyan),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}

	for _, c := range []*color.Color{p.ok, p.warn, p.err, p.meta, p.added, p.removed} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p palette) status(s string) string {
	switch s {
	case statusRewritten:
		return p.ok.Sprint(s)
	case statusWouldRewrite:
		return p.warn.Sprint(s)
	case statusError:
		return p.err.Sprint(s)
	default:
		return s
	}
}
