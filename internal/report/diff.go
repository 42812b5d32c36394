package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/runner"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

// WriteDiff writes a unified diff for every changed file.
func WriteDiff(w io.Writer, rep *runner.Report, opts Options) error {
	pal := newPalette(opts.Color)

	for i := range rep.Files {
		res := &rep.Files[i]
		if !res.Changed() {
			continue
		}

		name := sanitize(res.Path)
		if err := writeUnified(w, pal, name, name, string(res.Original), string(res.Rewritten)); err != nil {
			return fmt.Errorf("diff %s: %w", name, err)
		}
	}

	return nil
}

// Unified renders the unified diff between before and after. It returns the
// empty string when they are equal.
func Unified(name, before, after string) string {
	var sb strings.Builder

	_ = writeUnified(&sb, newPalette(false), name, name, before, after) //nolint:errcheck // strings.Builder never fails

	return sb.String()
}

type lineOp struct {
	kind byte
	text string
}

func lineOps(before, after string) []lineOp {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []lineOp

	for _, d := range diffs {
		kind := byte(' ')

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			kind = '-'
		case diffmatchpatch.DiffInsert:
			kind = '+'
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				ops = append(ops, lineOp{kind: kind, text: line})
			}
		}
	}

	return ops
}

// hunks groups ops into [start, end) ranges, merging changes separated by
// at most twice the context.
func hunks(ops []lineOp) [][2]int {
	var out [][2]int

	for i := 0; i < len(ops); {
		if ops[i].kind == ' ' {
			i++

			continue
		}

		start := max(i-contextLines, 0)
		end := i

		for end < len(ops) {
			if ops[end].kind != ' ' {
				end++

				continue
			}

			run := end
			for run < len(ops) && ops[run].kind == ' ' {
				run++
			}

			if run == len(ops) || run-end > 2*contextLines {
				end = min(end+contextLines, len(ops))

				break
			}

			end = run
		}

		out = append(out, [2]int{start, end})
		i = end
	}

	return out
}

func writeUnified(w io.Writer, pal palette, oldName, newName, before, after string) error {
	ops := lineOps(before, after)

	groups := hunks(ops)
	if len(groups) == 0 {
		return nil
	}

	// oldAt[i] and newAt[i] count the lines preceding ops[i] on each side.
	oldAt := make([]int, len(ops)+1)
	newAt := make([]int, len(ops)+1)

	for i, op := range ops {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]

		if op.kind != '+' {
			oldAt[i+1]++
		}

		if op.kind != '-' {
			newAt[i+1]++
		}
	}

	var sb strings.Builder

	sb.WriteString(pal.removed.Sprintf("--- a/%s", oldName) + "\n")
	sb.WriteString(pal.added.Sprintf("+++ b/%s", newName) + "\n")

	for _, g := range groups {
		oldCount := oldAt[g[1]] - oldAt[g[0]]
		newCount := newAt[g[1]] - newAt[g[0]]

		sb.WriteString(pal.meta.Sprintf("@@ -%s +%s @@",
			hunkRange(oldAt[g[0]], oldCount), hunkRange(newAt[g[0]], newCount)) + "\n")

		for _, op := range ops[g[0]:g[1]] {
			line := string(op.kind) + strings.TrimSuffix(op.text, "\n")

			switch op.kind {
			case '-':
				line = pal.removed.Sprint(line)
			case '+':
				line = pal.added.Sprint(line)
			}

			sb.WriteString(line + "\n")

			if !strings.HasSuffix(op.text, "\n") {
				sb.WriteString("\\ No newline at end of file\n")
			}
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	return nil
}

// hunkRange formats a hunk side. An empty side points at the line before it.
func hunkRange(before, count int) string {
	start := before + 1
	if count == 0 {
		start = before
	}

	if count == 1 {
		return fmt.Sprintf("%d", start)
	}

	return fmt.Sprintf("%d,%d", start, count)
}
