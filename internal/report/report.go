// Package report renders runner reports as tables, JSON or unified diffs.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/runner"
)

// Format selects how a report is rendered.
type Format string

// Supported formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatDiff  Format = "diff"
)

// ErrUnknownFormat is returned for format names other than the supported ones.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported format names.
func Formats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatDiff)}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatTable, FormatJSON, FormatDiff:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
}

// Options tunes rendering.
type Options struct {
	// Color enables ANSI colors in table and diff output.
	Color bool
}

// Write renders rep to w in the given format.
func Write(w io.Writer, rep *runner.Report, format Format, opts Options) error {
	switch format {
	case FormatTable:
		return WriteTable(w, rep, opts)
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatDiff:
		return WriteDiff(w, rep, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// sanitize strips control characters so file names and error text cannot
// drive the terminal.
func sanitize(input string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, input)
}
