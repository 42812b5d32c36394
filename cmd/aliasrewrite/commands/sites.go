package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/config"
	"github.com/Sumatoshi-tech/aliasrewrite/internal/report"
	"github.com/Sumatoshi-tech/aliasrewrite/internal/runner"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/parse"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/rewrite"
)

// siteLine is a site with its 1-based line and column.
type siteLine struct {
	rewrite.Site

	Line   int `json:"line"`
	Column int `json:"column"`
}

// NewSitesCommand creates the sites command.
func NewSitesCommand(g *GlobalOptions) *cobra.Command {
	format := string(report.FormatTable)

	cmd := &cobra.Command{
		Use:   "sites <file>",
		Short: "List the module specifiers of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig(g.ConfigPath)
			if err != nil {
				return err
			}

			maxSize, err := cfg.MaxFileSizeBytes()
			if err != nil {
				return err
			}

			content, path, err := runner.ReadSource(args[0], maxSize)
			if err != nil {
				return err
			}

			sf, err := parse.NewParser().Parse(cmd.Context(), path, content)
			if err != nil {
				return err
			}

			sites := locate(content, rewrite.Sites(sf))

			if f == report.FormatJSON {
				return writeSitesJSON(cmd.OutOrStdout(), sites)
			}

			return writeSitesTable(cmd.OutOrStdout(), sites)
		},
	}

	cmd.Flags().StringVar(&format, "format", format, "Output format: table, json")

	return cmd
}

func locate(content []byte, sites []rewrite.Site) []siteLine {
	out := make([]siteLine, len(sites))

	for i, s := range sites {
		before := content[:min(s.Range.Pos, len(content))]
		lineStart := bytes.LastIndexByte(before, '\n') + 1

		out[i] = siteLine{
			Site:   s,
			Line:   bytes.Count(before, []byte{'\n'}) + 1,
			Column: len(before) - lineStart + 1,
		}
	}

	return out
}

func writeSitesJSON(w io.Writer, sites []siteLine) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(sites); err != nil {
		return fmt.Errorf("encode sites: %w", err)
	}

	return nil
}

func writeSitesTable(w io.Writer, sites []siteLine) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"Line", "Kind", "Specifier"})

	for _, s := range sites {
		tbl.AppendRow(table.Row{
			strconv.Itoa(s.Line) + ":" + strconv.Itoa(s.Column),
			s.Kind.String(),
			sanitizeForTerminal(s.Path),
		})
	}

	tbl.AppendFooter(table.Row{"", "", fmt.Sprintf("%d sites", len(sites))})

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return fmt.Errorf("write sites: %w", err)
	}

	return nil
}

// sanitizeForTerminal drops control characters and flattens line breaks so a
// specifier prints on one table row.
func sanitizeForTerminal(input string) string {
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
