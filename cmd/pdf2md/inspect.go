package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	pdfmarkdown "github.com/pyhub-apps/pdfmarkdown-golang"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/page"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/table"
)

// pageDump is the inspect view of one page
type pageDump struct {
	Number      int               `json:"number" yaml:"number"`
	Runs        []*pdf.TextRun    `json:"runs,omitempty" yaml:"runs,omitempty"`
	Lines       []pdf.LineSegment `json:"lines,omitempty" yaml:"lines,omitempty"`
	Tables      []*table.Table    `json:"tables,omitempty" yaml:"tables,omitempty"`
	Diagnostics []string          `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// documentDump is the inspect view of a document
type documentDump struct {
	Backend string     `json:"backend" yaml:"backend"`
	Pages   []pageDump `json:"pages" yaml:"pages"`
}

func newInspectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Dump the text runs, lines and tables found on each page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			doc, err := pdf.OpenFile(args[0],
				pdf.WithBackend(cfg.Backend),
				pdf.WithStrict(cfg.ParsingMode == pdfmarkdown.Strict),
			)
			if err != nil {
				return err
			}
			defer doc.Close()

			only, _ := cmd.Flags().GetInt("page")
			dump, err := inspectDocument(cmd, doc, cfg, only)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			return writeDump(cmd.OutOrStdout(), dump, format)
		},
	}

	cmd.Flags().StringP("format", "f", "yaml", "output format: yaml, json or text")
	cmd.Flags().IntP("page", "p", 0, "inspect only this page (1-based)")
	return cmd
}

func inspectDocument(cmd *cobra.Command, doc pdf.Document, cfg *pdfmarkdown.Config, only int) (*documentDump, error) {
	opts := page.Options{
		MaxXObjectDepth:   cfg.MaxXObjectDepth,
		BaseFontSize:      cfg.BaseFontSize,
		TableBaseFontSize: cfg.TableBaseFontSize,
		Logger:            cfg.Logger,
	}

	dump := &documentDump{Backend: doc.Backend()}
	for n := 1; n <= doc.PageCount(); n++ {
		if only > 0 && n != only {
			continue
		}

		var res page.Result
		p, err := doc.Page(n)
		if err != nil {
			res = page.Failed(n, err, opts)
		} else {
			res = page.Process(cmd.Context(), p, opts)
		}
		if err := cmd.Context().Err(); err != nil {
			return nil, err
		}
		dump.Pages = append(dump.Pages, newPageDump(res))
	}
	if only > 0 && len(dump.Pages) == 0 {
		return nil, fmt.Errorf("page %d: %w", only, pdf.ErrPageOutOfRange)
	}
	return dump, nil
}

func newPageDump(res page.Result) pageDump {
	runs, lines := pdf.SplitUnits(res.Units)
	d := pageDump{
		Number: res.Number,
		Runs:   runs,
		Lines:  lines,
		Tables: res.Tables,
	}
	for _, diag := range res.Diagnostics {
		d.Diagnostics = append(d.Diagnostics, diag.Error())
	}
	if res.Err != nil {
		d.Error = res.Err.Error()
	}
	return d
}

func writeDump(w io.Writer, dump *documentDump, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(dump); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	case "text":
		printDump(w, dump)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// printDump writes a human readable summary of every page
func printDump(w io.Writer, dump *documentDump) {
	fmt.Fprintf(w, "Backend: %s\n", dump.Backend)
	for _, p := range dump.Pages {
		fmt.Fprintf(w, "\n=== Page %d ===\n", p.Number)
		if p.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", p.Error)
			continue
		}
		fmt.Fprintf(w, "  Text runs: %d\n", len(p.Runs))
		fmt.Fprintf(w, "  Lines: %d\n", len(p.Lines))

		for i, run := range p.Runs {
			fmt.Fprintf(w, "  Run %d: (%.2f, %.2f) size=%.2f font=%s %q\n",
				i+1, run.X, run.Y, run.FontSize, run.FontName, run.Text)
		}

		if len(p.Tables) == 0 {
			fmt.Fprintln(w, "  No tables found")
		}
		for i, t := range p.Tables {
			rows := cellTexts(t)
			fmt.Fprintf(w, "\n  Table %d:\n", i+1)
			fmt.Fprintf(w, "    Dimensions: %d rows x %d columns\n", len(rows), getMaxColumns(rows))
			fmt.Fprintf(w, "    Centre: (%.2f, %.2f)\n", t.X, t.Y)
			printTable(w, rows)
		}

		for _, d := range p.Diagnostics {
			fmt.Fprintf(w, "  Warning: %s\n", d)
		}
	}
}

func cellTexts(t *table.Table) [][]string {
	var rows [][]string
	for _, row := range t.Rows() {
		cells := make([]string, len(row))
		for i, runs := range row {
			parts := make([]string, len(runs))
			for j, run := range runs {
				parts[j] = strings.TrimSpace(run.Text)
			}
			cells[i] = strings.Join(parts, " ")
		}
		rows = append(rows, cells)
	}
	return rows
}

// getMaxColumns returns the maximum number of columns in any row
func getMaxColumns(rows [][]string) int {
	maxCols := 0
	for _, row := range rows {
		maxCols = max(maxCols, len(row))
	}
	return maxCols
}

// printTable prints a table as a boxed grid
func printTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	colWidths := make([]int, getMaxColumns(rows))
	for _, row := range rows {
		for j, cell := range row {
			colWidths[j] = max(colWidths[j], len(cell))
		}
	}
	for i := range colWidths {
		colWidths[i] = min(max(colWidths[i], 3), 30)
	}

	printSeparator(w, colWidths)
	for i, row := range rows {
		fmt.Fprint(w, "    |")
		for j := range colWidths {
			cell := ""
			if j < len(row) {
				cell = row[j]
				if len(cell) > colWidths[j] {
					cell = cell[:colWidths[j]-3] + "..."
				}
			}
			fmt.Fprintf(w, " %-*s |", colWidths[j], cell)
		}
		fmt.Fprintln(w)

		// header separator
		if i == 0 {
			printSeparator(w, colWidths)
		}
	}
	printSeparator(w, colWidths)
}

func printSeparator(w io.Writer, colWidths []int) {
	fmt.Fprint(w, "    +")
	for _, width := range colWidths {
		fmt.Fprint(w, strings.Repeat("-", width+2)+"+")
	}
	fmt.Fprintln(w)
}
