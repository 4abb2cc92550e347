package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pdfmarkdown "github.com/pyhub-apps/pdfmarkdown-golang"
)

func newConvertCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file.pdf>",
		Short: "Convert a PDF file to markdown",
		Long: `Convert writes the markdown of every page to stdout or to the file given
with --output. Recoverable problems are reported on stderr. In strict mode
the first page that cannot be decoded aborts the conversion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			res, err := pdfmarkdown.ConvertFile(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}

			for _, d := range res.Diagnostics {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", d)
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), res.Markdown)
				return err
			}
			if err := os.WriteFile(output, []byte(res.Markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d pages to %s\n", len(res.Pages), output)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "write markdown to this file instead of stdout")
	return cmd
}
