// Package main is the entry point for the pdf2md CLI
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pdfmarkdown "github.com/pyhub-apps/pdfmarkdown-golang"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/logger"
)

// version is set at build time via ldflags
var version = "dev"

// configKeys maps viper keys to the flags that override them
var configKeys = map[string]string{
	"workers":              "workers",
	"parsing_mode":         "mode",
	"backend":              "backend",
	"max_xobject_depth":    "max-xobject-depth",
	"base_font_size":       "base-font-size",
	"table_base_font_size": "table-base-font-size",
	"page_markers":         "page-markers",
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "pdf2md",
		Short: "Convert PDF documents to markdown",
		Long: `pdf2md interprets the content stream of every page, detects tables drawn
with ruling lines and writes the text as markdown with headings, inline
styles and pipe tables.

Configuration is read from pdf2md.yaml, PDF2MD_* environment variables
(optionally from a .env file) and command line flags, in increasing order
of precedence.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			return initConfig(cmd, v)
		},
	}

	defaults := pdfmarkdown.NewDefaultConfig()
	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default: ./pdf2md.yaml or ~/.config/pdf2md/config.yaml)")
	flags.String("env-file", ".env", "dotenv file with PDF2MD_* variables")
	flags.Int("workers", defaults.Workers, "pages converted in parallel")
	flags.String("mode", string(defaults.ParsingMode), "parsing mode: strict or best-effort")
	flags.String("backend", defaults.Backend, "document backend: auto, pdfcpu, ledongthuc or dslipak")
	flags.Int("max-xobject-depth", defaults.MaxXObjectDepth, "maximum nesting of form XObjects")
	flags.Float64("base-font-size", defaults.BaseFontSize, "heading baseline for pages without sized text")
	flags.Float64("table-base-font-size", defaults.TableBaseFontSize, "heading baseline inside table cells")
	flags.Bool("page-markers", defaults.PageMarkers, "precede every page with a marker comment")
	flags.BoolP("verbose", "v", false, "log progress to stderr")

	root.AddCommand(newConvertCmd(v), newInspectCmd(v))
	return root
}

func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdf2md")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pdf2md"))
		}
	}

	v.SetEnvPrefix("PDF2MD")
	v.AutomaticEnv()

	for key, flag := range configKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// loadConfig builds and validates the conversion config
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*pdfmarkdown.Config, error) {
	cfg := pdfmarkdown.NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = logger.Slog(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if file := v.ConfigFileUsed(); file != "" {
		cfg.Logger.Info("using config file", "path", file)
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
