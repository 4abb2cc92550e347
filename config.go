package pdfmarkdown

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/content"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/logger"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/markdown"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/page"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
)

// ParsingMode decides what happens when a page cannot be decoded
type ParsingMode string

const (
	// Strict aborts the conversion on the first undecodable page
	Strict ParsingMode = "strict"
	// BestEffort replaces undecodable pages with a placeholder comment
	BestEffort ParsingMode = "best-effort"
)

// Config controls a conversion
type Config struct {
	Workers           int            `mapstructure:"workers" yaml:"workers" validate:"min=1,max=64"`
	ParsingMode       ParsingMode    `mapstructure:"parsing_mode" yaml:"parsing_mode" validate:"oneof=strict best-effort"`
	Backend           string         `mapstructure:"backend" yaml:"backend" validate:"oneof=auto pdfcpu ledongthuc dslipak"`
	MaxXObjectDepth   int            `mapstructure:"max_xobject_depth" yaml:"max_xobject_depth" validate:"min=1,max=64"`
	BaseFontSize      float64        `mapstructure:"base_font_size" yaml:"base_font_size" validate:"gt=0"`
	TableBaseFontSize float64        `mapstructure:"table_base_font_size" yaml:"table_base_font_size" validate:"gt=0"`
	PageMarkers       bool           `mapstructure:"page_markers" yaml:"page_markers"`
	Logger            logger.LogFunc `mapstructure:"-" yaml:"-"`
}

// NewDefaultConfig returns the configuration used when none is given
func NewDefaultConfig() *Config {
	return &Config{
		Workers:           4,
		ParsingMode:       BestEffort,
		Backend:           pdf.BackendAuto,
		MaxXObjectDepth:   content.DefaultMaxXObjectDepth,
		BaseFontSize:      markdown.DefaultBaseFontSize,
		TableBaseFontSize: markdown.DefaultTableBaseFontSize,
		PageMarkers:       true,
	}
}

// Validate checks every field against its constraints
func (cfg *Config) Validate() error {
	cfg.Logger.Debug("validating config")
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (cfg *Config) pageOptions() page.Options {
	return page.Options{
		MaxXObjectDepth:   cfg.MaxXObjectDepth,
		BaseFontSize:      cfg.BaseFontSize,
		TableBaseFontSize: cfg.TableBaseFontSize,
		PageMarkers:       cfg.PageMarkers,
		Logger:            cfg.Logger,
	}
}
