package pdfmarkdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, BestEffort, cfg.ParsingMode)
	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, 16, cfg.MaxXObjectDepth)
	assert.Equal(t, 12.0, cfg.BaseFontSize)
	assert.Equal(t, 1000.0, cfg.TableBaseFontSize)
	assert.True(t, cfg.PageMarkers)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"strict mode", func(c *Config) { c.ParsingMode = Strict }, true},
		{"pinned backend", func(c *Config) { c.Backend = "dslipak" }, true},
		{"no workers", func(c *Config) { c.Workers = 0 }, false},
		{"too many workers", func(c *Config) { c.Workers = 65 }, false},
		{"unknown mode", func(c *Config) { c.ParsingMode = "lenient" }, false},
		{"unknown backend", func(c *Config) { c.Backend = "mupdf" }, false},
		{"zero depth", func(c *Config) { c.MaxXObjectDepth = 0 }, false},
		{"zero base size", func(c *Config) { c.BaseFontSize = 0 }, false},
		{"negative table size", func(c *Config) { c.TableBaseFontSize = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
