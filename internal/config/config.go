// Package config loads sheetreplace settings from YAML or HCL files.
package config

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	sheetreplace "github.com/ideamans/go-sheetreplace"
)

const (
	DefaultListen       = "127.0.0.1:5000"
	DefaultMaxUploadMB  = 64
	DefaultMaxEntryMB   = sheetreplace.DefaultMaxEntryBytes >> 20
	DefaultMaxExtractMB = sheetreplace.DefaultMaxExtractedBytes >> 20
	DefaultLogLevel     = "info"
)

var (
	ErrUnsupportedFormat = errors.Base("unsupported config format")
	ErrInvalidSettings   = errors.Base("invalid settings")
)

// Settings is the on-disk configuration of the service and the CLI
type Settings struct {
	Listen         string     `yaml:"listen" hcl:"listen,optional"`
	MaxParallelism int        `yaml:"max_parallelism" hcl:"max_parallelism,optional"`
	FailFast       bool       `yaml:"fail_fast" hcl:"fail_fast,optional"`
	TempDir        string     `yaml:"temp_dir" hcl:"temp_dir,optional"`
	MaxUploadMB    int64      `yaml:"max_upload_mb" hcl:"max_upload_mb,optional"`
	MaxEntryMB     int64      `yaml:"max_entry_mb" hcl:"max_entry_mb,optional"`
	MaxExtractMB   int64      `yaml:"max_extract_mb" hcl:"max_extract_mb,optional"`
	LogLevel       string     `yaml:"log_level" hcl:"log_level,optional"`
	Patterns       []string   `yaml:"patterns" hcl:"patterns,optional"`
	Highlight      *Highlight `yaml:"highlight" hcl:"highlight,block"`
	Google         *Google    `yaml:"google" hcl:"google,block"`
}

// Highlight is the style applied to replaced text
type Highlight struct {
	Bold   bool   `yaml:"bold" hcl:"bold,optional"`
	Italic bool   `yaml:"italic" hcl:"italic,optional"`
	Color  string `yaml:"color" hcl:"color,optional"`
}

// Google holds credentials for Google Sheets inputs
type Google struct {
	CredentialsFile string `yaml:"credentials_file" hcl:"credentials_file,optional"`
}

// Default returns settings with every default applied
func Default() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	if s.MaxParallelism == 0 {
		s.MaxParallelism = runtime.GOMAXPROCS(0)
	}
	if s.MaxUploadMB == 0 {
		s.MaxUploadMB = DefaultMaxUploadMB
	}
	if s.MaxEntryMB == 0 {
		s.MaxEntryMB = DefaultMaxEntryMB
	}
	if s.MaxExtractMB == 0 {
		s.MaxExtractMB = DefaultMaxExtractMB
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if len(s.Patterns) == 0 {
		s.Patterns = append([]string(nil), sheetreplace.DefaultPatterns...)
	}
	if s.Highlight == nil {
		s.Highlight = &Highlight{
			Bold:   sheetreplace.DefaultHighlight.Bold,
			Italic: sheetreplace.DefaultHighlight.Italic,
			Color:  sheetreplace.DefaultHighlight.Color,
		}
	}
	if s.Google == nil {
		s.Google = &Google{}
	}
}

// Validate reports every problem found in s
func (s *Settings) Validate() error {
	var errs []error
	if s.MaxParallelism < 0 {
		errs = append(errs, errors.Errorf("max_parallelism must not be negative, got %d", s.MaxParallelism))
	}
	if s.MaxUploadMB <= 0 {
		errs = append(errs, errors.Errorf("max_upload_mb must be positive, got %d", s.MaxUploadMB))
	}
	if s.MaxEntryMB <= 0 {
		errs = append(errs, errors.Errorf("max_entry_mb must be positive, got %d", s.MaxEntryMB))
	}
	if s.MaxExtractMB <= 0 {
		errs = append(errs, errors.Errorf("max_extract_mb must be positive, got %d", s.MaxExtractMB))
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, errors.Errorf("log_level: %w", err))
	}
	if err := sheetreplace.ValidatePatterns(s.Patterns); err != nil {
		errs = append(errs, errors.Errorf("patterns: %w", err))
	}
	if s.Highlight != nil && s.Highlight.Color != "" {
		if _, err := hex.DecodeString(s.Highlight.Color); err != nil || len(s.Highlight.Color) != 6 {
			errs = append(errs, errors.Errorf("highlight.color must be six hex digits, got %q", s.Highlight.Color))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(ErrInvalidSettings, errors.Join(errs...))
}

// Level returns the parsed log level, falling back to info
func (s *Settings) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// MaxUploadBytes is the request body limit of the HTTP service
func (s *Settings) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// Pipeline converts the settings into a transform pipeline configuration
func (s *Settings) Pipeline() *sheetreplace.Config {
	cfg := &sheetreplace.Config{
		MaxParallelism: s.MaxParallelism,
		FailFast:       s.FailFast,
		Patterns:       s.Patterns,
		TempDir:        s.TempDir,
		Now:            time.Now,

		MaxEntryBytes:     s.MaxEntryMB << 20,
		MaxExtractedBytes: s.MaxExtractMB << 20,
	}
	if s.Highlight != nil {
		cfg.Highlight = sheetreplace.Style{
			Bold:   s.Highlight.Bold,
			Italic: s.Highlight.Italic,
			Color:  s.Highlight.Color,
		}
	}
	return cfg
}

// Load reads the settings file at path. The format is chosen from the file
// extension. An empty path yields the defaults.
func Load(ctx context.Context, path string) (*Settings, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	s, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, err
	}
	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("config loaded")
	return s, nil
}
