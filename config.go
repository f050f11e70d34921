package sheetreplace

import (
	"runtime"
	"time"
)

// DefaultHighlight is the style given to replaced text: bold red
var DefaultHighlight = Style{Bold: true, Color: "FF0000"}

const (
	DefaultMaxEntryBytes     = 256 << 20
	DefaultMaxExtractedBytes = 1 << 30
)

// DefaultPatterns select spreadsheet entries inside uploaded archives
var DefaultPatterns = []string{"**/*.xlsx", "**/*.xlsm", "**/*.xls"}

// Config represents configuration for the transform pipeline
type Config struct {
	MaxParallelism int              // Upper bound on files transformed at once (default: GOMAXPROCS)
	FailFast       bool             // Abort the batch on the first failed file (default: best-effort)
	Highlight      Style            // Style of replaced runs (default: DefaultHighlight)
	Patterns       []string         // Glob patterns of archive entries to process (default: DefaultPatterns)
	TempDir        string           // Parent of request workspaces (default: os.TempDir())
	Now            func() time.Time // Clock used for output names (default: time.Now)

	MaxEntryBytes     int64 // Largest archive entry extracted (default: 256 MiB)
	MaxExtractedBytes int64 // Total bytes extracted from archives per request (default: 1 GiB)
}

// DefaultConfig returns the recommended default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxParallelism: runtime.GOMAXPROCS(0),
		Highlight:      DefaultHighlight,
		Patterns:       DefaultPatterns,
		Now:            time.Now,

		MaxEntryBytes:     DefaultMaxEntryBytes,
		MaxExtractedBytes: DefaultMaxExtractedBytes,
	}
}

// withDefaults returns a copy of c with zero values replaced by defaults
func (c *Config) withDefaults() Config {
	if c == nil {
		return *DefaultConfig()
	}

	cfg := *c
	if cfg.MaxParallelism <= 0 {
		cfg.MaxParallelism = runtime.GOMAXPROCS(0)
	}
	if cfg.Highlight.IsDefault() {
		cfg.Highlight = DefaultHighlight
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = DefaultPatterns
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxEntryBytes <= 0 {
		cfg.MaxEntryBytes = DefaultMaxEntryBytes
	}
	if cfg.MaxExtractedBytes <= 0 {
		cfg.MaxExtractedBytes = DefaultMaxExtractedBytes
	}
	return cfg
}
