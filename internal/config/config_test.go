package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sheetreplace "github.com/ideamans/go-sheetreplace"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestLoad(t *testing.T) {
	t.Setenv("SHEETREPLACE_TEST_CREDS", "/etc/creds.json")

	tests := []struct {
		name        string
		file        string
		config      string
		errIs       error
		errContains string
		check       func(t *testing.T, s *Settings)
	}{
		{
			name: "yaml",
			file: "sheetreplace.yaml",
			config: `
listen: 0.0.0.0:8080
max_parallelism: 3
fail_fast: true
max_upload_mb: 10
max_entry_mb: 5
max_extract_mb: 20
log_level: debug
patterns:
  - "**/*.xlsx"
highlight:
  italic: true
  color: 0000FF
`,
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "0.0.0.0:8080", s.Listen)
				assert.Equal(t, 3, s.MaxParallelism)
				assert.True(t, s.FailFast)
				assert.Equal(t, int64(10<<20), s.MaxUploadBytes())
				assert.Equal(t, int64(5<<20), s.Pipeline().MaxEntryBytes)
				assert.Equal(t, int64(20<<20), s.Pipeline().MaxExtractedBytes)
				assert.Equal(t, zerolog.DebugLevel, s.Level())
				assert.Equal(t, []string{"**/*.xlsx"}, s.Patterns)
				assert.Equal(t, &Highlight{Italic: true, Color: "0000FF"}, s.Highlight)
			},
		},
		{
			name:   "empty yaml uses defaults",
			file:   "empty.yml",
			config: "",
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, DefaultListen, s.Listen)
				assert.Equal(t, sheetreplace.DefaultPatterns, s.Patterns)
				assert.Equal(t, &Highlight{Bold: true, Color: "FF0000"}, s.Highlight)
				assert.Equal(t, zerolog.InfoLevel, s.Level())
			},
		},
		{
			name: "hcl with env",
			file: "sheetreplace.hcl",
			config: `
listen          = "127.0.0.1:9000"
max_parallelism = 2
temp_dir        = "/var/tmp"

highlight {
  bold  = true
  color = "00FF00"
}

google {
  credentials_file = env.SHEETREPLACE_TEST_CREDS
}
`,
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "127.0.0.1:9000", s.Listen)
				assert.Equal(t, 2, s.MaxParallelism)
				assert.Equal(t, "/var/tmp", s.TempDir)
				assert.Equal(t, &Highlight{Bold: true, Color: "00FF00"}, s.Highlight)
				assert.Equal(t, "/etc/creds.json", s.Google.CredentialsFile)
				assert.Equal(t, int64(DefaultMaxUploadMB), s.MaxUploadMB)
				assert.Equal(t, int64(sheetreplace.DefaultMaxEntryBytes), s.Pipeline().MaxEntryBytes)
				assert.Equal(t, int64(sheetreplace.DefaultMaxExtractedBytes), s.Pipeline().MaxExtractedBytes)
			},
		},
		{
			name:        "unknown yaml key",
			file:        "bad.yaml",
			config:      "listen: x\nworkers: 3\n",
			errContains: "parsing YAML",
		},
		{
			name:        "malformed hcl",
			file:        "bad.hcl",
			config:      "listen = ",
			errContains: "HCL",
		},
		{
			name:   "unsupported extension",
			file:   "settings.toml",
			config: "listen = 1",
			errIs:  ErrUnsupportedFormat,
		},
		{
			name:   "invalid values",
			file:   "invalid.yaml",
			config: "max_upload_mb: -1\nlog_level: loud\nhighlight:\n  color: red\n",
			errIs:  ErrInvalidSettings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.config)
			s, err := Load(testContext(t), path)
			if tt.errIs != nil || tt.errContains != "" {
				require.Error(t, err)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testContext(t), filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_NoPath(t *testing.T) {
	s, err := Load(testContext(t), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"negative parallelism", func(s *Settings) { s.MaxParallelism = -1 }, true},
		{"negative entry limit", func(s *Settings) { s.MaxEntryMB = -1 }, true},
		{"negative extract limit", func(s *Settings) { s.MaxExtractMB = -1 }, true},
		{"bad pattern", func(s *Settings) { s.Patterns = []string{"[x"} }, true},
		{"short color", func(s *Settings) { s.Highlight.Color = "FFF" }, true},
		{"empty color", func(s *Settings) { s.Highlight.Color = "" }, false},
		{"disabled log level", func(s *Settings) { s.LogLevel = "disabled" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSettings)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPipeline(t *testing.T) {
	s := Default()
	s.FailFast = true
	s.MaxParallelism = 4
	s.TempDir = "/scratch"
	s.Highlight = &Highlight{Italic: true, Color: "123456"}

	cfg := s.Pipeline()
	assert.Equal(t, 4, cfg.MaxParallelism)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, "/scratch", cfg.TempDir)
	assert.Equal(t, sheetreplace.Style{Italic: true, Color: "123456"}, cfg.Highlight)
	assert.Equal(t, s.Patterns, cfg.Patterns)
	assert.NotNil(t, cfg.Now)
}

func TestGetParser(t *testing.T) {
	assert.IsType(t, &YAMLParser{}, GetParser("a.YAML"))
	assert.IsType(t, &YAMLParser{}, GetParser("dir/a.yml"))
	assert.IsType(t, &HCLParser{}, GetParser("a.hcl"))
	assert.Nil(t, GetParser("a.json"))
}
