package config

import (
	"context"
	"path/filepath"
	"strings"
)

// Parser decodes one settings file format
type Parser interface {
	Parse(ctx context.Context, filename string, data []byte) (*Settings, error)
	CanParse(filename string) bool
}

var parsers []Parser

// Register adds a parser to the registry
func Register(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns the first registered parser able to read filename
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
