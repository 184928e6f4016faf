// Package document extracts plain text from input files so the conversion
// pipeline only ever deals with strings.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Document is the immutable text of one input file plus its origin.
type Document struct {
	Text       string
	SourceName string
}

// Parser extracts the spoken-text content of a file.
type Parser interface {
	Parse(path string) (Document, error)
}

// ErrUnsupportedFormat is returned for file extensions no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ParserForPath selects a parser based on the file extension.
func ParserForPath(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".md", ".markdown":
		return &TextParser{}, nil
	case ".docx":
		return &DocxParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load resolves a parser for path and parses the file with it.
func Load(path string) (Document, error) {
	p, err := ParserForPath(path)
	if err != nil {
		return Document{}, err
	}
	return p.Parse(path)
}
