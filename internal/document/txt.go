package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// TextParser reads plain-text files (.txt, .md and friends) verbatim.
type TextParser struct{}

func (*TextParser) Parse(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	return Document{
		Text:       string(data),
		SourceName: filepath.Base(path),
	}, nil
}
