package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DocxParser extracts paragraph text from Word .docx files.
//
// A .docx is a ZIP archive whose main body lives in word/document.xml.
// Only visible run text (w:t) is read; one line is emitted per paragraph
// (w:p), matching how word processors present the document.
type DocxParser struct{}

func (*DocxParser) Parse(path string) (Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return Document{}, fmt.Errorf("%s: missing word/document.xml", path)
	}

	rc, err := body.Open()
	if err != nil {
		return Document{}, fmt.Errorf("open document body: %w", err)
	}
	defer func() { _ = rc.Close() }()

	paragraphs, err := extractParagraphs(xml.NewDecoder(rc))
	if err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return Document{
		Text:       strings.Join(paragraphs, "\n"),
		SourceName: filepath.Base(path),
	}, nil
}

// extractParagraphs streams through the body XML collecting w:t character
// data grouped by enclosing w:p elements. Empty paragraphs are dropped.
func extractParagraphs(dec *xml.Decoder) ([]string, error) {
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := current.String(); s != "" {
					paragraphs = append(paragraphs, s)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
