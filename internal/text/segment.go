package text

import "strings"

const cutset = " \t\n\r"

// Chunk is one bounded slice of source text scheduled for a single
// synthesis call. Index is 1-based; Total is the number of chunks in the
// sequence the chunk belongs to.
type Chunk struct {
	Index  int
	Total  int
	Text   string
	Length int
}

// Segment splits text into an ordered sequence of chunks of at most limit
// characters, preferring natural break points. For each window of up to
// limit characters it searches backward for the best available break,
// in strict priority order:
//
//  1. a paragraph boundary (two consecutive newlines)
//  2. a sentence terminator (. ! ?) followed by whitespace
//  3. a clause separator (, ;) followed by whitespace
//  4. any whitespace
//  5. a forced cut at the window boundary, when none of the above exists
//
// Whitespace around the chosen break is trimmed and never duplicated into
// the next chunk, so joining chunk texts with single spaces reproduces the
// input up to collapsed whitespace at the seams. Empty input yields nil.
// A limit <= 0 disables splitting and returns the whole text as one chunk.
func Segment(text string, limit int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if limit <= 0 || len(text) <= limit {
		return []Chunk{{Index: 1, Total: 1, Text: text, Length: len(text)}}
	}

	var parts []string
	rest := strings.Trim(text, cutset)
	for len(rest) > limit {
		cut := findBreak(rest, limit)
		part := strings.Trim(rest[:cut], cutset)
		if part != "" {
			parts = append(parts, part)
		}
		rest = strings.TrimLeft(rest[cut:], cutset)
	}
	if rest != "" {
		parts = append(parts, rest)
	}

	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{
			Index:  i + 1,
			Total:  len(parts),
			Text:   p,
			Length: len(p),
		}
	}

	return chunks
}

// findBreak returns the end offset of the next chunk within rest, at most
// limit. rest must be longer than limit and must not start with whitespace.
func findBreak(rest string, limit int) int {
	window := rest[:limit]

	// Paragraph boundary anywhere in the window wins outright.
	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return i
	}

	// Sentence end: terminator followed by whitespace. The character after
	// the last window position is rest[limit], which always exists here.
	if i := lastBeforeSpace(rest, limit, ".!?"); i >= 0 {
		return i + 1
	}

	// Clause separator followed by whitespace.
	if i := lastBeforeSpace(rest, limit, ",;"); i >= 0 {
		return i + 1
	}

	// Any whitespace.
	if i := strings.LastIndexAny(window, cutset); i > 0 {
		return i
	}

	// No break opportunity at all: forced mid-word cut.
	return limit
}

// lastBeforeSpace scans backward through rest[:limit] for the last
// occurrence of any byte in set that is directly followed by whitespace.
// It returns -1 when no such position exists at an offset > 0.
func lastBeforeSpace(rest string, limit int, set string) int {
	for i := limit - 1; i > 0; i-- {
		if strings.IndexByte(set, rest[i]) < 0 {
			continue
		}
		if isSpace(rest[i+1]) {
			return i
		}
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
