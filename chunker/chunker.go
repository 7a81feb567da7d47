// Package chunker splits extracted document text into bounded,
// overlapping chunks suitable for embedding and retrieval.
package chunker

import (
	"fmt"
	"strings"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// defaultSeparators are tried coarsest first; the empty separator splits
// character by character and is the last resort.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter recursively splits text on a priority-ordered separator list,
// then merges the pieces into chunks of at most chunkSize characters with
// roughly overlap characters shared between neighbours. Splitting is a
// pure function of (text, chunkSize, overlap): chunk ids are derived from
// position, so boundaries must be reproducible.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New creates a Splitter. Both sizes must be positive and the overlap
// strictly smaller than the chunk size.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, overlap)
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Split returns the ordered chunks of text. Empty or whitespace-only
// input yields no chunks.
func (s *Splitter) Split(text string) []string {
	return s.splitText(text, s.separators)
}

func (s *Splitter) splitText(text string, separators []string) []string {
	var final []string

	// Pick the coarsest separator present in the text; remember the
	// finer ones for recursing into oversized pieces.
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	splits := splitKeepSeparator(text, separator)

	// Merge runs of small pieces; recurse into pieces that are still
	// too large for a single chunk.
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = good[:0]
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// splitKeepSeparator splits text by sep, keeping the separator attached
// to the start of the following piece so that joining the pieces with ""
// reconstructs the original text. The empty separator splits into runes.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		out := make([]string, 0, len(runes))
		for _, r := range runes {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// merge greedily packs consecutive pieces into chunks of at most
// chunkSize characters. When a chunk is emitted, pieces are dropped from
// the front until at most overlap characters remain, which become the
// shared prefix of the next chunk.
func (s *Splitter) merge(splits []string) []string {
	var docs []string
	var current []string
	total := 0

	for _, piece := range splits {
		l := len(piece)
		if total+l > s.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (total+l > s.chunkSize && total > 0) {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += l
	}

	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
