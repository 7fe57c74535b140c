// Package text splits article text into provider-safe chunks for synthesis.
package text

import (
	"errors"
	"strings"
)

// DefaultMaxChunkChars is a conservative budget shared by both TTS providers.
const DefaultMaxChunkChars = 2500

// ErrEmptyInput is returned when the input contains no synthesizable text.
var ErrEmptyInput = errors.New("text could not be split into processable chunks")

// Chunk splits text into ordered segments of at most maxChars characters.
// Paragraphs (newline-separated units) are accumulated greedily; a single
// paragraph longer than the budget is hard-split at fixed rune offsets with
// no word or sentence awareness. That can fracture a word across two TTS
// requests; it is a known coarseness kept on purpose, since smarter splitting
// changes chunk boundaries and with them per-chunk prosody.
//
// Concatenating the returned chunks in order reproduces the input modulo
// whitespace at the split points. The order is the only contract downstream
// reassembly relies on.
func Chunk(text string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, paragraph := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(paragraph)
		if stripped == "" {
			continue
		}

		if utf8Len(current.String())+utf8Len(stripped)+1 <= maxChars {
			current.WriteString(stripped)
			current.WriteString("\n")
			continue
		}

		flush()

		if utf8Len(stripped) > maxChars {
			for _, piece := range hardSplit(stripped, maxChars) {
				chunks = append(chunks, piece)
			}
			continue
		}

		current.WriteString(stripped)
		current.WriteString("\n")
	}
	flush()

	if len(chunks) == 0 {
		return nil, ErrEmptyInput
	}
	return chunks, nil
}

// hardSplit cuts an oversized paragraph at fixed rune offsets.
func hardSplit(paragraph string, maxChars int) []string {
	runes := []rune(paragraph)
	pieces := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for i := 0; i < len(runes); i += maxChars {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[i:end]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

func utf8Len(s string) int {
	return len([]rune(s))
}
