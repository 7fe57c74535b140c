package text

import (
	"errors"
	"strings"
	"testing"
)

func TestChunk_EmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"only whitespace", "   \n\t\n  "},
		{"only blank lines", "\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Chunk(tt.input, 100)
			if !errors.Is(err, ErrEmptyInput) {
				t.Fatalf("Chunk() error = %v, want ErrEmptyInput", err)
			}
		})
	}
}

func TestChunk_SingleParagraphFits(t *testing.T) {
	chunks, err := Chunk("hello world", 100)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "hello world" {
		t.Fatalf("Chunk() = %v, want [hello world]", chunks)
	}
}

func TestChunk_GreedyAccumulation(t *testing.T) {
	// Three short paragraphs with budget for two per chunk.
	input := "aaaa\nbbbb\ncccc"
	chunks, err := Chunk(input, 10)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "aaaa\nbbbb" {
		t.Fatalf("first chunk = %q, want paragraphs joined by newline", chunks[0])
	}
	if chunks[1] != "cccc" {
		t.Fatalf("second chunk = %q, want cccc", chunks[1])
	}
}

func TestChunk_HardSplitOversizedParagraph(t *testing.T) {
	paragraph := strings.Repeat("x", 25)
	chunks, err := Chunk(paragraph, 10)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 10 {
			t.Fatalf("chunk %d exceeds budget: %d chars", i, len(c))
		}
	}
	if strings.Join(chunks, "") != paragraph {
		t.Fatalf("hard split lost or duplicated characters")
	}
}

func TestChunk_SizeBoundHolds(t *testing.T) {
	inputs := []string{
		strings.Repeat("word ", 1000),
		strings.Repeat("line one\nline two\n", 200),
		strings.Repeat("р", 500) + "\n" + strings.Repeat("ü", 500), // multibyte runes
	}

	for _, input := range inputs {
		chunks, err := Chunk(input, 120)
		if err != nil {
			t.Fatalf("Chunk() error = %v", err)
		}
		for i, c := range chunks {
			if n := len([]rune(c)); n > 120 {
				t.Fatalf("chunk %d has %d chars, budget 120", i, n)
			}
			if strings.TrimSpace(c) == "" {
				t.Fatalf("chunk %d is empty", i)
			}
		}
	}
}

func TestChunk_Reconstruction(t *testing.T) {
	input := "First paragraph with some text.\n\nSecond paragraph here.\nThird one.\n"
	chunks, err := Chunk(input, 40)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	normalize := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}
	if normalize(strings.Join(chunks, "\n")) != normalize(input) {
		t.Fatalf("reconstructed text differs:\n got %q\nwant %q",
			normalize(strings.Join(chunks, "\n")), normalize(input))
	}
}

func TestChunk_DefaultBudget(t *testing.T) {
	chunks, err := Chunk("short text", 0)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
}
