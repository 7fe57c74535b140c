package markdown

import "testing"

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "just some prose", "just some prose"},
		{"header", "# Title\nbody", "Title\nbody"},
		{"bold", "this is **loud** text", "this is loud text"},
		{"bold underscore", "this is __loud__ text", "this is loud text"},
		{"italic", "an *emphasized* word", "an emphasized word"},
		{"strikethrough", "old ~~gone~~ new", "old gone new"},
		{"inline code", "run `go build` now", "run go build now"},
		{"link keeps text", "see [the docs](https://example.com) here", "see the docs here"},
		{"image keeps alt", "photo: ![a cat](cat.png)", "photo: a cat"},
		{"blockquote", "> quoted line", "quoted line"},
		{"list leader", "- first item\n- second item", "first item\nsecond item"},
		{"numbered list", "1. one\n2. two", "one\ntwo"},
		{"html tag", "before <em>inside</em> after", "before inside after"},
		{"horizontal rule", "above\n---\nbelow", "above\n\nbelow"},
		{"excess newlines collapse", "a\n\n\n\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filter(tt.input); got != tt.want {
				t.Errorf("Filter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilter_CodeBlockRemoved(t *testing.T) {
	input := "before\n```go\nfmt.Println(1)\n```\nafter"
	got := Filter(input)
	if got != "before\n\nafter" {
		t.Errorf("Filter() = %q, want code block removed", got)
	}
}
