package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	content string
	err     error
	got     []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.got = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func longArticle() string {
	return strings.Repeat("The committee approved the new transit budget after a long debate. ", 10)
}

func TestSummarize_ShortTextReturnedVerbatim(t *testing.T) {
	fake := &fakeChatModel{content: "should not be used"}
	s := New(fake)

	got, err := s.Summarize(context.Background(), "  A short note.  ")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "A short note." {
		t.Fatalf("Summarize() = %q, want trimmed input back", got)
	}
	if fake.got != nil {
		t.Fatal("model should not be called for short text")
	}
}

func TestSummarize_EmptyText(t *testing.T) {
	s := New(&fakeChatModel{})
	if _, err := s.Summarize(context.Background(), "   "); err == nil {
		t.Fatal("expected an error for empty text")
	}
}

func TestSummarize_UsesModelOutput(t *testing.T) {
	fake := &fakeChatModel{content: "  The budget passed after debate, funding transit for a decade.  "}
	s := New(fake)

	got, err := s.Summarize(context.Background(), longArticle())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "The budget passed after debate, funding transit for a decade." {
		t.Fatalf("Summarize() = %q, want trimmed model output", got)
	}

	if len(fake.got) != 2 {
		t.Fatalf("model received %d messages, want system + user", len(fake.got))
	}
	if fake.got[0].Role != schema.System || fake.got[1].Role != schema.User {
		t.Fatalf("message roles = %s, %s", fake.got[0].Role, fake.got[1].Role)
	}
	if !strings.Contains(fake.got[1].Content, "transit budget") {
		t.Fatal("user message should carry the article text")
	}
	if !strings.Contains(fake.got[0].Content, "English") {
		t.Fatalf("system prompt should name the detected language, got %q", fake.got[0].Content)
	}
}

func TestSummarize_ImplausiblyShortOutput(t *testing.T) {
	s := New(&fakeChatModel{content: "No."})
	if _, err := s.Summarize(context.Background(), longArticle()); err == nil {
		t.Fatal("expected an error for a near-empty summary")
	}
}

func TestSummarize_ModelError(t *testing.T) {
	wantErr := errors.New("rate limited")
	s := New(&fakeChatModel{err: wantErr})
	if _, err := s.Summarize(context.Background(), longArticle()); !errors.Is(err, wantErr) {
		t.Fatalf("Summarize() error = %v, want wrapped model error", err)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", longArticle(), "English"},
		{"chinese", strings.Repeat("市议会经过长时间辩论后通过了新的交通预算。", 10), "Chinese"},
		{"unreliable defaults to english", "ok", "English"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage() = %q, want %q", got, tt.want)
			}
		})
	}
}
