// Package summary condenses article text with a chat model before synthesis.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/voxpress/voxpress/internal/config"
	"github.com/voxpress/voxpress/internal/logging"
)

// Texts below this length are returned as-is; summarizing them would lose
// more than it saves.
const minSummarizableChars = 150

// A summary shorter than this is almost certainly a refusal or an empty
// completion, not a summary.
const minSummaryChars = 20

// languageSampleChars bounds the prefix handed to language detection.
const languageSampleChars = 1500

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ChatSummarizer summarizes through any eino chat model, in the language the
// source text is written in.
type ChatSummarizer struct {
	model model.BaseChatModel
}

func New(m model.BaseChatModel) *ChatSummarizer {
	return &ChatSummarizer{model: m}
}

// NewFromConfig wires a ChatSummarizer to an OpenAI-compatible endpoint.
func NewFromConfig(ctx context.Context, cfg config.SummaryConfig) (*ChatSummarizer, error) {
	maxTokens := cfg.MaxTokens
	temperature := float32(0.5)
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary model: %w", err)
	}
	return New(chatModel), nil
}

func (s *ChatSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("nothing to summarize")
	}
	if len([]rune(trimmed)) < minSummarizableChars {
		logging.Infof("content too short to summarize, using it verbatim")
		return trimmed, nil
	}

	lang := DetectLanguage(trimmed)
	logging.Debugf("summarizing in %s", lang)

	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(
			"You are a professional news editor. You write faithful, compact article summaries in %s.", lang)),
		schema.UserMessage(fmt.Sprintf(
			"Summarize the following article in %s, in three to five sentences. Keep the key facts and conclusions, drop the filler.\n\n%s",
			lang, trimmed)),
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	result := strings.TrimSpace(resp.Content)
	if len([]rune(result)) < minSummaryChars {
		return "", fmt.Errorf("summary came back implausibly short (%d chars)", len([]rune(result)))
	}
	return result, nil
}

// languageNames maps detected languages to the names used in prompts.
// Anything outside this set prompts in English, which the models handle.
var languageNames = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "English",
	whatlanggo.Cmn: "Chinese",
	whatlanggo.Spa: "Spanish",
	whatlanggo.Fra: "French",
	whatlanggo.Deu: "German",
	whatlanggo.Rus: "Russian",
	whatlanggo.Jpn: "Japanese",
	whatlanggo.Por: "Portuguese",
	whatlanggo.Ita: "Italian",
	whatlanggo.Kor: "Korean",
	whatlanggo.Nld: "Dutch",
	whatlanggo.Pol: "Polish",
	whatlanggo.Tur: "Turkish",
	whatlanggo.Ukr: "Ukrainian",
	whatlanggo.Arb: "Arabic",
}

// DetectLanguage guesses the language of text from a bounded prefix and
// returns its English name, defaulting to "English" when detection is not
// confident.
func DetectLanguage(text string) string {
	sample := text
	if runes := []rune(sample); len(runes) > languageSampleChars {
		sample = string(runes[:languageSampleChars])
	}

	info := whatlanggo.Detect(sample)
	if !info.IsReliable() {
		return "English"
	}
	if name, ok := languageNames[info.Lang]; ok {
		return name
	}
	return "English"
}
