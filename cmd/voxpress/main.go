package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/voxpress/voxpress/internal/article"
	"github.com/voxpress/voxpress/internal/audio"
	"github.com/voxpress/voxpress/internal/config"
	"github.com/voxpress/voxpress/internal/logging"
	"github.com/voxpress/voxpress/internal/pipeline"
	"github.com/voxpress/voxpress/internal/store"
	"github.com/voxpress/voxpress/internal/summary"
	"github.com/voxpress/voxpress/internal/tts"
)

func main() {
	urlFlag := flag.String("url", "", "Article URL to fetch and voice")
	inputFlag := flag.String("input", "", "Local text/markdown file to voice")
	textFlag := flag.String("text", "", "Raw text to voice")
	idFlag := flag.String("id", "", "Identifier used in the artifact name (defaults per input source)")
	kind := flag.String("kind", "summary", "Artifact kind: summary or full")
	configPath := flag.String("config", config.DefaultPath, "Path to config file")
	primaryVoice := flag.String("voice", "", "Primary provider voice ID (overrides config)")
	fallbackVoice := flag.String("fallback-voice", "", "Fallback provider voice (overrides config)")
	speed := flag.Float64("speed", 0, "Fallback playback speed (overrides config)")
	cleanup := flag.Bool("cleanup", false, "Reconcile the artifact directory and exit")
	keep := flag.String("keep", "", "Comma-separated artifact paths to keep during -cleanup")
	play := flag.Bool("play", false, "Play the artifact after generation")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	logging.SetOperationID(logging.NewOperationID())

	st, err := store.New(cfg.Store.Dir)
	if err != nil {
		logging.Fatalf("open artifact store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *cleanup {
		st.Cleanup(activeSet(*keep))
		return
	}

	if *kind != "summary" && *kind != "full" {
		logging.Fatalf("invalid -kind %q, want summary or full", *kind)
	}

	wantSummary := *kind == "summary"
	if err := cfg.ValidateKeys(true, false, wantSummary); err != nil {
		logging.Fatalf("%v", err)
	}

	body, sourceID, err := resolveInput(ctx, cfg, *urlFlag, *inputFlag, *textFlag)
	if err != nil {
		logging.Fatalf("resolve input: %v", err)
	}
	if *idFlag != "" {
		sourceID = *idFlag
	}

	if wantSummary {
		summarizer, err := summary.NewFromConfig(ctx, cfg.Summary)
		if err != nil {
			logging.Fatalf("init summarizer: %v", err)
		}
		body, err = summarizer.Summarize(ctx, body)
		if err != nil {
			logging.Fatalf("summarize article: %v", err)
		}
	}

	artifact, err := buildPipeline(cfg, st).Generate(ctx, pipeline.Request{
		Text:          body,
		SourceID:      sourceID,
		Kind:          *kind,
		PrimaryVoice:  firstNonEmpty(*primaryVoice, cfg.TTS.Primary.Voice),
		FallbackVoice: firstNonEmpty(*fallbackVoice, cfg.TTS.Fallback.Voice),
		FallbackSpeed: firstPositive(*speed, cfg.TTS.Fallback.Speed),
	})
	if err != nil {
		logging.Fatalf("generate audio: %v", err)
	}

	fmt.Println(artifact)

	// With an explicit active set, reconcile now so superseded artifacts go
	// away in the same run. The fresh artifact is always kept.
	if *keep != "" {
		active := activeSet(*keep)
		active[artifact] = true
		st.Cleanup(active)
	}

	if *play {
		if err := audio.Play(ctx, artifact); err != nil {
			logging.Errorf("playback: %v", err)
		}
	}
}

// resolveInput turns exactly one of -url, -input, -text into (body, sourceID).
func resolveInput(ctx context.Context, cfg *config.AppConfig, url, input, text string) (string, string, error) {
	switch {
	case url != "":
		a, err := article.NewFetcher(cfg.Article).Fetch(ctx, url)
		if err != nil {
			return "", "", err
		}
		sourceID := a.Title
		if sourceID == "" {
			sourceID = a.URL
		}
		return a.Text, sourceID, nil

	case input != "":
		data, err := os.ReadFile(input)
		if err != nil {
			return "", "", err
		}
		base := filepath.Base(input)
		return string(data), strings.TrimSuffix(base, filepath.Ext(base)), nil

	case text != "":
		return text, "manual_input", nil

	default:
		return "", "", fmt.Errorf("one of -url, -input or -text is required")
	}
}

func buildPipeline(cfg *config.AppConfig, st *store.Store) *pipeline.Pipeline {
	primary := tts.NewElevenLabs(cfg.TTS.Primary.APIKey,
		tts.WithElevenLabsModel(cfg.TTS.Primary.Model),
		tts.WithElevenLabsEndpoint(cfg.TTS.Primary.Endpoint),
	)

	var fallback tts.Synthesizer
	if strings.TrimSpace(cfg.TTS.Fallback.APIKey) != "" {
		fallback = tts.NewOpenAI(cfg.TTS.Fallback.APIKey,
			tts.WithOpenAIModel(cfg.TTS.Fallback.Model),
			tts.WithOpenAIBaseURL(cfg.TTS.Fallback.BaseURL),
		)
	} else {
		logging.Warnf("no fallback synthesizer configured, provider errors will not be retried")
	}

	var asmOpts []audio.AssemblerOption
	if cfg.Store.Normalize {
		asmOpts = append(asmOpts, audio.WithNormalization(cfg.Store.FFmpegPath))
	}
	asm := audio.NewAssembler(audio.MP3Codec{}, asmOpts...)

	return pipeline.New(primary, fallback, st, asm,
		pipeline.WithMaxChunkChars(cfg.TTS.MaxChunkChars))
}

func activeSet(keep string) map[string]bool {
	active := make(map[string]bool)
	for _, p := range strings.Split(keep, ",") {
		if p = strings.TrimSpace(p); p != "" {
			active[p] = true
		}
	}
	return active
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
