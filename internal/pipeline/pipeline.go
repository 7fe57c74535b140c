// Package pipeline drives text through chunking, per-chunk synthesis with
// provider fallback, and assembly into one artifact. Chunks are processed
// sequentially; a single request is one flow from text to file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voxpress/voxpress/internal/audio"
	"github.com/voxpress/voxpress/internal/logging"
	"github.com/voxpress/voxpress/internal/store"
	"github.com/voxpress/voxpress/internal/text"
	"github.com/voxpress/voxpress/internal/tts"
	"github.com/voxpress/voxpress/pkg/markdown"
)

// ErrNoText means the request carried nothing synthesizable.
var ErrNoText = errors.New("no text to synthesize")

// Request describes one generation run.
type Request struct {
	// Text is the content to voice, possibly markdown.
	Text string
	// SourceID identifies the origin (URL, title, manual id) and seeds the
	// artifact file name.
	SourceID string
	// Kind tags the artifact, typically "summary" or "full".
	Kind string
	// PrimaryVoice and FallbackVoice select voices per provider; empty
	// values fall back to provider defaults.
	PrimaryVoice  string
	FallbackVoice string
	// FallbackSpeed adjusts fallback playback rate, 0 meaning default.
	FallbackSpeed float64
}

type Pipeline struct {
	primary       tts.Synthesizer
	fallback      tts.Synthesizer
	store         *store.Store
	assembler     *audio.Assembler
	maxChunkChars int
}

type Option func(*Pipeline)

func WithMaxChunkChars(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxChunkChars = n
		}
	}
}

// New builds a pipeline. fallback may be nil, in which case chunks that
// fail the primary with a retryable error fail outright.
func New(primary, fallback tts.Synthesizer, st *store.Store, asm *audio.Assembler, opts ...Option) *Pipeline {
	p := &Pipeline{
		primary:       primary,
		fallback:      fallback,
		store:         st,
		assembler:     asm,
		maxChunkChars: text.DefaultMaxChunkChars,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate synthesizes req.Text into a single MP3 and returns its path.
// Individual chunk failures are tolerated as long as at least one chunk
// succeeds; if every chunk fails the first failure is surfaced. Temp chunk
// files are removed before return on every path.
func (p *Pipeline) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrNoText
	}
	kind := req.Kind
	if kind == "" {
		kind = "full"
	}

	body := markdown.Filter(req.Text)
	chunks, err := text.Chunk(body, p.maxChunkChars)
	if err != nil {
		return "", fmt.Errorf("chunk text: %w", err)
	}
	logging.Infof("generating %s audio for %q: %d chunks", kind, req.SourceID, len(chunks))

	var tempPaths []string
	defer func() { store.RemoveAll(tempPaths) }()

	var synthesized []string
	var firstErr error
	for i, chunk := range chunks {
		data, err := p.synthesizeChunk(ctx, newChunkJob(i, len(chunks)), chunk, req)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		f, err := p.store.CreateChunkFile()
		if err != nil {
			logging.Errorf("chunk %d/%d: create temp file: %v", i+1, len(chunks), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		tempPaths = append(tempPaths, f.Name())
		_, werr := f.Write(data)
		cerr := f.Close()
		if werr != nil || cerr != nil {
			logging.Errorf("chunk %d/%d: write temp file: %v/%v", i+1, len(chunks), werr, cerr)
			if firstErr == nil {
				firstErr = errors.Join(werr, cerr)
			}
			continue
		}
		synthesized = append(synthesized, f.Name())
	}

	if len(synthesized) == 0 {
		return "", fmt.Errorf("audio generation failed for all %d chunks: %w", len(chunks), firstErr)
	}
	if len(synthesized) < len(chunks) {
		logging.Warnf("proceeding with %d of %d chunks", len(synthesized), len(chunks))
	}

	voiceTag := req.PrimaryVoice
	if voiceTag == "" {
		voiceTag = p.primary.Name()
	}
	dst := p.store.FinalPath(req.SourceID, kind, voiceTag)
	if err := p.assembler.Assemble(ctx, synthesized, dst); err != nil {
		return "", fmt.Errorf("assemble artifact: %w", err)
	}

	logging.Infof("artifact ready: %s", dst)
	return dst, nil
}

// synthesizeChunk runs one chunk through the primary provider and, for
// retryable failures, the fallback.
func (p *Pipeline) synthesizeChunk(ctx context.Context, job *chunkJob, chunk string, req Request) ([]byte, error) {
	data, err := p.primary.Synthesize(ctx, chunk, tts.Options{Voice: req.PrimaryVoice})
	if err == nil {
		job.to(stateDone)
		return data, nil
	}
	logging.Warnf("chunk %d/%d: %s failed: %v", job.index+1, job.total, p.primary.Name(), err)

	if !tts.Retryable(err) {
		job.to(stateFailed)
		job.err = err
		return nil, err
	}
	if p.fallback == nil {
		job.to(stateFailed)
		job.err = fmt.Errorf("no fallback synthesizer configured: %w", err)
		return nil, job.err
	}

	job.to(statePendingFallback)
	data, ferr := p.fallback.Synthesize(ctx, chunk, tts.Options{Voice: req.FallbackVoice, Speed: req.FallbackSpeed})
	if ferr != nil {
		logging.Warnf("chunk %d/%d: fallback %s failed: %v", job.index+1, job.total, p.fallback.Name(), ferr)
		job.to(stateFailed)
		job.err = ferr
		return nil, ferr
	}
	job.to(stateDone)
	return data, nil
}
