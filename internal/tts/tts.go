// Package tts wraps the external text-to-speech services behind one contract
// and classifies their failures at the adapter boundary, so orchestration can
// decide retry policy without inspecting provider-specific errors.
package tts

import (
	"context"
	"errors"
)

// Options selects voice and prosody for one synthesis call. Speed is a
// multiplier; providers whose voices embed prosody ignore it.
type Options struct {
	Voice string
	Speed float64
}

// Synthesizer converts one text chunk into MP3 bytes. Implementations must
// return an error wrapping one of the sentinel errors below whenever the
// failure class is recognizable; the orchestrator keys its fallback policy
// off that classification, never off error text.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, opts Options) ([]byte, error)
}

// Failure classes. Everything in this list except ErrBadRequest sends the
// chunk to the next provider; ErrBadRequest (and any unclassified error)
// skips the chunk entirely.
var (
	ErrAuth       = errors.New("tts auth error")
	ErrQuota      = errors.New("tts quota or rate limit exceeded")
	ErrServer     = errors.New("tts server error")
	ErrTimeout    = errors.New("tts timeout")
	ErrEmptyAudio = errors.New("tts returned no audio")
	ErrBadRequest = errors.New("tts bad request")
)

// Retryable reports whether a synthesis failure should be retried against
// the fallback provider. Auth and quota failures are retryable here because
// the two providers hold independent credentials and quotas.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrAuth),
		errors.Is(err, ErrQuota),
		errors.Is(err, ErrServer),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrEmptyAudio):
		return true
	default:
		return false
	}
}
