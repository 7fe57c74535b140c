package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxpress/voxpress/internal/logging"
)

const (
	defaultElevenLabsEndpoint = "wss://api.elevenlabs.io/v1/text-to-speech"
	defaultElevenLabsModel    = "eleven_multilingual_v2"
	defaultElevenLabsVoice    = "21m00Tcm4TlvDq8ikWAM" // Rachel
	elevenLabsOutputFormat    = "mp3_44100_128"

	elevenLabsReadTimeout = 60 * time.Second
)

// ElevenLabs synthesizes speech over the stream-input websocket endpoint.
// One connection per chunk: dial, send the text, collect audio frames until
// the final event, close. Voice prosody is embedded in the voice itself, so
// Options.Speed is ignored.
type ElevenLabs struct {
	apiKey   string
	endpoint string
	model    string
	dialer   *websocket.Dialer
}

var _ Synthesizer = (*ElevenLabs)(nil)

type ElevenLabsOption func(*ElevenLabs)

// WithElevenLabsEndpoint overrides the ws endpoint (tests, proxies).
func WithElevenLabsEndpoint(endpoint string) ElevenLabsOption {
	return func(e *ElevenLabs) {
		e.endpoint = strings.TrimRight(endpoint, "/")
	}
}

func WithElevenLabsModel(model string) ElevenLabsOption {
	return func(e *ElevenLabs) {
		e.model = model
	}
}

func WithElevenLabsDialer(dialer *websocket.Dialer) ElevenLabsOption {
	return func(e *ElevenLabs) {
		e.dialer = dialer
	}
}

func NewElevenLabs(apiKey string, opts ...ElevenLabsOption) *ElevenLabs {
	e := &ElevenLabs{
		apiKey:   apiKey,
		endpoint: defaultElevenLabsEndpoint,
		model:    defaultElevenLabsModel,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ElevenLabs) Name() string {
	return "elevenlabs"
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsTextMessage struct {
	Text                 string                   `json:"text"`
	VoiceSettings        *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
	TryTriggerGeneration bool                     `json:"try_trigger_generation,omitempty"`
}

type elevenLabsEvent struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrBadRequest)
	}

	voice := opts.Voice
	if voice == "" {
		voice = defaultElevenLabsVoice
	}

	endpoint := fmt.Sprintf("%s/%s/stream-input?model_id=%s&output_format=%s",
		e.endpoint, voice, e.model, elevenLabsOutputFormat)

	header := http.Header{}
	header.Set("xi-api-key", e.apiKey)

	conn, resp, err := e.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, classifyHandshake(resp, err)
	}
	defer conn.Close()

	messages := []elevenLabsTextMessage{
		// BOS: a single space opens the stream.
		{Text: " ", VoiceSettings: &elevenLabsVoiceSettings{Stability: 0.5, SimilarityBoost: 0.75}},
		{Text: text + " ", TryTriggerGeneration: true},
		// EOS: empty text flushes and ends the stream.
		{Text: ""},
	}
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return nil, err
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return nil, fmt.Errorf("%w: send text: %v", ErrServer, err)
		}
	}

	deadline := time.Now().Add(elevenLabsReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var audio []byte
	for {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return nil, fmt.Errorf("%w: waiting for audio: %v", ErrTimeout, err)
			}
			return nil, fmt.Errorf("%w: receive audio: %v", ErrServer, err)
		}

		var event elevenLabsEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("%w: malformed event: %v", ErrServer, err)
		}
		if event.Error != "" || (event.Code != 0 && event.Message != "") {
			return nil, mapElevenLabsError(event)
		}
		if event.Audio != "" {
			frame, err := base64.StdEncoding.DecodeString(event.Audio)
			if err != nil {
				return nil, fmt.Errorf("%w: undecodable audio frame: %v", ErrServer, err)
			}
			audio = append(audio, frame...)
		}
		if event.IsFinal {
			break
		}
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: stream finished without audio", ErrEmptyAudio)
	}
	return audio, nil
}

// classifyHandshake maps a failed websocket dial to a failure class. The
// handshake response carries the HTTP status when the server refused the
// upgrade, which is where ElevenLabs reports auth and quota problems.
func classifyHandshake(resp *http.Response, err error) error {
	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: handshake rejected with status %d", ErrAuth, resp.StatusCode)
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: handshake rejected with status %d", ErrQuota, resp.StatusCode)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: handshake rejected with status %d", ErrServer, resp.StatusCode)
		case resp.StatusCode >= 400:
			return fmt.Errorf("%w: handshake rejected with status %d", ErrBadRequest, resp.StatusCode)
		}
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return fmt.Errorf("%w: dial: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: dial: %v", ErrServer, err)
}

// mapElevenLabsError classifies an in-stream error event the way the server
// words it; unrecognized errors stay unclassified and therefore fatal for
// the chunk.
func mapElevenLabsError(event elevenLabsEvent) error {
	msg := event.Message
	if msg == "" {
		msg = event.Error
	}
	logging.Errorf("elevenlabs stream error: code=%d message=%s", event.Code, msg)

	lower := strings.ToLower(event.Error + " " + event.Message)
	switch {
	case strings.Contains(lower, "quota"), strings.Contains(lower, "rate limit"), strings.Contains(lower, "too many"):
		return fmt.Errorf("%w: %s", ErrQuota, msg)
	case strings.Contains(lower, "unauthorized"), strings.Contains(lower, "api key"), strings.Contains(lower, "authentication"):
		return fmt.Errorf("%w: %s", ErrAuth, msg)
	case strings.Contains(lower, "timeout"):
		return fmt.Errorf("%w: %s", ErrTimeout, msg)
	case strings.Contains(lower, "internal"), strings.Contains(lower, "unavailable"):
		return fmt.Errorf("%w: %s", ErrServer, msg)
	}
	if msg == "" {
		msg = "elevenlabs stream failed"
	}
	return fmt.Errorf("elevenlabs: %s", msg)
}
