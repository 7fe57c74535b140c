package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

// newStreamServer runs a fake stream-input endpoint that replies to the
// BOS/text/EOS sequence with the given handler.
func newStreamServer(t *testing.T, handle func(t *testing.T, conn *websocket.Conn, texts []string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("xi-api-key"); got != "test-key" {
			t.Errorf("xi-api-key = %q, want test-key", got)
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var texts []string
		for {
			var msg elevenLabsTextMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			texts = append(texts, msg.Text)
			if msg.Text == "" { // EOS
				break
			}
		}
		handle(t, conn, texts)
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestElevenLabs_Synthesize_Success(t *testing.T) {
	server := newStreamServer(t, func(t *testing.T, conn *websocket.Conn, texts []string) {
		if len(texts) != 3 {
			t.Errorf("expected BOS, text, EOS, got %d messages", len(texts))
		}
		if len(texts) >= 2 && texts[1] != "a chunk of text " {
			t.Errorf("text message = %q", texts[1])
		}

		frames := []string{"first-frame", "second-frame"}
		for _, f := range frames {
			event := elevenLabsEvent{Audio: base64.StdEncoding.EncodeToString([]byte(f))}
			if err := conn.WriteJSON(event); err != nil {
				t.Errorf("write event: %v", err)
			}
		}
		if err := conn.WriteJSON(elevenLabsEvent{IsFinal: true}); err != nil {
			t.Errorf("write final: %v", err)
		}
	})
	defer server.Close()

	svc := NewElevenLabs("test-key", WithElevenLabsEndpoint(wsURL(server)))
	audio, err := svc.Synthesize(context.Background(), "a chunk of text", Options{Voice: "rachel"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(audio) != "first-framesecond-frame" {
		t.Fatalf("audio = %q, want concatenated frames", audio)
	}
}

func TestElevenLabs_Synthesize_NoAudio(t *testing.T) {
	server := newStreamServer(t, func(t *testing.T, conn *websocket.Conn, texts []string) {
		_ = conn.WriteJSON(elevenLabsEvent{IsFinal: true})
	})
	defer server.Close()

	svc := NewElevenLabs("test-key", WithElevenLabsEndpoint(wsURL(server)))
	_, err := svc.Synthesize(context.Background(), "text", Options{})
	if !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("error = %v, want ErrEmptyAudio", err)
	}
}

func TestElevenLabs_Synthesize_StreamError(t *testing.T) {
	tests := []struct {
		name    string
		event   elevenLabsEvent
		want    error
		wantNil bool
	}{
		{"quota", elevenLabsEvent{Error: "quota_exceeded", Message: "character quota exceeded", Code: 1008}, ErrQuota, false},
		{"auth", elevenLabsEvent{Error: "invalid_api_key", Message: "authentication failed", Code: 1008}, ErrAuth, false},
		{"unknown stays fatal", elevenLabsEvent{Error: "voice_not_found", Message: "no such voice", Code: 1008}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newStreamServer(t, func(t *testing.T, conn *websocket.Conn, texts []string) {
				_ = conn.WriteJSON(tt.event)
			})
			defer server.Close()

			svc := NewElevenLabs("test-key", WithElevenLabsEndpoint(wsURL(server)))
			_, err := svc.Synthesize(context.Background(), "text", Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantNil {
				if Retryable(err) {
					t.Fatalf("unclassified error %v must be fatal for the chunk", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestElevenLabs_HandshakeClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuth},
		{"rate limited", http.StatusTooManyRequests, ErrQuota},
		{"server error", http.StatusServiceUnavailable, ErrServer},
		{"not found", http.StatusNotFound, ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "refused", tt.status)
			}))
			defer server.Close()

			svc := NewElevenLabs("test-key", WithElevenLabsEndpoint(wsURL(server)))
			_, err := svc.Synthesize(context.Background(), "text", Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestElevenLabs_EmptyText(t *testing.T) {
	svc := NewElevenLabs("test-key")
	_, err := svc.Synthesize(context.Background(), "", Options{})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("error = %v, want ErrBadRequest", err)
	}
}
