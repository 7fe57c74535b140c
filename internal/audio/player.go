package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/gordonklaus/portaudio"
	mp3 "github.com/hajimehoshi/go-mp3"
)

const framesPerBuffer = 1024

// Play decodes an MP3 artifact and streams it to the default output device.
// It blocks until playback finishes or ctx is cancelled.
func Play(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize audio: %w", err)
	}
	defer portaudio.Terminate()

	// go-mp3 always emits 16-bit little-endian stereo PCM.
	out := make([]int16, framesPerBuffer*2)
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(dec.SampleRate()), framesPerBuffer, &out)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	defer stream.Stop()

	raw := make([]byte, len(out)*2)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := io.ReadFull(dec, raw)
		if n > 0 {
			pcmToSamples(raw[:n], out)
			if werr := stream.Write(); werr != nil {
				return fmt.Errorf("write to output stream: %w", werr)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read pcm: %w", err)
		}
	}
}

// pcmToSamples converts little-endian PCM bytes into the int16 buffer,
// zero-filling any tail past n bytes.
func pcmToSamples(raw []byte, out []int16) {
	i := 0
	for ; i < len(raw)/2 && i < len(out); i++ {
		out[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	for ; i < len(out); i++ {
		out[i] = 0
	}
}
