package audio

import (
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// Codec verifies that a blob of audio actually decodes. The assembler skips
// chunks the codec rejects instead of concatenating garbage.
type Codec interface {
	Probe(r io.Reader) error
}

// MP3Codec probes with a pure-Go MP3 decoder.
type MP3Codec struct{}

var _ Codec = MP3Codec{}

func (MP3Codec) Probe(r io.Reader) error {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return err
	}
	// Decoding one buffer of PCM is enough to prove the frames are sane.
	buf := make([]byte, 8192)
	if _, err := dec.Read(buf); err != nil && err != io.EOF {
		return err
	}
	return nil
}
