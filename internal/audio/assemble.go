// Package audio turns per-chunk MP3 files into one continuous artifact and
// plays finished artifacts locally.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/voxpress/voxpress/internal/logging"
)

var (
	// ErrEmptyAssembly means not a single chunk file decoded; there is
	// nothing worth exporting.
	ErrEmptyAssembly = errors.New("assembly produced no audio")

	// ErrCodecUnavailable means bitrate normalization was requested but no
	// ffmpeg binary could be found. Kept distinct from per-chunk decode
	// failures: a missing codec would otherwise look like every chunk being
	// corrupt at once.
	ErrCodecUnavailable = errors.New("audio codec unavailable (ffmpeg not found)")
)

// Assembler concatenates ordered chunk files into the final MP3. The codec
// is injected so orchestration tests run without real MP3 fixtures.
type Assembler struct {
	codec      Codec
	normalize  bool
	ffmpegPath string
}

type AssemblerOption func(*Assembler)

// WithNormalization re-encodes the concatenation through ffmpeg to a single
// 128k bitrate. ffmpegPath may be empty to search PATH.
func WithNormalization(ffmpegPath string) AssemblerOption {
	return func(a *Assembler) {
		a.normalize = true
		a.ffmpegPath = ffmpegPath
	}
}

func NewAssembler(codec Codec, opts ...AssemblerOption) *Assembler {
	a := &Assembler{codec: codec}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble reads the ordered chunk files, skips any that fail to decode,
// and writes the remainder as one MP3 at dst. A chunk that does not decode
// is logged and dropped rather than failing the request; only zero usable
// chunks is fatal. The exported file is verified to exist and be non-empty,
// and a bad export is deleted before the error returns.
func (a *Assembler) Assemble(ctx context.Context, chunkPaths []string, dst string) error {
	if len(chunkPaths) == 0 {
		return ErrEmptyAssembly
	}

	var combined bytes.Buffer
	decoded := 0
	for i, path := range chunkPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Warnf("assemble: read chunk %d (%s): %v", i+1, filepath.Base(path), err)
			continue
		}
		if err := a.codec.Probe(bytes.NewReader(data)); err != nil {
			logging.Warnf("assemble: chunk %d (%s) does not decode, skipping: %v", i+1, filepath.Base(path), err)
			continue
		}
		if decoded > 0 {
			// Later chunks may carry their own ID3v2 header; strip it so
			// frame sync is preserved across the join.
			data = stripID3v2(data)
		}
		combined.Write(data)
		decoded++
	}

	if decoded == 0 {
		return fmt.Errorf("%w: none of %d chunks decoded", ErrEmptyAssembly, len(chunkPaths))
	}
	if decoded < len(chunkPaths) {
		logging.Warnf("assemble: %d of %d chunks dropped during concatenation", len(chunkPaths)-decoded, len(chunkPaths))
	}

	if a.normalize {
		if err := a.reencode(ctx, combined.Bytes(), dst); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(dst, combined.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write artifact %s: %w", dst, err)
		}
	}

	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(dst)
		return fmt.Errorf("artifact missing or empty after export: %s", dst)
	}
	return nil
}

// reencode pipes the concatenation through ffmpeg for a uniform bitrate.
func (a *Assembler) reencode(ctx context.Context, data []byte, dst string) error {
	ffmpeg := a.ffmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	path, err := exec.LookPath(ffmpeg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCodecUnavailable, err)
	}

	cmd := exec.CommandContext(ctx, path,
		"-hide_banner", "-loglevel", "error",
		"-f", "mp3", "-i", "pipe:0",
		"-codec:a", "libmp3lame", "-b:a", "128k",
		"-y", dst,
	)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("ffmpeg re-encode: %v: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// stripID3v2 removes a leading ID3v2 tag, if present, from MP3 data.
func stripID3v2(data []byte) []byte {
	if len(data) < 10 || data[0] != 'I' || data[1] != 'D' || data[2] != '3' {
		return data
	}
	// Bytes 6..9 hold a syncsafe (7 bits per byte) tag size, header excluded.
	size := int(data[6]&0x7f)<<21 | int(data[7]&0x7f)<<14 | int(data[8]&0x7f)<<7 | int(data[9]&0x7f)
	total := 10 + size
	if data[5]&0x10 != 0 {
		total += 10 // footer present
	}
	if total >= len(data) {
		return data
	}
	return data[total:]
}
