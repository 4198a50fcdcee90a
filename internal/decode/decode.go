// Package decode turns compressed audio bytes into a single channel of
// float samples in [-1, 1], the only shape the envelope extractor
// consumes. Multi-channel sources contribute channel 0 only.
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedFormat is returned when the input is neither WAV nor MP3.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Bytes sniffs the container format and decodes. Returns the samples and
// the source sample rate.
func Bytes(data []byte) ([]float64, int, error) {
	if isWAV(data) {
		return WAV(bytes.NewReader(data))
	}

	samples, rate, err := MP3(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	return samples, rate, nil
}

// File reads and decodes an audio file.
func File(path string) ([]float64, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read audio file: %w", err)
	}

	return Bytes(data)
}

func isWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

// WAV decodes a RIFF/WAVE stream via go-audio.
func WAV(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("decode wav: %w", errors.New("no pcm data"))
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	bits := buf.SourceBitDepth
	if bits <= 0 {
		bits = int(dec.BitDepth)
	}
	if bits <= 0 {
		bits = 16
	}
	scale := float64(int64(1) << (bits - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range samples {
		v := float64(buf.Data[i*channels]) / scale
		if v > 1 {
			v = 1
		}
		if v < -1 {
			v = -1
		}
		samples[i] = v
	}

	return samples, buf.Format.SampleRate, nil
}

// MP3 decodes an MPEG-1 layer 3 stream via go-mp3, which always emits
// 16-bit little-endian stereo frames.
func MP3(r io.Reader) ([]float64, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}

	const frameBytes = 4 // 2 bytes per sample, 2 channels
	frames := len(raw) / frameBytes
	if frames == 0 {
		return nil, 0, fmt.Errorf("decode mp3: %w", errors.New("no pcm data"))
	}

	samples := make([]float64, frames)
	for i := range samples {
		left := int16(binary.LittleEndian.Uint16(raw[i*frameBytes:]))
		samples[i] = float64(left) / 32768
	}

	return samples, dec.SampleRate(), nil
}
