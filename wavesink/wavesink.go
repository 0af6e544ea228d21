// Package wavesink records tapped sample blocks to a WAV file.
//
// The sink is an optional, consumer-side destination fed the same raw blocks
// as the analyzer. It is not part of the analysis contract and may block on
// disk I/O; it must never be called from the capture callback.
package wavesink

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// Sink writes mono 16-bit PCM WAV data.
type Sink struct {
	f   *os.File
	enc *wav.Encoder
	buf *audio.IntBuffer
}

// Create opens path for writing and emits a WAV header for mono audio at
// sampleRate. The file is finalized by Close.
func Create(path string, sampleRate uint32) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wavesink: create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, int(sampleRate), bitDepth, 1, 1)

	return &Sink{
		f:   f,
		enc: enc,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: int(sampleRate)},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteBlock appends one block of float32 samples, clipped to [-1, 1] and
// quantized to 16-bit PCM.
func (s *Sink) WriteBlock(block []float32) error {
	if cap(s.buf.Data) < len(block) {
		s.buf.Data = make([]int, len(block))
	}
	s.buf.Data = s.buf.Data[:len(block)]

	for i, v := range block {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		s.buf.Data[i] = int(v * 32767)
	}

	if err := s.enc.Write(s.buf); err != nil {
		return fmt.Errorf("wavesink: write block: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (s *Sink) Close() error {
	err := s.enc.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("wavesink: close: %w", err)
	}
	return nil
}
