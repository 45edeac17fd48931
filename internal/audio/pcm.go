package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Narration audio arrives as mono signed 16-bit little-endian PCM at this rate.
const (
	DefaultSampleRate = 24000
	DefaultChannels   = 1
)

// Buffer is a decoded mono waveform.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration is the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// DecodeBase64PCM decodes base64 encoded s16le PCM. Interleaved channels are
// mixed down to mono.
func DecodeBase64PCM(data string, sampleRate, channels int) (*Buffer, error) {
	if data == "" {
		return nil, errors.New("empty audio payload")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 audio: %w", err)
	}
	return DecodePCM(raw, sampleRate, channels)
}

// DecodePCM converts s16le bytes into a Buffer.
func DecodePCM(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	frameBytes := 2 * channels
	if len(raw)%frameBytes != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of %d", len(raw), frameBytes)
	}

	frames := len(raw) / frameBytes
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			v := int16(binary.LittleEndian.Uint16(raw[off:]))
			sum += float32(v) / 32768.0
		}
		samples[i] = sum / float32(channels)
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// Render produces s16le PCM for the buffer from offset seconds to the end,
// resampled so that it plays speed times faster at the buffer's own rate.
func (b *Buffer) Render(offset, speed float64) []byte {
	if speed <= 0 {
		speed = 1
	}
	start := offset * float64(b.SampleRate)
	n := len(b.Samples)
	if start >= float64(n) {
		return nil
	}
	if start < 0 {
		start = 0
	}
	count := int(math.Ceil((float64(n) - start) / speed))
	out := make([]byte, 0, count*2)
	var tmp [2]byte
	for i := 0; i < count; i++ {
		pos := start + float64(i)*speed
		idx := int(pos)
		if idx >= n {
			break
		}
		s := b.Samples[idx]
		if frac := float32(pos - float64(idx)); frac > 0 && idx+1 < n {
			s += (b.Samples[idx+1] - s) * frac
		}
		binary.LittleEndian.PutUint16(tmp[:], uint16(toInt16(s)))
		out = append(out, tmp[:]...)
	}
	return out
}

func toInt16(s float32) int16 {
	v := s * 32768
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
