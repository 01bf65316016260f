package unit

import "time"

// Buffer is a decoded multi-channel audio resource such as an impulse
// response. Channels holds one slice per channel, all of equal length.
type Buffer struct {
	SampleRate float64
	Channels   [][]float64
}

// NewMonoBuffer wraps samples as a single-channel buffer.
func NewMonoBuffer(sampleRate float64, samples []float64) *Buffer {
	return &Buffer{SampleRate: sampleRate, Channels: [][]float64{samples}}
}

// Len returns the number of frames.
func (b *Buffer) Len() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}

	return len(b.Channels[0])
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}

	return len(b.Channels)
}

// Duration returns the playback length.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(b.Len()) / b.SampleRate * float64(time.Second))
}

// Mono returns the average of all channels.
func (b *Buffer) Mono() []float64 {
	n := b.Len()
	out := make([]float64, n)

	if n == 0 {
		return out
	}

	if len(b.Channels) == 1 {
		copy(out, b.Channels[0])

		return out
	}

	scale := 1 / float64(len(b.Channels))
	for _, ch := range b.Channels {
		for i := 0; i < n && i < len(ch); i++ {
			out[i] += ch[i] * scale
		}
	}

	return out
}
