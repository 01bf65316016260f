package irload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// ErrFormat is returned for WAV data that cannot be decoded.
var ErrFormat = errors.New("irload: unsupported wav data")

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// DecodeWAV reads a RIFF/WAVE stream holding 8, 16, 24 or 32 bit integer PCM
// or 32 bit float samples and returns it as a Buffer of values in [-1, 1].
// WAVE_FORMAT_EXTENSIBLE streams are decoded as integer PCM.
func DecodeWAV(r io.Reader) (*unit.Buffer, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		rs = bytes.NewReader(data)
	}

	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid RIFF/WAVE stream", ErrFormat)
	}

	isFloat := d.WavAudioFormat == wavFormatFloat

	switch {
	case d.WavAudioFormat == wavFormatPCM || d.WavAudioFormat == wavFormatExtensible:
		if d.BitDepth != 8 && d.BitDepth != 16 && d.BitDepth != 24 && d.BitDepth != 32 {
			return nil, fmt.Errorf("%w: %d bit pcm", ErrFormat, d.BitDepth)
		}
	case isFloat:
		if d.BitDepth != 32 {
			return nil, fmt.Errorf("%w: %d bit float", ErrFormat, d.BitDepth)
		}
	default:
		return nil, fmt.Errorf("%w: format %d", ErrFormat, d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if pcm == nil {
		return nil, fmt.Errorf("%w: no data chunk", ErrFormat)
	}

	return fromFloatBuffer(normalize(pcm, isFloat), float64(d.SampleRate)), nil
}

// normalize scales decoded integer samples to [-1, 1]. Float streams carry
// the IEEE bits of each sample in the integer slot.
func normalize(pcm *audio.IntBuffer, isFloat bool) *audio.FloatBuffer {
	out := &audio.FloatBuffer{Format: pcm.Format, Data: make([]float64, len(pcm.Data))}

	switch {
	case isFloat:
		for i, v := range pcm.Data {
			out.Data[i] = float64(math.Float32frombits(uint32(v)))
		}
	case pcm.SourceBitDepth == 8:
		// 8 bit PCM is unsigned.
		for i, v := range pcm.Data {
			out.Data[i] = float64(v-128) / 128
		}
	default:
		scale := float64(int64(1) << (pcm.SourceBitDepth - 1))
		for i, v := range pcm.Data {
			out.Data[i] = float64(v) / scale
		}
	}

	return out
}

// fromFloatBuffer de-interleaves fb into a Buffer.
func fromFloatBuffer(fb *audio.FloatBuffer, sampleRate float64) *unit.Buffer {
	channels := max(fb.Format.NumChannels, 1)
	frames := len(fb.Data) / channels

	buf := &unit.Buffer{
		SampleRate: sampleRate,
		Channels:   make([][]float64, channels),
	}

	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float64, frames)
		for i := range frames {
			buf.Channels[ch][i] = fb.Data[i*channels+ch]
		}
	}

	return buf
}

// toFloatBuffer interleaves buf. Shorter channels are padded with silence.
func toFloatBuffer(buf *unit.Buffer) *audio.FloatBuffer {
	channels, frames := buf.NumChannels(), buf.Len()

	fb := &audio.FloatBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  int(math.Round(buf.SampleRate)),
		},
		Data: make([]float64, frames*channels),
	}

	for ch, samples := range buf.Channels {
		for i, v := range samples {
			fb.Data[i*channels+ch] = v
		}
	}

	return fb
}

// EncodeWAV writes buf as an interleaved WAV stream, either 16 bit PCM or
// 32 bit float. Samples outside [-1, 1] are clipped in PCM mode. The header
// sizes are patched on completion, hence the WriteSeeker.
func EncodeWAV(w io.WriteSeeker, buf *unit.Buffer, pcm16 bool) error {
	if buf.NumChannels() == 0 {
		return fmt.Errorf("%w: no channels", ErrFormat)
	}

	fb := toFloatBuffer(buf)
	ib := &audio.IntBuffer{Format: fb.Format, Data: make([]int, len(fb.Data))}

	bitDepth, format := 32, wavFormatFloat
	if pcm16 {
		bitDepth, format = 16, wavFormatPCM

		for i, v := range fb.Data {
			ib.Data[i] = int(math.Round(clip(v) * math.MaxInt16))
		}
	} else {
		for i, v := range fb.Data {
			ib.Data[i] = int(int32(math.Float32bits(float32(v))))
		}
	}

	ib.SourceBitDepth = bitDepth

	e := wav.NewEncoder(w, fb.Format.SampleRate, bitDepth, fb.Format.NumChannels, format)
	if err := e.Write(ib); err != nil {
		return fmt.Errorf("irload: encode: %w", err)
	}

	if err := e.Close(); err != nil {
		return fmt.Errorf("irload: encode: %w", err)
	}

	return nil
}

func clip(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Max(-1, math.Min(1, v))
}
