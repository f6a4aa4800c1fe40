package resampler

import (
	"fmt"
	"io"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/haivivi/spotkit/pkg/audio/pcm"
)

// Reader converts a PCM byte stream to mono 16-bit audio at a fixed output
// rate. It implements io.ReadCloser; Read always returns whole samples.
// A Reader is owned by a single caller.
type Reader struct {
	src  *frameReader
	from Format

	conv resampling.Resampler // nil when the rates already match

	// Scratch reused across Read calls.
	raw     []byte
	samples []int16
	fin     []float64
	res     []int16
	enc     []byte

	pending []byte // converted output not yet claimed by the caller
	closed  error
}

// New wraps src, a little-endian 16-bit PCM stream in the given format, and
// returns a Reader producing mono samples at rate Hz. When the rates already
// match only the channel layout is converted.
func New(src io.Reader, from Format, rate int) (*Reader, error) {
	if from.SampleRate <= 0 || rate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rate conversion %d -> %d", from.SampleRate, rate)
	}

	r := &Reader{src: newFrameReader(src, from.frameBytes()), from: from}
	if from.SampleRate != rate {
		conv, err := resampling.New(&resampling.Config{
			InputRate:  float64(from.SampleRate),
			OutputRate: float64(rate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("resampler: %w", err)
		}
		r.conv = conv
	}
	return r, nil
}

// Read copies converted audio into p. It may return (0, nil) while the rate
// converter is priming; io.EOF follows the last converted sample.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) < 2 {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)&^1]

	if r.closed != nil {
		return 0, r.closed
	}
	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	samples, err := r.readMono(len(p) / 2)
	if r.conv != nil && len(samples) > 0 {
		var cerr error
		if samples, cerr = r.convert(samples); cerr != nil {
			return 0, cerr
		}
	}
	if len(samples) == 0 {
		return 0, err
	}

	r.enc = pcm.EncodeSamples(r.enc[:0], samples)
	n := copy(p, r.enc)
	if n < len(r.enc) {
		// The converter produced more than the caller asked for; hold the
		// rest and delay any stream error until it is drained.
		r.pending = append(r.pending[:0], r.enc[n:]...)
		return n, nil
	}
	return n, err
}

// readMono pulls up to max source frames and downmixes them to mono.
func (r *Reader) readMono(max int) ([]int16, error) {
	need := max * r.from.frameBytes()
	if cap(r.raw) < need {
		r.raw = make([]byte, need)
	}
	n, err := r.src.Read(r.raw[:need])

	r.samples, _ = pcm.DecodeSamples(r.samples[:0], r.raw[:n])
	if !r.from.Stereo {
		return r.samples, err
	}
	mono := r.samples[:0]
	for i := 0; i+1 < len(r.samples); i += 2 {
		mono = append(mono, pcm.DownmixPair(r.samples[i], r.samples[i+1]))
	}
	return mono, err
}

// convert runs samples through the rate converter. The converter buffers
// internally, so the output length differs from the input length.
func (r *Reader) convert(samples []int16) ([]int16, error) {
	if cap(r.fin) < len(samples) {
		r.fin = make([]float64, len(samples))
	}
	in := r.fin[:len(samples)]
	for i, s := range samples {
		in[i] = float64(s) / 32768.0
	}

	out, err := r.conv.Process(in)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}

	if cap(r.res) < len(out) {
		r.res = make([]int16, len(out))
	}
	res := r.res[:len(out)]
	for i, v := range out {
		switch {
		case v >= 1.0:
			res[i] = math.MaxInt16
		case v <= -1.0:
			res[i] = math.MinInt16
		default:
			res[i] = int16(v * 32767.0)
		}
	}
	return res, nil
}

// Close stops the stream and discards any pending output. Later Reads
// return io.ErrClosedPipe.
func (r *Reader) Close() error {
	if r.closed == nil {
		r.closed = fmt.Errorf("resampler: %w", io.ErrClosedPipe)
	}
	r.conv = nil
	r.pending = nil
	return nil
}
